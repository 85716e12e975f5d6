package biometric

import (
	"context"
	"sync"
	"time"
)

// State 扫描器状态
type State string

const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
	StateVerified State = "verified"
	StateFailed   State = "failed"
)

// Scanner 单个用户的扫描状态机：idle → scanning → verified|failed → idle。
// 结果展示 resetAfter 后自动回到 idle。
type Scanner struct {
	userID     string
	verifier   Verifier
	resetAfter time.Duration

	mu    sync.Mutex
	state State
	last  *Result
	timer *time.Timer
	gen   uint64 // 每次 Scan 递增，过期的 reset 回调据此失效
}

// NewScanner 创建扫描器
func NewScanner(userID string, verifier Verifier, resetAfter time.Duration) *Scanner {
	return &Scanner{userID: userID, verifier: verifier, resetAfter: resetAfter, state: StateIdle}
}

// Snapshot 当前状态和最近一次结果
func (s *Scanner) Snapshot() (State, *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.last
}

// State 当前状态
func (s *Scanner) State() State {
	st, _ := s.Snapshot()
	return st
}

// Scan 触发一次验证；扫描中再次触发返回 ErrScanInProgress。
// 验证出错（如 ctx 取消）时直接回到 idle。
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	gen := s.gen
	s.state = StateScanning
	s.last = nil
	s.mu.Unlock()

	res, err := s.verifier.Verify(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateIdle
		return nil, err
	}

	s.last = res
	if res.Success {
		s.state = StateVerified
	} else {
		s.state = StateFailed
	}
	s.timer = time.AfterFunc(s.resetAfter, func() { s.reset(gen) })
	return res, nil
}

// reset 只回收 gen 那一轮的结果；Stop 没拦住的旧回调不会覆盖新结果
func (s *Scanner) reset(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if s.state == StateVerified || s.state == StateFailed {
		s.state = StateIdle
	}
}

// Registry 按用户维护扫描器
type Registry struct {
	verifier   Verifier
	resetAfter time.Duration

	mu       sync.Mutex
	scanners map[string]*Scanner
}

// NewRegistry 创建扫描器注册表
func NewRegistry(verifier Verifier, resetAfter time.Duration) *Registry {
	return &Registry{verifier: verifier, resetAfter: resetAfter, scanners: make(map[string]*Scanner)}
}

// For 返回用户的扫描器，不存在时创建
func (r *Registry) For(userID string) *Scanner {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scanners[userID]
	if !ok {
		s = NewScanner(userID, r.verifier, r.resetAfter)
		r.scanners[userID] = s
	}
	return s
}
