// Package biometric 模拟指纹验证流程。
//
// 没有真实传感器：两段固定延时模拟采集与比对，四项检查按各自概率抽样，
// 全部通过才算验证成功。随机性隔离在 Sampler 后面，测试可注入固定结果；
// 接入真实设备时实现 Verifier 即可替换 Simulator。
package biometric

import (
	"context"
	"errors"
	"time"
)

// Check 单项检查
type Check string

const (
	CheckPatternMatch Check = "pattern_match"
	CheckLiveness     Check = "liveness"
	CheckTemperature  Check = "temperature"
	CheckIdentity     Check = "identity"
)

// Checks 检查顺序，失败时按此顺序报告第一项
var Checks = []Check{CheckPatternMatch, CheckLiveness, CheckTemperature, CheckIdentity}

// ProbabilityTable 每项检查的通过概率
type ProbabilityTable map[Check]float64

// DefaultProbabilities 默认概率表
func DefaultProbabilities() ProbabilityTable {
	return ProbabilityTable{
		CheckPatternMatch: 0.95,
		CheckLiveness:     0.98,
		CheckTemperature:  0.99,
		CheckIdentity:     0.97,
	}
}

var failureMessages = map[Check]string{
	CheckPatternMatch: "Fingerprint pattern not recognized, place your finger on the sensor again",
	CheckLiveness:     "Liveness check failed, a live finger is required",
	CheckTemperature:  "Finger temperature out of range, wait a moment and retry",
	CheckIdentity:     "Fingerprint does not match the registered identity",
}

// FailureMessage 失败类别对应的提示
func FailureMessage(c Check) string {
	if msg, ok := failureMessages[c]; ok {
		return msg
	}
	return "Verification failed"
}

var ErrScanInProgress = errors.New("a scan is already in progress")

// Result 一次验证的结果
type Result struct {
	UserID      string         `json:"user_id"`
	Success     bool           `json:"success"`
	MatchScore  float64        `json:"match_score,omitempty"`
	Checks      map[Check]bool `json:"checks"`
	FailedCheck Check          `json:"failed_check,omitempty"`
	Message     string         `json:"message,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Verifier 指纹验证器
type Verifier interface {
	Verify(ctx context.Context, userID string) (*Result, error)
}

// Evaluate 根据检查结果生成验证结论
func Evaluate(userID string, checks map[Check]bool, score float64, at time.Time) *Result {
	res := &Result{UserID: userID, Checks: checks, Timestamp: at}
	for _, c := range Checks {
		if !checks[c] {
			res.FailedCheck = c
			res.Message = FailureMessage(c)
			return res
		}
	}
	res.Success = true
	res.MatchScore = score
	return res
}

// Config 模拟器参数
type Config struct {
	AcquireDelay  time.Duration
	MatchDelay    time.Duration
	ScoreMin      float64
	ScoreMax      float64
	Probabilities ProbabilityTable
}

// Simulator 模拟验证器
type Simulator struct {
	cfg     Config
	sampler Sampler
	now     func() time.Time
}

// NewSimulator 创建模拟验证器；Probabilities 为空时使用默认概率表
func NewSimulator(cfg Config, sampler Sampler) *Simulator {
	if len(cfg.Probabilities) == 0 {
		cfg.Probabilities = DefaultProbabilities()
	}
	return &Simulator{cfg: cfg, sampler: sampler, now: time.Now}
}

// Verify 依次等待采集、比对延时后抽样四项检查
func (s *Simulator) Verify(ctx context.Context, userID string) (*Result, error) {
	if err := sleep(ctx, s.cfg.AcquireDelay); err != nil {
		return nil, err
	}
	if err := sleep(ctx, s.cfg.MatchDelay); err != nil {
		return nil, err
	}

	checks := make(map[Check]bool, len(Checks))
	for _, c := range Checks {
		checks[c] = s.sampler.Pass(c, s.cfg.Probabilities[c])
	}
	score := s.sampler.Score(s.cfg.ScoreMin, s.cfg.ScoreMax)

	return Evaluate(userID, checks, score, s.now()), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
