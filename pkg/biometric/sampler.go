package biometric

import (
	"math"
	"math/rand"
	"sync"
)

// Sampler 抽样源
type Sampler interface {
	// Pass 以给定概率返回 true
	Pass(c Check, probability float64) bool
	// Score 返回 [min, max] 区间内的匹配分
	Score(min, max float64) float64
}

type randSampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandSampler 基于种子的伪随机抽样，可并发使用
func NewRandSampler(seed int64) Sampler {
	return &randSampler{rnd: rand.New(rand.NewSource(seed))}
}

func (s *randSampler) Pass(_ Check, probability float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() < probability
}

func (s *randSampler) Score(min, max float64) float64 {
	s.mu.Lock()
	v := min + s.rnd.Float64()*(max-min)
	s.mu.Unlock()
	return math.Round(v*100) / 100
}

// FixedSampler 固定结果，未列出的检查视为通过
type FixedSampler struct {
	Outcomes   map[Check]bool
	MatchScore float64
}

func (f FixedSampler) Pass(c Check, _ float64) bool {
	if ok, set := f.Outcomes[c]; set {
		return ok
	}
	return true
}

func (f FixedSampler) Score(min, _ float64) float64 {
	if f.MatchScore == 0 {
		return min
	}
	return f.MatchScore
}
