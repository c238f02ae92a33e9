package bandit

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgmax_TiesBreakToLowestID(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{0.2, 0.7, 0.7, 0.1}))
	assert.Equal(t, 0, argmax([]float64{0.5, 0.5}))
}

func TestArgmax_NaNNeverWins(t *testing.T) {
	assert.Equal(t, 2, argmax([]float64{math.NaN(), math.NaN(), -5}))
	assert.Equal(t, 0, argmax([]float64{math.Inf(1), math.NaN(), math.Inf(1)}))
}

func TestUCBPolicy_Scores(t *testing.T) {
	// GIVEN two arms with counts 3 and 1 (N = 4)
	s := NewStatistics(3)
	for i := 0; i < 3; i++ {
		s.Observe(0, 0.5)
	}
	s.Observe(1, 1)

	// WHEN UCB scores are computed with c = 2
	scores := NewUCB1(2).Scores(s)

	// THEN score_i = mean_i + c*sqrt(ln N / n_i) and an arm without evidence is +Inf
	assert.InDelta(t, 0.5+2*math.Sqrt(math.Log(4)/3), scores[0], 1e-12)
	assert.InDelta(t, 1+2*math.Sqrt(math.Log(4)/1), scores[1], 1e-12)
	assert.True(t, math.IsInf(scores[2], 1))
}

func TestUCBPolicy_Scores_SubUnitTotalClampsLog(t *testing.T) {
	// GIVEN heavily decayed evidence so N < 1
	s := NewStatistics(2)
	s.Arms[0].Pulls, s.Arms[0].Reward = 0.3, 0.3
	s.Arms[1].Pulls, s.Arms[1].Reward = 0.2, 0.1

	// WHEN scores are computed
	scores := NewDiscountedUCB(0.9, 1).Scores(s)

	// THEN the exploration term is zero rather than NaN
	assert.InDelta(t, 1.0, scores[0], 1e-12)
	assert.InDelta(t, 0.5, scores[1], 1e-12)
}

func TestNewSelectionPolicy_Names(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for strategy := range ValidStrategies {
		cfg := DefaultBanditConfig()
		cfg.Strategy = strategy
		assert.Equal(t, strategy, NewSelectionPolicy(cfg, rng).Name())
	}
}

func TestNewSelectionPolicy_UnknownStrategy_Panics(t *testing.T) {
	cfg := DefaultBanditConfig()
	cfg.Strategy = "softmax"
	assert.Panics(t, func() { NewSelectionPolicy(cfg, nil) })
}

func TestEpsilonGreedy_ZeroEpsilon_AlwaysExploits(t *testing.T) {
	s := NewStatistics(3)
	s.Observe(0, 0.1)
	s.Observe(1, 0.8)
	s.Observe(2, 0.4)
	p := NewEpsilonGreedy(0, rand.New(rand.NewPCG(3, 4)))

	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, p.Select(s))
	}
}

func TestEpsilonGreedy_OneEpsilon_ExploresEveryArm(t *testing.T) {
	s := NewStatistics(3)
	s.Observe(0, 1)
	p := NewEpsilonGreedy(1, rand.New(rand.NewPCG(3, 4)))

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[p.Select(s)] = true
	}
	assert.Len(t, seen, 3)
}

func TestThompsonPolicy_Update_NormalizesReward(t *testing.T) {
	// GIVEN a reward range of [-1, 3] and no decay
	s := NewStatistics(2)
	p := NewThompsonSampling(1, PriorUniform, RewardRange{Min: -1, Max: 3}, rand.New(rand.NewPCG(5, 6)))

	// WHEN a reward of 2 (three quarters of the range) is observed
	p.Update(s, 0, 2)

	// THEN the posterior moves by the normalized value and the running mean keeps the raw one
	assert.Equal(t, 1.75, s.Arms[0].Alpha)
	assert.Equal(t, 1.25, s.Arms[0].Beta)
	assert.Equal(t, 2.0, s.Mean(0))
}

func TestThompsonPolicy_DecaysEveryArmsPosterior(t *testing.T) {
	s := NewStatistics(2)
	s.Arms[1].Alpha, s.Arms[1].Beta = 11, 1
	p := NewThompsonSampling(0.5, "", RewardRange{Min: 0, Max: 1}, rand.New(rand.NewPCG(5, 6)))

	p.Update(s, 0, 1)

	assert.Equal(t, 6.0, s.Arms[1].Alpha, "the unplayed arm decays too")
	assert.Equal(t, 2.0, s.Arms[0].Alpha)
}

func TestThompsonPolicy_Select_PrefersConfidentBestArm(t *testing.T) {
	s := NewStatistics(2)
	s.Arms[0].Alpha, s.Arms[0].Beta = 2, 200
	s.Arms[1].Alpha, s.Arms[1].Beta = 200, 2
	p := NewThompsonSampling(1, PriorUniform, RewardRange{Min: 0, Max: 1}, rand.New(rand.NewPCG(7, 8)))

	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, p.Select(s))
	}
}
