package bandit

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ThompsonPolicy samples each arm's Beta posterior and plays the largest draw.
//
// Rewards are mapped from the configured range into [0,1] before the
// posterior update alpha += x, beta += 1-x. With gamma < 1 every arm's
// posterior first decays toward the configured prior each epoch.
type ThompsonPolicy struct {
	gamma float64
	prior Prior
	rr    RewardRange
	rng   *rand.Rand
}

// NewThompsonSampling creates a Thompson Sampling policy drawing from rng.
func NewThompsonSampling(gamma float64, prior Prior, rr RewardRange, rng *rand.Rand) *ThompsonPolicy {
	if prior == "" {
		prior = PriorUniform
	}
	return &ThompsonPolicy{gamma: gamma, prior: prior, rr: rr, rng: rng}
}

// Name implements SelectionPolicy.
func (p *ThompsonPolicy) Name() Strategy { return StrategyThompson }

// Select implements SelectionPolicy.
func (p *ThompsonPolicy) Select(stats Statistics) int {
	samples := make([]float64, len(stats.Arms))
	for i, a := range stats.Arms {
		dist := distuv.Beta{Alpha: a.Alpha, Beta: a.Beta, Src: p.rng}
		samples[i] = dist.Rand()
	}
	return argmax(samples)
}

// Update implements SelectionPolicy. The discounted running mean is kept
// alongside the posterior for diagnostics.
func (p *ThompsonPolicy) Update(stats Statistics, arm int, reward float64) {
	stats.DecayPosterior(p.gamma, p.prior)
	stats.ObservePosterior(arm, p.rr.Normalize(reward))
	stats.Discount(p.gamma)
	stats.Observe(arm, reward)
}
