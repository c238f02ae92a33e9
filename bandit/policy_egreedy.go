package bandit

import "math/rand/v2"

// EpsilonGreedyPolicy explores a uniformly random arm with probability
// epsilon and otherwise exploits the arm with the best plain running mean.
// Its statistics are never discounted.
type EpsilonGreedyPolicy struct {
	epsilon float64
	rng     *rand.Rand
}

// NewEpsilonGreedy creates an epsilon-greedy policy drawing from rng.
func NewEpsilonGreedy(epsilon float64, rng *rand.Rand) *EpsilonGreedyPolicy {
	return &EpsilonGreedyPolicy{epsilon: epsilon, rng: rng}
}

// Name implements SelectionPolicy.
func (p *EpsilonGreedyPolicy) Name() Strategy { return StrategyEpsilonGreedy }

// Select implements SelectionPolicy.
func (p *EpsilonGreedyPolicy) Select(stats Statistics) int {
	k := len(stats.Arms)
	if p.rng.Float64() < p.epsilon {
		return p.rng.IntN(k)
	}
	means := make([]float64, k)
	for i := range means {
		means[i] = stats.Mean(i)
	}
	return argmax(means)
}

// Update implements SelectionPolicy.
func (p *EpsilonGreedyPolicy) Update(stats Statistics, arm int, reward float64) {
	stats.Observe(arm, reward)
}
