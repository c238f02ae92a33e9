package bandit

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// SelectionPolicy is the strategy-specific half of the engine. Statistics
// storage is shared; a policy only contributes its scoring and update rules.
//
// Select is called only after every arm has been selected at least once
// (the Engine runs the cold-start phase itself). Update receives a reward
// already clipped into the configured range.
type SelectionPolicy interface {
	Name() Strategy
	Select(stats Statistics) int
	Update(stats Statistics, arm int, reward float64)
}

// NewSelectionPolicy creates the policy named by cfg.Strategy.
// Valid names are defined in ValidStrategies (config.go).
// Panics on unrecognized names; callers validate cfg first.
func NewSelectionPolicy(cfg BanditConfig, rng *rand.Rand) SelectionPolicy {
	if !ValidStrategies[cfg.Strategy] {
		panic(fmt.Sprintf("unknown strategy %q", cfg.Strategy))
	}
	switch cfg.Strategy {
	case StrategyDUCB:
		return NewDiscountedUCB(cfg.Gamma, cfg.Exploration)
	case StrategyUCB1:
		return NewUCB1(cfg.Exploration)
	case StrategyEpsilonGreedy:
		return NewEpsilonGreedy(cfg.Epsilon, rng)
	case StrategyThompson:
		return NewThompsonSampling(cfg.ThompsonGamma, cfg.ThompsonPrior, cfg.Reward.Range(), rng)
	default:
		panic(fmt.Sprintf("unhandled strategy %q", cfg.Strategy))
	}
}

// argmax returns the index of the largest score.
// Ties are broken by lowest index (strict >); NaN never wins.
func argmax(scores []float64) int {
	best := 0
	bestScore := math.Inf(-1)
	found := false
	for i, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if !found || s > bestScore {
			best, bestScore, found = i, s, true
		}
	}
	return best
}
