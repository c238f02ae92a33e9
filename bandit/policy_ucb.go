package bandit

import (
	"math"

	"github.com/sirupsen/logrus"
)

// UCBPolicy implements Discounted UCB. UCB1 is the same policy with gamma = 1,
// so both strategies share one scoring path and differ only in decay.
//
// Score: r_i/n_i + c*sqrt(ln(N)/n_i), with N the total discounted pulls.
// Update: decay every arm by gamma, then add the observation to the chosen arm.
type UCBPolicy struct {
	name  Strategy
	gamma float64
	c     float64
}

// NewDiscountedUCB creates a DUCB policy.
func NewDiscountedUCB(gamma, c float64) *UCBPolicy {
	return &UCBPolicy{name: StrategyDUCB, gamma: gamma, c: c}
}

// NewUCB1 creates a UCB1 policy (no decay).
func NewUCB1(c float64) *UCBPolicy {
	return &UCBPolicy{name: StrategyUCB1, gamma: 1, c: c}
}

// Name implements SelectionPolicy.
func (p *UCBPolicy) Name() Strategy { return p.name }

// Scores returns the upper confidence bound of every arm. An arm whose
// discounted count has decayed to zero scores +Inf.
func (p *UCBPolicy) Scores(stats Statistics) []float64 {
	logN := math.Max(0, math.Log(stats.TotalPulls()))
	scores := make([]float64, len(stats.Arms))
	for i, a := range stats.Arms {
		if a.Pulls <= 0 {
			scores[i] = math.Inf(1)
			continue
		}
		scores[i] = a.Reward/a.Pulls + p.c*math.Sqrt(logN/a.Pulls)
	}
	return scores
}

// Select implements SelectionPolicy.
func (p *UCBPolicy) Select(stats Statistics) int {
	scores := p.Scores(stats)
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("%s scores %v", p.name, scores)
	}
	return argmax(scores)
}

// Update implements SelectionPolicy.
func (p *UCBPolicy) Update(stats Statistics, arm int, reward float64) {
	stats.Discount(p.gamma)
	stats.Observe(arm, reward)
}
