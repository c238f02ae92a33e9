package bandit

import "math"

// minPriorMass keeps a pooled decay target strictly positive when every
// observed reward so far sat on one bound.
const minPriorMass = 0.01

// ArmStatistics is the per-arm state owned by the Engine.
//
// Pulls and Reward are the discounted pull count n and discounted cumulative
// reward r. Alpha and Beta parameterize the Thompson Sampling posterior and
// stay > 0. Selections is the raw, undiscounted number of completed updates
// and drives the cold-start phase.
type ArmStatistics struct {
	Pulls      float64
	Reward     float64
	Alpha      float64
	Beta       float64
	Selections int64
}

// Statistics holds the state of all K arms.
type Statistics struct {
	Arms []ArmStatistics
}

// NewStatistics returns zeroed statistics for k arms with Beta(1,1) posteriors.
func NewStatistics(k int) Statistics {
	arms := make([]ArmStatistics, k)
	for i := range arms {
		arms[i].Alpha = 1
		arms[i].Beta = 1
	}
	return Statistics{Arms: arms}
}

// Clone returns a deep copy.
func (s Statistics) Clone() Statistics {
	arms := make([]ArmStatistics, len(s.Arms))
	copy(arms, s.Arms)
	return Statistics{Arms: arms}
}

// TotalPulls returns N, the sum of discounted pull counts.
func (s Statistics) TotalPulls() float64 {
	total := 0.0
	for _, a := range s.Arms {
		total += a.Pulls
	}
	return total
}

// Mean returns r_i / n_i, or 0 for an arm with no (remaining) evidence.
func (s Statistics) Mean(i int) float64 {
	a := s.Arms[i]
	if a.Pulls <= 0 {
		return 0
	}
	return a.Reward / a.Pulls
}

// PosteriorMean returns alpha / (alpha + beta) for arm i.
func (s Statistics) PosteriorMean(i int) float64 {
	a := s.Arms[i]
	return a.Alpha / (a.Alpha + a.Beta)
}

// Discount applies one epoch of geometric decay to every arm's pull count and
// reward, independent of which arm was chosen. gamma = 1 is the identity.
func (s Statistics) Discount(gamma float64) {
	if gamma == 1 {
		return
	}
	for i := range s.Arms {
		s.Arms[i].Pulls *= gamma
		s.Arms[i].Reward *= gamma
	}
}

// Observe adds one reward observation to arm i's running counts.
func (s Statistics) Observe(i int, reward float64) {
	s.Arms[i].Pulls++
	s.Arms[i].Reward += reward
}

// DecayPosterior pulls every arm's (alpha, beta) a factor gamma of the way
// back toward the target prior: alpha <- a0 + gamma*(alpha - a0).
// gamma = 1 is the identity.
func (s Statistics) DecayPosterior(gamma float64, prior Prior) {
	if gamma == 1 {
		return
	}
	a0, b0 := s.priorTarget(prior)
	for i := range s.Arms {
		s.Arms[i].Alpha = a0 + gamma*(s.Arms[i].Alpha-a0)
		s.Arms[i].Beta = b0 + gamma*(s.Arms[i].Beta-b0)
	}
}

// priorTarget returns the (alpha, beta) the posterior decays toward.
func (s Statistics) priorTarget(prior Prior) (float64, float64) {
	if prior != PriorPooled {
		return 1, 1
	}
	successes, trials := 0.0, 0.0
	for _, a := range s.Arms {
		successes += a.Alpha - 1
		trials += a.Alpha + a.Beta - 2
	}
	mean := 0.5
	if trials > 0 {
		mean = math.Max(0, math.Min(1, successes/trials))
	}
	a0 := math.Max(minPriorMass, 2*mean)
	b0 := math.Max(minPriorMass, 2*(1-mean))
	return a0, b0
}

// ObservePosterior adds a reward already mapped into [0,1] to arm i's posterior.
func (s Statistics) ObservePosterior(i int, x float64) {
	s.Arms[i].Alpha += x
	s.Arms[i].Beta += 1 - x
}

// HalfLife returns the number of epochs after which discounted evidence
// weighs half as much: ln 2 / ln(1/gamma). It is +Inf for gamma = 1.
func HalfLife(gamma float64) float64 {
	if gamma >= 1 {
		return math.Inf(1)
	}
	return math.Ln2 / math.Log(1/gamma)
}

// DiscountBound returns 1/(1-gamma), the limit of the discounted total pull
// count. It is +Inf for gamma = 1.
func DiscountBound(gamma float64) float64 {
	if gamma >= 1 {
		return math.Inf(1)
	}
	return 1 / (1 - gamma)
}
