package trace

import "gonum.org/v1/gonum/stat"

// Summary aggregates statistics from a DecisionLog.
type Summary struct {
	TotalEpochs     int
	MeanReward      float64
	ArmDistribution map[int]int // arm ID → epochs it was active
	Switches        int         // epochs whose arm differs from the previous epoch's
	FallbackEpochs  int
}

// Summarize computes aggregate statistics from a DecisionLog.
// Safe for nil or empty logs (returns zero-value fields).
func Summarize(l *DecisionLog) *Summary {
	summary := &Summary{ArmDistribution: make(map[int]int)}
	if l == nil || len(l.epochs) == 0 {
		return summary
	}

	summary.TotalEpochs = len(l.epochs)
	rewards := make([]float64, len(l.epochs))
	for i, e := range l.epochs {
		rewards[i] = e.Reward
		summary.ArmDistribution[e.ArmID]++
		if e.Fallback {
			summary.FallbackEpochs++
		}
		if i > 0 && e.ArmID != l.epochs[i-1].ArmID {
			summary.Switches++
		}
	}
	summary.MeanReward = stat.Mean(rewards, nil)
	return summary
}

// SelectionFrequency returns the fraction of the last n epochs in which arm
// was active. n larger than the log uses the whole log.
func SelectionFrequency(l *DecisionLog, arm int, n int) float64 {
	if l == nil || n <= 0 || len(l.epochs) == 0 {
		return 0
	}
	start := len(l.epochs) - n
	if start < 0 {
		start = 0
	}
	hits := 0
	for _, e := range l.epochs[start:] {
		if e.ArmID == arm {
			hits++
		}
	}
	return float64(hits) / float64(len(l.epochs)-start)
}

// Regret sums, over epochs [from, to), the gap between the best achievable
// expected reward and the expected reward of the arm actually played.
// expected(epoch, arm) is the oracle; it is only known for stand-in simulators.
func Regret(l *DecisionLog, from, to int64, expected func(epoch int64, arm int) float64, numArms int) float64 {
	if l == nil {
		return 0
	}
	if to > int64(len(l.epochs)) {
		to = int64(len(l.epochs))
	}
	total := 0.0
	for i := max(from, 0); i < to; i++ {
		best := expected(i, 0)
		for a := 1; a < numArms; a++ {
			best = max(best, expected(i, a))
		}
		total += best - expected(i, l.epochs[i].ArmID)
	}
	return total
}
