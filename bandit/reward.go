package bandit

import (
	"maps"
	"math"
)

// Metrics maps a named raw simulator signal (prefetch_accuracy, ipc_delta,
// bytes_wasted, ...) to its value over one epoch window.
type Metrics map[string]float64

// RewardRange is the closed interval rewards are clipped into.
type RewardRange struct {
	Min float64
	Max float64
}

// Clip clamps x into the range and reports whether it had to.
// NaN is not handled here; callers substitute it first.
func (r RewardRange) Clip(x float64) (float64, bool) {
	if x < r.Min {
		return r.Min, true
	}
	if x > r.Max {
		return r.Max, true
	}
	return x, false
}

// Normalize maps a reward already inside the range onto [0,1].
func (r RewardRange) Normalize(x float64) float64 {
	v := (x - r.Min) / (r.Max - r.Min)
	return math.Max(0, math.Min(1, v))
}

// RewardEstimator turns one epoch's raw metrics into a bounded scalar reward
// with a weighted linear combination. Keeping reward shaping here lets the
// same engine serve the prefetching and SMT fetch-policy use cases, which
// expose different metrics.
type RewardEstimator struct {
	weights  map[string]float64
	names    []string // weight keys in sorted order, for deterministic reporting
	rng      RewardRange
	reporter SignalReporter
}

// NewRewardEstimator validates cfg and returns an estimator that reports
// anomalies to reporter. A nil reporter gets a private WarningLog.
func NewRewardEstimator(cfg RewardConfig, reporter SignalReporter) (*RewardEstimator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = NewWarningLog()
	}
	return &RewardEstimator{
		weights:  maps.Clone(cfg.Weights),
		names:    sortedKeys(cfg.Weights),
		rng:      cfg.Range(),
		reporter: reporter,
	}, nil
}

// Range returns the reward range the estimator clips into.
func (e *RewardEstimator) Range() RewardRange {
	return e.rng
}

// Score returns the clipped weighted reward for one epoch.
//
// A missing or non-finite weighted metric makes the whole epoch score 0
// (clamped into the range) and is reported once per offending metric.
// A finite result outside the range is clipped and reported once.
func (e *RewardEstimator) Score(epoch int64, m Metrics) float64 {
	neutral, _ := e.rng.Clip(0)

	bad := false
	for _, name := range e.names {
		v, ok := m[name]
		switch {
		case !ok:
			e.reporter.ReportSignal(&SignalError{Epoch: epoch, Signal: name, Value: math.NaN(), Reason: "metric missing", Substitute: neutral})
			bad = true
		case !isFinite(v):
			e.reporter.ReportSignal(&SignalError{Epoch: epoch, Signal: name, Value: v, Reason: "metric not finite", Substitute: neutral})
			bad = true
		}
	}
	if bad {
		return neutral
	}

	raw := 0.0
	for _, name := range e.names {
		raw += e.weights[name] * m[name]
	}
	if !isFinite(raw) {
		e.reporter.ReportSignal(&SignalError{Epoch: epoch, Signal: "reward", Value: raw, Reason: "weighted reward overflowed", Substitute: neutral})
		return neutral
	}

	reward, clipped := e.rng.Clip(raw)
	if clipped {
		e.reporter.ReportSignal(&SignalError{Epoch: epoch, Signal: "reward", Value: raw, Reason: "reward out of range, clipped", Substitute: reward})
	}
	return reward
}
