package bandit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Engine holds the per-arm statistics of one run and enforces the
// select/update protocol around a pluggable SelectionPolicy.
//
// Every epoch is exactly one Select followed by exactly one Update for the
// arm Select returned. Before any score is consulted each arm is selected
// once in ascending ID order (cold start), whatever the strategy.
//
// An Engine performs no I/O and is driven by a single caller; it is not
// safe for concurrent use. Parallel sweeps give each run its own Engine.
type Engine struct {
	cfg      BanditConfig
	k        int
	stats    Statistics
	policy   SelectionPolicy
	reporter SignalReporter

	epoch      int64
	pending    int
	hasPending bool
}

// NewEngine validates cfg against registry and builds an engine whose
// exploration draws come from rng. rng must be owned by this run; a nil
// reporter gets a private WarningLog.
func NewEngine(cfg BanditConfig, registry *ArmRegistry, rng *rand.Rand, reporter SignalReporter) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil || registry.Len() < 2 {
		k := 0
		if registry != nil {
			k = registry.Len()
		}
		return nil, &ConfigurationError{Param: "arms", Value: k, Reason: "at least 2 arms are required"}
	}
	if rng == nil {
		return nil, &ConfigurationError{Param: "rng", Value: nil, Reason: "each run needs its own seeded random source"}
	}
	if reporter == nil {
		reporter = NewWarningLog()
	}
	cfg = cfg.Clone()
	return &Engine{
		cfg:      cfg,
		k:        registry.Len(),
		stats:    NewStatistics(registry.Len()),
		policy:   NewSelectionPolicy(cfg, rng),
		reporter: reporter,
	}, nil
}

// Select returns the arm to play this epoch.
// Returns a *ProtocolError if the previous selection has not been updated.
func (e *Engine) Select() (int, error) {
	if e.hasPending {
		return 0, &ProtocolError{
			Op:     "select",
			Epoch:  e.epoch,
			Reason: fmt.Sprintf("arm %d was selected and never updated", e.pending),
		}
	}

	arm, cold := e.coldStartArm()
	if !cold {
		arm = e.policy.Select(e.stats)
	}
	e.pending, e.hasPending = arm, true
	logrus.Debugf("[epoch %06d] %s selected arm %d (cold=%v)", e.epoch, e.policy.Name(), arm, cold)
	return arm, nil
}

// coldStartArm returns the lowest-ID arm never updated, if any.
func (e *Engine) coldStartArm() (int, bool) {
	for i, a := range e.stats.Arms {
		if a.Selections == 0 {
			return i, true
		}
	}
	return 0, false
}

// Update feeds the reward observed for this epoch's selection.
//
// It returns a *ProtocolError, leaving statistics untouched, when no
// selection is pending (including a second update for the same epoch) or
// when arm differs from the selected arm. A non-finite reward is replaced by
// 0 and an out-of-range reward is clipped; both are reported, not returned,
// tagged with the engine's own epoch count.
func (e *Engine) Update(arm int, reward float64) error {
	return e.UpdateAt(e.epoch, arm, reward)
}

// UpdateAt is Update with reported signals tagged with index, the caller's
// decision-log index. The two differ once an epoch has run under a fallback
// arm, since cancelled selections do not advance the engine.
func (e *Engine) UpdateAt(index int64, arm int, reward float64) error {
	if !e.hasPending {
		return &ProtocolError{Op: "update", Epoch: e.epoch, Reason: "no pending selection"}
	}
	if arm != e.pending {
		return &ProtocolError{
			Op:     "update",
			Epoch:  e.epoch,
			Reason: fmt.Sprintf("arm %d was not selected (selected %d)", arm, e.pending),
		}
	}

	rr := e.cfg.Reward.Range()
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		sub, _ := rr.Clip(0)
		e.reporter.ReportSignal(&SignalError{Epoch: index, Signal: "reward", Value: reward, Reason: "reward not finite", Substitute: sub})
		reward = sub
	}
	if clipped, ok := rr.Clip(reward); ok {
		e.reporter.ReportSignal(&SignalError{Epoch: index, Signal: "reward", Value: reward, Reason: "reward out of range, clipped", Substitute: clipped})
		reward = clipped
	}

	e.policy.Update(e.stats, arm, reward)
	e.stats.Arms[arm].Selections++
	e.hasPending = false
	e.epoch++
	return nil
}

// CancelSelection drops the pending selection without touching statistics.
// The epoch counter does not advance. Used when the adapter could not apply
// the selected arm and the epoch ran under a fallback configuration.
func (e *Engine) CancelSelection() error {
	if !e.hasPending {
		return &ProtocolError{Op: "cancel", Epoch: e.epoch, Reason: "no pending selection"}
	}
	e.hasPending = false
	return nil
}

// Pending returns the selected-but-not-updated arm, if any.
func (e *Engine) Pending() (int, bool) {
	return e.pending, e.hasPending
}

// Epoch returns the number of completed updates.
func (e *Engine) Epoch() int64 {
	return e.epoch
}

// InColdStart reports whether some arm has not been updated yet.
func (e *Engine) InColdStart() bool {
	_, cold := e.coldStartArm()
	return cold
}

// Snapshot returns a deep copy of the statistics.
func (e *Engine) Snapshot() Statistics {
	return e.stats.Clone()
}

// TotalPulls returns the discounted total pull count N.
func (e *Engine) TotalPulls() float64 {
	return e.stats.TotalPulls()
}

// Strategy returns the active strategy.
func (e *Engine) Strategy() Strategy {
	return e.policy.Name()
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() BanditConfig {
	return e.cfg.Clone()
}

// NumArms returns K.
func (e *Engine) NumArms() int {
	return e.k
}
