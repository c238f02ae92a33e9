// Package trace holds the per-run decision log: one DecisionEpoch per control
// step, kept in order for offline analysis. It does not import bandit.
package trace

import "maps"

// DecisionEpoch captures one step of the control loop.
// Records are immutable once appended to a DecisionLog.
type DecisionEpoch struct {
	Index     int64              // epoch index, starts at 0
	ArmID     int                // arm that was active during the window
	ArmName   string             // registry name of ArmID
	Metrics   map[string]float64 // raw metrics of the just-finished window
	Reward    float64            // reward fed to the engine (or scored, for fallback epochs)
	Timestamp uint64             // simulator instruction/cycle count when metrics were sampled
	Fallback  bool               // true when the selected arm could not be applied
}

// clone returns a copy that shares no map with the original.
func (d DecisionEpoch) clone() DecisionEpoch {
	d.Metrics = maps.Clone(d.Metrics)
	return d
}
