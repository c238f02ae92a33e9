package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/trace"
)

// SimulatorAdapter is the narrow contract between the controller and a
// cycle-level simulator integration (ChampSim, Gem5, or a stand-in).
type SimulatorAdapter interface {
	// ApplyAction reconfigures the simulated hardware for the next window.
	// It must take effect before the next instruction/cycle is simulated.
	ApplyAction(arm bandit.Arm) error

	// Advance runs the simulator for one epoch window of the given number of
	// instructions or cycles and returns once the window boundary is reached.
	Advance(ctx context.Context, window uint64) error

	// CurrentMetrics returns the raw signals of the just-completed window
	// (never cumulative run totals) and the simulator timestamp at sampling.
	CurrentMetrics() (bandit.Metrics, uint64, error)
}

// Recorder persists decision epochs as they are appended to the log.
type Recorder interface {
	Write(e trace.DecisionEpoch) error
}

// AdapterFailure reports a simulator adapter call that could not be
// recovered. The run is aborted.
type AdapterFailure struct {
	Epoch int64
	ArmID int
	Op    string // "apply", "advance" or "metrics"
	Err   error
}

func (e *AdapterFailure) Error() string {
	return fmt.Sprintf("adapter %s failed at epoch %d (arm %d): %v", e.Op, e.Epoch, e.ArmID, e.Err)
}

func (e *AdapterFailure) Unwrap() error {
	return e.Err
}

// IsAdapterFailure reports whether err wraps an *AdapterFailure.
func IsAdapterFailure(err error) bool {
	var af *AdapterFailure
	return errors.As(err, &af)
}
