package bandit

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ConfigurationError reports an invalid construction-time parameter: bad K,
// gamma, c, epsilon, reward weights, or degenerate arms. A run that hits one
// never starts.
type ConfigurationError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Param, e.Value, e.Reason)
}

// ProtocolError reports misuse of the select/update protocol by the caller.
// Statistics are never modified by a call that returns a ProtocolError.
type ProtocolError struct {
	Op     string
	Epoch  int64
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation in %s at epoch %d: %s", e.Op, e.Epoch, e.Reason)
}

// SignalError describes a recoverable per-epoch anomaly in a raw metric or a
// reward. It is reported through a SignalReporter and never aborts a run.
type SignalError struct {
	Epoch      int64
	Signal     string
	Value      float64
	Reason     string
	Substitute float64
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("epoch %d: signal %q=%v %s; using %v", e.Epoch, e.Signal, e.Value, e.Reason, e.Substitute)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsProtocolError reports whether err wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// SignalReporter is the warning channel for recoverable signal anomalies.
type SignalReporter interface {
	ReportSignal(err *SignalError)
}

// WarningLog is a SignalReporter that keeps every reported anomaly in order
// and mirrors it to the logrus warning stream. Like the engine it is owned by
// a single run and is not safe for concurrent use.
type WarningLog struct {
	entries []SignalError
}

// NewWarningLog creates an empty WarningLog.
func NewWarningLog() *WarningLog {
	return &WarningLog{}
}

// ReportSignal implements SignalReporter.
func (w *WarningLog) ReportSignal(err *SignalError) {
	if err == nil {
		return
	}
	logrus.Warnf("[epoch %06d] %s: %q=%v, substituted %v", err.Epoch, err.Reason, err.Signal, err.Value, err.Substitute)
	w.entries = append(w.entries, *err)
}

// Warnings returns a copy of every reported anomaly in report order.
func (w *WarningLog) Warnings() []SignalError {
	out := make([]SignalError, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of reported anomalies.
func (w *WarningLog) Len() int {
	return len(w.entries)
}
