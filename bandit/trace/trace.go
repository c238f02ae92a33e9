package trace

import "fmt"

// DecisionLog is the append-only, ordered sequence of DecisionEpochs of one run.
type DecisionLog struct {
	epochs []DecisionEpoch
}

// NewDecisionLog creates an empty DecisionLog ready for recording.
func NewDecisionLog() *DecisionLog {
	return &DecisionLog{epochs: make([]DecisionEpoch, 0)}
}

// Record appends an epoch. Its index must equal Len(); anything else would
// reorder or rewrite history and is rejected.
func (l *DecisionLog) Record(e DecisionEpoch) error {
	if e.Index != int64(len(l.epochs)) {
		return fmt.Errorf("decision log: epoch %d out of order, next index is %d", e.Index, len(l.epochs))
	}
	l.epochs = append(l.epochs, e.clone())
	return nil
}

// Len returns the number of recorded epochs.
func (l *DecisionLog) Len() int {
	return len(l.epochs)
}

// Epochs returns a copy of the recorded epochs in order.
func (l *DecisionLog) Epochs() []DecisionEpoch {
	out := make([]DecisionEpoch, len(l.epochs))
	for i, e := range l.epochs {
		out[i] = e.clone()
	}
	return out
}

// At returns the epoch with the given index.
func (l *DecisionLog) At(index int64) (DecisionEpoch, bool) {
	if index < 0 || index >= int64(len(l.epochs)) {
		return DecisionEpoch{}, false
	}
	return l.epochs[index].clone(), true
}
