package trace

import (
	"testing"
)

func epoch(index int64, arm int, reward float64) DecisionEpoch {
	return DecisionEpoch{
		Index:     index,
		ArmID:     arm,
		ArmName:   "arm",
		Metrics:   map[string]float64{"ipc": reward},
		Reward:    reward,
		Timestamp: uint64(index+1) * 100,
	}
}

func TestDecisionLog_Record_AppendsInOrder(t *testing.T) {
	// GIVEN an empty log
	l := NewDecisionLog()

	// WHEN three epochs are recorded
	for i := int64(0); i < 3; i++ {
		if err := l.Record(epoch(i, int(i%2), 0.5)); err != nil {
			t.Fatalf("Record(%d): %v", i, err)
		}
	}

	// THEN they come back in index order
	if l.Len() != 3 {
		t.Fatalf("expected 3 epochs, got %d", l.Len())
	}
	for i, e := range l.Epochs() {
		if e.Index != int64(i) {
			t.Errorf("epoch %d has index %d", i, e.Index)
		}
	}
}

func TestDecisionLog_Record_RejectsGapsAndRewrites(t *testing.T) {
	// GIVEN a log with epoch 0
	l := NewDecisionLog()
	if err := l.Record(epoch(0, 0, 1)); err != nil {
		t.Fatal(err)
	}

	// WHEN epoch 0 is recorded again or epoch 2 skips ahead
	// THEN both are rejected and the log is unchanged
	if err := l.Record(epoch(0, 1, 0)); err == nil {
		t.Error("expected error when rewriting epoch 0")
	}
	if err := l.Record(epoch(2, 1, 0)); err == nil {
		t.Error("expected error when skipping epoch 1")
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 epoch, got %d", l.Len())
	}
	if e, _ := l.At(0); e.ArmID != 0 {
		t.Errorf("epoch 0 was rewritten to arm %d", e.ArmID)
	}
}

func TestDecisionLog_RecordedEpochs_Immutable(t *testing.T) {
	// GIVEN a recorded epoch whose metrics map the caller still holds
	l := NewDecisionLog()
	e := epoch(0, 0, 0.4)
	if err := l.Record(e); err != nil {
		t.Fatal(err)
	}

	// WHEN the caller mutates its map and a returned copy
	e.Metrics["ipc"] = 9
	got := l.Epochs()
	got[0].Metrics["ipc"] = 7
	got[0].Reward = 7

	// THEN the log still holds the original values
	stored, ok := l.At(0)
	if !ok {
		t.Fatal("At(0) not found")
	}
	if stored.Metrics["ipc"] != 0.4 || stored.Reward != 0.4 {
		t.Errorf("log was mutated: %+v", stored)
	}
}

func TestDecisionLog_At_OutOfRange(t *testing.T) {
	l := NewDecisionLog()
	if _, ok := l.At(0); ok {
		t.Error("At(0) on empty log returned ok")
	}
	if _, ok := l.At(-1); ok {
		t.Error("At(-1) returned ok")
	}
}
