package synthetic

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
)

func arm(id int) bandit.Arm {
	return bandit.Arm{ID: id, Name: "a"}
}

func testSpec() Spec {
	return Spec{
		Metrics: []string{"ipc_delta", "llc_mpki"},
		Means:   [][]float64{{0.1, 4}, {0.3, 2}, {0.2, 3}},
		Noise:   0.05,
		Shifts:  []Shift{{Epoch: 2, Swap: [2]int{0, 1}}},
	}
}

func TestSimulator_Advance_NoiseStaysInBand(t *testing.T) {
	// GIVEN a simulator with noise 0.05
	s, err := New(testSpec(), 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.NoError(t, s.ApplyAction(arm(1)))

	// WHEN two windows are simulated (before the shift)
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Advance(context.Background(), 500))
		m, ts, err := s.CurrentMetrics()
		require.NoError(t, err)

		// THEN every metric is within the noise band of arm 1's mean and time advances
		assert.InDelta(t, 0.3, m["ipc_delta"], 0.05)
		assert.InDelta(t, 2, m["llc_mpki"], 0.05)
		assert.Equal(t, uint64(500*(i+1)), ts)
	}
}

func TestSimulator_Shift_SwapsArms(t *testing.T) {
	// GIVEN a noiseless simulator with a swap of arms 0 and 1 at epoch 2
	spec := testSpec()
	spec.Noise = 0
	s, err := New(spec, 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.NoError(t, s.ApplyAction(arm(0)))

	// WHEN three windows run under arm 0
	var ipc []float64
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Advance(context.Background(), 1))
		m, _, _ := s.CurrentMetrics()
		ipc = append(ipc, m["ipc_delta"])
	}

	// THEN arm 0 pays its own mean until the shift and arm 1's afterwards
	assert.Equal(t, []float64{0.1, 0.1, 0.3}, ipc)
	assert.Equal(t, [][]float64{{0.3, 2}, {0.1, 4}, {0.2, 3}}, s.MeansAt(2))
}

func TestSimulator_ExpectedReward(t *testing.T) {
	s, err := New(testSpec(), 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	weights := map[string]float64{"ipc_delta": 1, "llc_mpki": -0.01}

	assert.InDelta(t, 0.3-0.02, s.ExpectedReward(0, 1, weights), 1e-12)
	assert.InDelta(t, 0.1-0.04, s.ExpectedReward(5, 1, weights), 1e-12)
}

func TestSimulator_FailApply_InjectsFailures(t *testing.T) {
	// GIVEN two injected failures at epoch 0
	spec := testSpec()
	spec.FailApply = map[int64]int{0: 2}
	s, err := New(spec, 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	// WHEN apply is called three times
	// THEN the first two fail and the third succeeds
	assert.Error(t, s.ApplyAction(arm(0)))
	assert.Error(t, s.ApplyAction(arm(0)))
	assert.NoError(t, s.ApplyAction(arm(0)))
	assert.Equal(t, 2, spec.FailApply[0], "New copies FailApply")
}

func TestSimulator_AdvanceBeforeApply_Error(t *testing.T) {
	s, err := New(testSpec(), 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	assert.Error(t, s.Advance(context.Background(), 1))
	assert.Error(t, s.ApplyAction(arm(3)))
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"no metrics", func(s *Spec) { s.Metrics = nil }},
		{"row count", func(s *Spec) { s.Means = s.Means[:2] }},
		{"row width", func(s *Spec) { s.Means[1] = []float64{1} }},
		{"negative noise", func(s *Spec) { s.Noise = -1 }},
		{"unknown arm in shift", func(s *Spec) { s.Shifts = []Shift{{Epoch: 1, Swap: [2]int{0, 3}}} }},
		{"negative shift epoch", func(s *Spec) { s.Shifts = []Shift{{Epoch: -1, Swap: [2]int{0, 1}}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(&spec)
			assert.Error(t, spec.Validate(3))
		})
	}
	assert.NoError(t, testSpec().Validate(3))
}
