// Package synthetic provides a stochastic stand-in for a cycle-level
// simulator: every arm emits its configured per-metric means plus bounded
// uniform noise, and scheduled regime shifts swap arms mid-run to model
// program phase changes.
package synthetic

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
)

// Shift swaps the mean vectors of two arms starting at Epoch.
type Shift struct {
	Epoch int64  `yaml:"epoch"`
	Swap  [2]int `yaml:"swap"`
}

// Spec configures a synthetic simulator.
type Spec struct {
	Metrics []string    `yaml:"metrics"` // metric names, in column order of Means
	Means   [][]float64 `yaml:"means"`   // Means[arm][metric]
	Noise   float64     `yaml:"noise"`   // half-width of the uniform noise band
	Shifts  []Shift     `yaml:"shifts,omitempty"`

	// FailApply makes ApplyAction fail the given number of times at an epoch.
	FailApply map[int64]int `yaml:"fail_apply,omitempty"`
}

// Validate checks the spec against the number of arms in the registry.
func (s Spec) Validate(numArms int) error {
	if len(s.Metrics) == 0 {
		return errors.New("synthetic: at least one metric is required")
	}
	if len(s.Means) != numArms {
		return fmt.Errorf("synthetic: means has %d rows, registry has %d arms", len(s.Means), numArms)
	}
	for i, row := range s.Means {
		if len(row) != len(s.Metrics) {
			return fmt.Errorf("synthetic: means[%d] has %d values, want %d", i, len(row), len(s.Metrics))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("synthetic: means[%d][%d] must be finite, got %v", i, j, v)
			}
		}
	}
	if s.Noise < 0 || math.IsNaN(s.Noise) {
		return fmt.Errorf("synthetic: noise must be non-negative, got %v", s.Noise)
	}
	for i, sh := range s.Shifts {
		if sh.Epoch < 0 {
			return fmt.Errorf("synthetic: shifts[%d].epoch must be non-negative, got %d", i, sh.Epoch)
		}
		for _, a := range sh.Swap {
			if a < 0 || a >= numArms {
				return fmt.Errorf("synthetic: shifts[%d] swaps unknown arm %d", i, a)
			}
		}
	}
	return nil
}

// Simulator implements controller.SimulatorAdapter.
type Simulator struct {
	spec     Spec
	rng      *rand.Rand
	active   int
	applied  bool
	epoch    int64
	clock    uint64
	last     bandit.Metrics
	failures map[int64]int
}

// New creates a Simulator for numArms arms drawing noise from rng.
func New(spec Spec, numArms int, rng *rand.Rand) (*Simulator, error) {
	if err := spec.Validate(numArms); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("synthetic: nil random source")
	}
	return &Simulator{
		spec:     spec,
		rng:      rng,
		last:     bandit.Metrics{},
		failures: maps.Clone(spec.FailApply),
	}, nil
}

// ApplyAction implements controller.SimulatorAdapter.
func (s *Simulator) ApplyAction(arm bandit.Arm) error {
	if n := s.failures[s.epoch]; n > 0 {
		s.failures[s.epoch] = n - 1
		return fmt.Errorf("synthetic: injected apply failure at epoch %d", s.epoch)
	}
	if arm.ID < 0 || arm.ID >= len(s.spec.Means) {
		return fmt.Errorf("synthetic: unknown arm %d", arm.ID)
	}
	s.active, s.applied = arm.ID, true
	return nil
}

// Advance implements controller.SimulatorAdapter.
func (s *Simulator) Advance(_ context.Context, window uint64) error {
	if !s.applied {
		return errors.New("synthetic: advance before any arm was applied")
	}
	means := s.MeansAt(s.epoch)[s.active]
	m := make(bandit.Metrics, len(s.spec.Metrics))
	for j, name := range s.spec.Metrics {
		m[name] = means[j] + s.spec.Noise*(2*s.rng.Float64()-1)
	}
	s.last = m
	s.clock += window
	s.epoch++
	return nil
}

// CurrentMetrics implements controller.SimulatorAdapter.
func (s *Simulator) CurrentMetrics() (bandit.Metrics, uint64, error) {
	return maps.Clone(s.last), s.clock, nil
}

// MeansAt returns the per-arm mean vectors in effect during epoch, after
// every shift scheduled at or before it.
func (s *Simulator) MeansAt(epoch int64) [][]float64 {
	means := make([][]float64, len(s.spec.Means))
	for i, row := range s.spec.Means {
		means[i] = append([]float64(nil), row...)
	}
	for _, sh := range s.spec.Shifts {
		if sh.Epoch <= epoch {
			a, b := sh.Swap[0], sh.Swap[1]
			means[a], means[b] = means[b], means[a]
		}
	}
	return means
}

// ExpectedReward is the noise-free reward of arm during epoch under the
// given metric weights. It is the oracle used for regret.
func (s *Simulator) ExpectedReward(epoch int64, arm int, weights map[string]float64) float64 {
	row := s.MeansAt(epoch)[arm]
	total := 0.0
	for j, name := range s.spec.Metrics {
		total += weights[name] * row[j]
	}
	return total
}
