// Package replay drives the decision loop from pre-recorded per-arm metric
// series: each arm is simulated once offline under its fixed configuration,
// and the replayer returns the recorded window of whichever arm is active.
// This gives counterfactual evaluation of strategies without re-running the
// simulator for every decision sequence.
package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
)

// Recording is the on-disk format of a replay file.
type Recording struct {
	Window uint64         `yaml:"window"` // window length the series were recorded with; 0 if unknown
	Arms   []ArmRecording `yaml:"arms"`
}

// ArmRecording holds the per-window metrics of one arm, in window order.
type ArmRecording struct {
	Name   string               `yaml:"name"`
	Epochs []map[string]float64 `yaml:"epochs"`
}

// Load reads and strictly parses a replay file (unknown fields are errors).
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay recording: %w", err)
	}
	var rec Recording
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("parsing replay recording: %w", err)
	}
	return &rec, nil
}

// Replayer implements controller.SimulatorAdapter over a Recording.
// Runs longer than a series wrap around to its first window.
type Replayer struct {
	series  [][]map[string]float64 // indexed by arm ID
	active  int
	applied bool
	epoch   int64
	clock   uint64
	last    bandit.Metrics
}

// New matches recorded series to registry arms by name. Every registry arm
// needs a non-empty series; extra recorded arms are ignored.
func New(rec *Recording, registry *bandit.ArmRegistry) (*Replayer, error) {
	if rec == nil || len(rec.Arms) == 0 {
		return nil, errors.New("replay: empty recording")
	}
	byName := make(map[string][]map[string]float64, len(rec.Arms))
	for i, a := range rec.Arms {
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("replay: arms[%d] repeats name %q", i, a.Name)
		}
		byName[a.Name] = a.Epochs
	}

	arms := registry.Arms()
	series := make([][]map[string]float64, len(arms))
	for _, arm := range arms {
		s, ok := byName[arm.Name]
		if !ok || len(s) == 0 {
			return nil, fmt.Errorf("replay: no recorded windows for arm %q", arm.Name)
		}
		series[arm.ID] = s
	}
	return &Replayer{series: series, last: bandit.Metrics{}}, nil
}

// ApplyAction implements controller.SimulatorAdapter.
func (r *Replayer) ApplyAction(arm bandit.Arm) error {
	if arm.ID < 0 || arm.ID >= len(r.series) {
		return fmt.Errorf("replay: unknown arm %d", arm.ID)
	}
	r.active, r.applied = arm.ID, true
	return nil
}

// Advance implements controller.SimulatorAdapter.
func (r *Replayer) Advance(_ context.Context, window uint64) error {
	if !r.applied {
		return errors.New("replay: advance before any arm was applied")
	}
	s := r.series[r.active]
	r.last = maps.Clone(s[r.epoch%int64(len(s))])
	r.clock += window
	r.epoch++
	return nil
}

// CurrentMetrics implements controller.SimulatorAdapter.
func (r *Replayer) CurrentMetrics() (bandit.Metrics, uint64, error) {
	return maps.Clone(r.last), r.clock, nil
}
