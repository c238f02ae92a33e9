package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/adapter/replay"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/adapter/synthetic"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/controller"
)

// RunFile is the YAML description of a run: the engine configuration, the
// arm set, and which simulator drives it.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type RunFile struct {
	Bandit bandit.BanditConfig `yaml:"bandit"`
	Arms   []bandit.ArmSpec    `yaml:"arms"`
	Epochs int                 `yaml:"epochs"`
	Seed   int64               `yaml:"seed"`

	// Exactly one simulator source.
	Synthetic *synthetic.Spec `yaml:"synthetic,omitempty"`
	Replay    string          `yaml:"replay,omitempty"` // path, relative to the run file

	// Sweep lists configuration variants for the sweep command.
	Sweep []SweepEntry `yaml:"sweep,omitempty"`
}

// SweepEntry overrides parts of the base bandit section for one sweep run.
type SweepEntry struct {
	Name          string          `yaml:"name"`
	Strategy      bandit.Strategy `yaml:"strategy,omitempty"`
	Gamma         *float64        `yaml:"gamma,omitempty"`
	Exploration   *float64        `yaml:"exploration,omitempty"`
	Epsilon       *float64        `yaml:"epsilon,omitempty"`
	ThompsonGamma *float64        `yaml:"thompson_gamma,omitempty"`
	ThompsonPrior bandit.Prior    `yaml:"thompson_prior,omitempty"`
	Seed          *int64          `yaml:"seed,omitempty"`
}

// Apply returns base with the entry's overrides.
func (e SweepEntry) Apply(base bandit.BanditConfig) bandit.BanditConfig {
	cfg := base.Clone()
	if e.Strategy != "" {
		cfg.Strategy = e.Strategy
	}
	if e.Gamma != nil {
		cfg.Gamma = *e.Gamma
	}
	if e.Exploration != nil {
		cfg.Exploration = *e.Exploration
	}
	if e.Epsilon != nil {
		cfg.Epsilon = *e.Epsilon
	}
	if e.ThompsonGamma != nil {
		cfg.ThompsonGamma = *e.ThompsonGamma
	}
	if e.ThompsonPrior != "" {
		cfg.ThompsonPrior = e.ThompsonPrior
	}
	return cfg
}

// LoadRunFile parses a run file with strict field checking. Fields missing
// from the bandit section keep DefaultBanditConfig values.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	rf, err := parseRunFile(data)
	if err != nil {
		return nil, fmt.Errorf("run file %s: %w", path, err)
	}
	if rf.Replay != "" && !filepath.IsAbs(rf.Replay) {
		rf.Replay = filepath.Join(filepath.Dir(path), rf.Replay)
	}
	return rf, nil
}

func parseRunFile(data []byte) (*RunFile, error) {
	rf := &RunFile{Bandit: bandit.DefaultBanditConfig(), Seed: 42}
	// yaml.v3 merges into a non-nil map; user weights must replace the defaults.
	rf.Bandit.Reward.Weights = nil

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(rf); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if rf.Bandit.Reward.Weights == nil {
		rf.Bandit.Reward.Weights = bandit.DefaultBanditConfig().Reward.Weights
	}
	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return rf, nil
}

// Validate checks everything that can be checked before a simulator exists.
func (rf *RunFile) Validate() error {
	if err := rf.Bandit.Validate(); err != nil {
		return err
	}
	if _, err := bandit.NewArmRegistry(rf.Arms); err != nil {
		return err
	}
	if rf.Epochs <= 0 {
		return &bandit.ConfigurationError{Param: "epochs", Value: rf.Epochs, Reason: "must be positive"}
	}
	switch {
	case rf.Synthetic == nil && rf.Replay == "":
		return errors.New("one of synthetic or replay is required")
	case rf.Synthetic != nil && rf.Replay != "":
		return errors.New("synthetic and replay are mutually exclusive")
	case rf.Synthetic != nil:
		if err := rf.Synthetic.Validate(len(rf.Arms)); err != nil {
			return err
		}
	}
	names := make(map[string]bool, len(rf.Sweep))
	for i, e := range rf.Sweep {
		if e.Name == "" {
			return fmt.Errorf("sweep[%d]: name is required", i)
		}
		if names[e.Name] {
			return fmt.Errorf("sweep[%d]: duplicate name %q", i, e.Name)
		}
		names[e.Name] = true
		if err := e.Apply(rf.Bandit).Validate(); err != nil {
			return fmt.Errorf("sweep %q: %w", e.Name, err)
		}
	}
	return nil
}

// AdapterFactory returns the factory for the run file's simulator source.
// A replay recording is loaded once and shared read-only by every run; its
// window, when recorded, must equal the bandit epoch window.
func (rf *RunFile) AdapterFactory() (controller.AdapterFactory, error) {
	if rf.Synthetic != nil {
		spec := *rf.Synthetic
		return func(registry *bandit.ArmRegistry, rng *bandit.PartitionedRNG) (controller.SimulatorAdapter, error) {
			return synthetic.New(spec, registry.Len(), rng.ForSubsystem(bandit.SubsystemAdapter))
		}, nil
	}
	rec, err := replay.Load(rf.Replay)
	if err != nil {
		return nil, err
	}
	if rec.Window != 0 && rec.Window != rf.Bandit.EpochWindow {
		return nil, &bandit.ConfigurationError{
			Param:  "epoch_window",
			Value:  rf.Bandit.EpochWindow,
			Reason: fmt.Sprintf("replay %s was recorded with %d-%s windows", rf.Replay, rec.Window, rf.Bandit.EpochUnit),
		}
	}
	return func(registry *bandit.ArmRegistry, _ *bandit.PartitionedRNG) (controller.SimulatorAdapter, error) {
		return replay.New(rec, registry)
	}, nil
}

// BaseSpec is the run described by the bandit section alone, ignoring sweep entries.
func (rf *RunFile) BaseSpec(factory controller.AdapterFactory) controller.RunSpec {
	return controller.RunSpec{
		Name:       "base",
		Config:     rf.Bandit.Clone(),
		Arms:       rf.Arms,
		Seed:       rf.Seed,
		Epochs:     rf.Epochs,
		NewAdapter: factory,
	}
}

// RunSpecs expands the run file into one RunSpec per sweep entry, or the
// BaseSpec when there is no sweep section. Entries without an explicit seed
// get one derived from the file seed and their position.
func (rf *RunFile) RunSpecs(factory controller.AdapterFactory) []controller.RunSpec {
	if len(rf.Sweep) == 0 {
		return []controller.RunSpec{rf.BaseSpec(factory)}
	}

	seeds := bandit.NewPartitionedRNG(bandit.NewSimulationKey(rf.Seed))
	specs := make([]controller.RunSpec, len(rf.Sweep))
	for i, e := range rf.Sweep {
		seed := int64(seeds.ForSubsystem(bandit.SubsystemRun(i)).Uint64() >> 1)
		if e.Seed != nil {
			seed = *e.Seed
		}
		specs[i] = controller.RunSpec{
			Name:       e.Name,
			Config:     e.Apply(rf.Bandit),
			Arms:       rf.Arms,
			Seed:       seed,
			Epochs:     rf.Epochs,
			NewAdapter: factory,
		}
	}
	return specs
}
