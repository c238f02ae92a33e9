package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
)

// AdapterFactory builds the simulator session of one run. rng is the run's
// own PartitionedRNG; adapters draw from bandit.SubsystemAdapter.
type AdapterFactory func(registry *bandit.ArmRegistry, rng *bandit.PartitionedRNG) (SimulatorAdapter, error)

// RecorderFactory opens the persistence sink of one run.
type RecorderFactory func(runID string) (Recorder, error)

// RunSpec is everything needed to build one isolated run.
type RunSpec struct {
	Name        string
	Config      bandit.BanditConfig
	Arms        []bandit.ArmSpec
	Seed        int64
	Epochs      int
	NewAdapter  AdapterFactory
	NewRecorder RecorderFactory // optional
}

// Prepare builds a Controller from spec. Every run gets its own registry,
// warning log, estimator, engine, seeded RNG and adapter session; nothing is
// shared with other runs. Configuration errors surface here, before any
// simulation cost is incurred.
func Prepare(spec RunSpec) (*Controller, error) {
	if err := spec.Config.Validate(); err != nil {
		return nil, err
	}
	registry, err := bandit.NewArmRegistry(spec.Arms)
	if err != nil {
		return nil, err
	}
	if spec.NewAdapter == nil {
		return nil, &bandit.ConfigurationError{Param: "adapter", Value: nil, Reason: "run has no simulator adapter"}
	}

	rng := bandit.NewPartitionedRNG(bandit.NewSimulationKey(spec.Seed))
	warnings := bandit.NewWarningLog()
	estimator, err := bandit.NewRewardEstimator(spec.Config.Reward, warnings)
	if err != nil {
		return nil, err
	}
	engine, err := bandit.NewEngine(spec.Config, registry, rng.ForSubsystem(bandit.SubsystemPolicy), warnings)
	if err != nil {
		return nil, err
	}
	adapter, err := spec.NewAdapter(registry, rng)
	if err != nil {
		return nil, fmt.Errorf("creating adapter for run %q: %w", spec.Name, err)
	}

	c := New(registry, engine, estimator, adapter, WithWarningLog(warnings))
	if spec.NewRecorder != nil {
		rec, err := spec.NewRecorder(c.RunID())
		if err != nil {
			return nil, fmt.Errorf("opening recorder for run %q: %w", spec.Name, err)
		}
		c.recorder = rec
	}
	return c, nil
}

// SweepResult pairs a RunSpec with its outcome.
type SweepResult struct {
	Spec   RunSpec
	Result *Result
	Err    error
}

// Sweep executes independent runs with at most parallelism of them in flight.
// Runs share no mutable state, so results do not depend on parallelism.
// Results are returned in spec order; a failing run does not stop the others.
func Sweep(ctx context.Context, specs []RunSpec, parallelism int) []SweepResult {
	if parallelism < 1 {
		parallelism = 1
	}
	results := make([]SweepResult, len(specs))
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i, spec := range specs {
		results[i].Spec = spec
		wg.Add(1)
		go func(i int, spec RunSpec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c, err := Prepare(spec)
			if err != nil {
				results[i].Err = err
				return
			}
			results[i].Result, results[i].Err = c.Run(ctx, spec.Epochs)
			if results[i].Err != nil {
				logrus.Warnf("sweep run %q failed: %v", spec.Name, results[i].Err)
			}
		}(i, spec)
	}
	wg.Wait()
	return results
}
