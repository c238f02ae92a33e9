package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/trace"
)

// Controller drives the decision loop of one run:
// select → apply → advance one window → observe → score → update → record.
//
// It owns the decision log but no simulator state; everything it knows about
// the hardware comes through the SimulatorAdapter.
type Controller struct {
	registry  *bandit.ArmRegistry
	engine    *bandit.Engine
	estimator *bandit.RewardEstimator
	adapter   SimulatorAdapter
	window    uint64

	runID    string
	log      *trace.DecisionLog
	recorder Recorder
	warnings *bandit.WarningLog

	lastGood    bandit.Arm
	hasLastGood bool
	hasRun      bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder persists every recorded epoch through r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(c *Controller) { c.runID = id }
}

// WithWarningLog attaches the WarningLog shared by the engine and the
// estimator so its entries are returned in the Result.
func WithWarningLog(w *bandit.WarningLog) Option {
	return func(c *Controller) { c.warnings = w }
}

// New creates a Controller. The epoch window comes from the engine's config.
func New(registry *bandit.ArmRegistry, engine *bandit.Engine, estimator *bandit.RewardEstimator,
	adapter SimulatorAdapter, opts ...Option) *Controller {
	c := &Controller{
		registry:  registry,
		engine:    engine,
		estimator: estimator,
		adapter:   adapter,
		window:    engine.Config().EpochWindow,
		log:       trace.NewDecisionLog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runID == "" {
		c.runID = xid.New().String()
	}
	return c
}

// Result is the outcome of a run, complete or aborted.
type Result struct {
	RunID    string
	Strategy bandit.Strategy
	Log      *trace.DecisionLog
	Summary  *trace.Summary
	Warnings []bandit.SignalError
	Final    bandit.Statistics
}

// RunID returns the run identifier.
func (c *Controller) RunID() string {
	return c.runID
}

// Log returns the decision log recorded so far.
func (c *Controller) Log() *trace.DecisionLog {
	return c.log
}

// Run executes epochs decision epochs. The context is only consulted between
// epochs: an epoch that has started always completes. On error the partial
// Result is returned together with the error.
// Returns an error if called more than once.
func (c *Controller) Run(ctx context.Context, epochs int) (*Result, error) {
	if c.hasRun {
		return nil, errors.New("controller: Run called more than once")
	}
	c.hasRun = true

	cfg := c.engine.Config()
	logrus.Infof("run %s: %d epochs of %d %s, strategy=%s, arms=%d",
		c.runID, epochs, c.window, cfg.EpochUnit, cfg.Strategy, c.registry.Len())

	for i := 0; i < epochs; i++ {
		if err := ctx.Err(); err != nil {
			logrus.Warnf("run %s: stopped before epoch %d: %v", c.runID, i, err)
			return c.result(), err
		}
		if err := c.step(ctx); err != nil {
			logrus.Errorf("run %s: aborted at epoch %d: %v", c.runID, i, err)
			return c.result(), err
		}
	}

	logrus.Infof("run %s: complete, %d epochs, %d warnings", c.runID, c.log.Len(), c.warningCount())
	return c.result(), nil
}

// step runs one decision epoch.
func (c *Controller) step(ctx context.Context) error {
	index := int64(c.log.Len())

	_, start, err := c.adapter.CurrentMetrics()
	if err != nil {
		return &AdapterFailure{Epoch: index, ArmID: -1, Op: "metrics", Err: err}
	}
	logrus.Debugf("[epoch %06d] window starts at %d", index, start)

	selected, err := c.engine.Select()
	if err != nil {
		return err
	}
	arm, err := c.registry.ConfigOf(selected)
	if err != nil {
		return err
	}

	active, err := c.apply(index, arm)
	if err != nil {
		return err
	}
	fallback := active.ID != selected
	if fallback {
		if err := c.engine.CancelSelection(); err != nil {
			return err
		}
	}

	if err := c.adapter.Advance(ctx, c.window); err != nil {
		return &AdapterFailure{Epoch: index, ArmID: active.ID, Op: "advance", Err: err}
	}
	metrics, ts, err := c.adapter.CurrentMetrics()
	if err != nil {
		return &AdapterFailure{Epoch: index, ArmID: active.ID, Op: "metrics", Err: err}
	}

	reward := c.estimator.Score(index, metrics)
	if !fallback {
		if err := c.engine.UpdateAt(index, selected, reward); err != nil {
			return err
		}
	}

	record := trace.DecisionEpoch{
		Index:     index,
		ArmID:     active.ID,
		ArmName:   active.Name,
		Metrics:   metrics,
		Reward:    reward,
		Timestamp: ts,
		Fallback:  fallback,
	}
	if err := c.log.Record(record); err != nil {
		return err
	}
	if c.recorder != nil {
		if err := c.recorder.Write(record); err != nil {
			return fmt.Errorf("recording epoch %d: %w", index, err)
		}
	}
	return nil
}

// apply reconfigures the simulator for arm. On failure it retries once with
// the last arm that applied successfully (or arm itself if none has yet) and
// returns whichever arm is now active.
func (c *Controller) apply(index int64, arm bandit.Arm) (bandit.Arm, error) {
	err := c.adapter.ApplyAction(arm)
	if err == nil {
		c.lastGood, c.hasLastGood = arm, true
		return arm, nil
	}

	retry := arm
	if c.hasLastGood {
		retry = c.lastGood
	}
	logrus.Warnf("[epoch %06d] applying %s failed: %v; retrying with %s", index, arm, err, retry)
	if retryErr := c.adapter.ApplyAction(retry); retryErr != nil {
		return bandit.Arm{}, &AdapterFailure{Epoch: index, ArmID: retry.ID, Op: "apply", Err: errors.Join(err, retryErr)}
	}
	c.lastGood, c.hasLastGood = retry, true
	return retry, nil
}

func (c *Controller) warningCount() int {
	if c.warnings == nil {
		return 0
	}
	return c.warnings.Len()
}

func (c *Controller) result() *Result {
	r := &Result{
		RunID:    c.runID,
		Strategy: c.engine.Strategy(),
		Log:      c.log,
		Summary:  trace.Summarize(c.log),
		Final:    c.engine.Snapshot(),
	}
	if c.warnings != nil {
		r.Warnings = c.warnings.Warnings()
	}
	return r
}
