package bandit

import (
	"fmt"
	"maps"
	"math"
	"sort"
)

// Strategy names a selection policy.
type Strategy string

const (
	StrategyDUCB          Strategy = "ducb"
	StrategyUCB1          Strategy = "ucb1"
	StrategyEpsilonGreedy Strategy = "epsilon-greedy"
	StrategyThompson      Strategy = "thompson"
)

// ValidStrategies is the set of recognized strategy names.
// Shared by Validate() and NewSelectionPolicy() to avoid duplication.
var ValidStrategies = map[Strategy]bool{
	StrategyDUCB:          true,
	StrategyUCB1:          true,
	StrategyEpsilonGreedy: true,
	StrategyThompson:      true,
}

// IsValidStrategy returns true if name is a recognized strategy.
func IsValidStrategy(name string) bool {
	return ValidStrategies[Strategy(name)]
}

// Prior names the target that Thompson Sampling's decay pulls posteriors toward.
type Prior string

const (
	// PriorUniform decays every posterior toward Beta(1,1).
	PriorUniform Prior = "uniform"
	// PriorPooled decays toward a Beta with two pseudo-observations centred on
	// the pooled posterior mean of all arms.
	PriorPooled Prior = "pooled"
)

// ValidPriors is the set of recognized Thompson decay priors. Empty means uniform.
var ValidPriors = map[Prior]bool{"": true, PriorUniform: true, PriorPooled: true}

// EpochUnit names what the epoch window counts.
type EpochUnit string

const (
	UnitInstructions EpochUnit = "instructions"
	UnitCycles       EpochUnit = "cycles"
)

// ValidEpochUnits is the set of recognized epoch window units.
var ValidEpochUnits = map[EpochUnit]bool{UnitInstructions: true, UnitCycles: true}

// RewardConfig holds the reward shaping parameters used by the RewardEstimator.
type RewardConfig struct {
	Min     float64            `yaml:"min"`
	Max     float64            `yaml:"max"`
	Weights map[string]float64 `yaml:"weights"`
}

// Range returns the configured reward bounds.
func (c RewardConfig) Range() RewardRange {
	return RewardRange{Min: c.Min, Max: c.Max}
}

// BanditConfig is the per-run configuration of the decision engine.
// It is validated once and copied by every consumer, so later edits to the
// caller's value never reach a running engine.
type BanditConfig struct {
	Strategy      Strategy     `yaml:"strategy"`
	Gamma         float64      `yaml:"gamma"`       // discount factor, (0,1]; 1 disables decay
	Exploration   float64      `yaml:"exploration"` // UCB exploration constant c, > 0
	Epsilon       float64      `yaml:"epsilon"`     // epsilon-greedy exploration probability, [0,1]
	ThompsonGamma float64      `yaml:"thompson_gamma"` // Thompson posterior decay, (0,1]; 1 disables decay
	ThompsonPrior Prior        `yaml:"thompson_prior"`
	Reward        RewardConfig `yaml:"reward"`
	EpochWindow   uint64       `yaml:"epoch_window"` // instructions or cycles per decision epoch
	EpochUnit     EpochUnit    `yaml:"epoch_unit"`
}

// DefaultBanditConfig returns a discounted-UCB configuration suited to
// phase-changing prefetch workloads.
func DefaultBanditConfig() BanditConfig {
	return BanditConfig{
		Strategy:      StrategyDUCB,
		Gamma:         0.99,
		Exploration:   1.0,
		Epsilon:       0.05,
		ThompsonGamma: 1,
		ThompsonPrior: PriorUniform,
		Reward: RewardConfig{
			Min:     0,
			Max:     1,
			Weights: map[string]float64{"ipc_delta": 1},
		},
		EpochWindow: 1_000_000,
		EpochUnit:   UnitInstructions,
	}
}

// Clone returns a deep copy of the configuration.
func (c BanditConfig) Clone() BanditConfig {
	out := c
	out.Reward.Weights = maps.Clone(c.Reward.Weights)
	return out
}

// EffectiveGamma returns the decay factor the strategy actually applies.
// UCB1 and epsilon-greedy never decay; Thompson Sampling decays only when
// ThompsonGamma is set below 1.
func (c BanditConfig) EffectiveGamma() float64 {
	switch c.Strategy {
	case StrategyUCB1, StrategyEpsilonGreedy:
		return 1
	case StrategyThompson:
		return c.ThompsonGamma
	default:
		return c.Gamma
	}
}

// Validate checks every parameter and returns a *ConfigurationError naming
// the first invalid one.
func (c BanditConfig) Validate() error {
	if !ValidStrategies[c.Strategy] {
		return &ConfigurationError{Param: "strategy", Value: string(c.Strategy), Reason: "valid: ducb, ucb1, epsilon-greedy, thompson"}
	}
	if math.IsNaN(c.Gamma) || c.Gamma <= 0 || c.Gamma > 1 {
		return &ConfigurationError{Param: "gamma", Value: c.Gamma, Reason: "must be in (0, 1]"}
	}
	if math.IsNaN(c.Exploration) || math.IsInf(c.Exploration, 0) || c.Exploration <= 0 {
		return &ConfigurationError{Param: "exploration", Value: c.Exploration, Reason: "must be a finite number > 0"}
	}
	if math.IsNaN(c.Epsilon) || c.Epsilon < 0 || c.Epsilon > 1 {
		return &ConfigurationError{Param: "epsilon", Value: c.Epsilon, Reason: "must be in [0, 1]"}
	}
	if math.IsNaN(c.ThompsonGamma) || c.ThompsonGamma <= 0 || c.ThompsonGamma > 1 {
		return &ConfigurationError{Param: "thompson_gamma", Value: c.ThompsonGamma, Reason: "must be in (0, 1]"}
	}
	if !ValidPriors[c.ThompsonPrior] {
		return &ConfigurationError{Param: "thompson_prior", Value: string(c.ThompsonPrior), Reason: "valid: uniform, pooled"}
	}
	if err := c.Reward.validate(); err != nil {
		return err
	}
	if c.EpochWindow == 0 {
		return &ConfigurationError{Param: "epoch_window", Value: c.EpochWindow, Reason: "must be > 0"}
	}
	if !ValidEpochUnits[c.EpochUnit] {
		return &ConfigurationError{Param: "epoch_unit", Value: string(c.EpochUnit), Reason: "valid: instructions, cycles"}
	}
	return nil
}

func (c RewardConfig) validate() error {
	if !isFinite(c.Min) || !isFinite(c.Max) {
		return &ConfigurationError{Param: "reward.min/max", Value: fmt.Sprintf("[%v, %v]", c.Min, c.Max), Reason: "bounds must be finite"}
	}
	if c.Min >= c.Max {
		return &ConfigurationError{Param: "reward.min/max", Value: fmt.Sprintf("[%v, %v]", c.Min, c.Max), Reason: "min must be < max"}
	}
	if len(c.Weights) == 0 {
		return &ConfigurationError{Param: "reward.weights", Value: c.Weights, Reason: "at least one metric weight is required"}
	}
	allZero := true
	for _, name := range sortedKeys(c.Weights) {
		w := c.Weights[name]
		if name == "" {
			return &ConfigurationError{Param: "reward.weights", Value: w, Reason: "metric name must not be empty"}
		}
		if !isFinite(w) {
			return &ConfigurationError{Param: "reward.weights." + name, Value: w, Reason: "weight must be finite"}
		}
		if w != 0 {
			allZero = false
		}
	}
	if allZero {
		return &ConfigurationError{Param: "reward.weights", Value: c.Weights, Reason: "weights must not all be zero"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
