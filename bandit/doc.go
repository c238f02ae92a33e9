// Package bandit provides the multi-armed-bandit decision engine that picks,
// once per decision epoch, one of a small fixed set of microarchitectural
// policy configurations (prefetcher variants, SMT fetch-policy weightings).
//
// # Reading Guide
//
// Start with these files:
//   - arm.go: the Arm Registry, the fixed action space of a run
//   - reward.go: the Reward Estimator, raw metrics to a bounded scalar
//   - engine.go: cold start, the select/update protocol, reward sanitation
//
// # Strategies
//
// Strategies implement SelectionPolicy and share the Statistics storage:
//   - ducb, ucb1: policy_ucb.go (one scoring path, UCB1 is gamma = 1)
//   - epsilon-greedy: policy_egreedy.go
//   - thompson: policy_thompson.go (Beta posteriors, optional decay)
//
// Decay is an explicit per-epoch transform on Statistics (Discount,
// DecayPosterior) rather than a side effect of selection.
//
// # Sub-packages
//   - bandit/trace: DecisionEpoch records and the append-only decision log
//   - bandit/controller: the Epoch Controller and the simulator adapter contract
//   - bandit/record: CSV and SQLite persistence of the decision log
//   - bandit/adapter/...: stand-in, replay and ChampSim helpers for adapters
package bandit
