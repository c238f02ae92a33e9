package bandit

import (
	"fmt"
	"maps"
)

// ArmSpec describes one arm as written in a run file.
// ID is optional; when omitted the arm takes its position in the list.
type ArmSpec struct {
	ID     *int               `yaml:"id,omitempty"`
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

// Arm is an immutable action descriptor. Params is the opaque configuration
// payload the simulator adapter applies when the arm is chosen (prefetch
// degree, table size, fetch-policy weights, ...). The engine never reads it.
type Arm struct {
	ID     int
	Name   string
	params map[string]float64
}

// Params returns a copy of the arm's configuration payload.
func (a Arm) Params() map[string]float64 {
	return maps.Clone(a.params)
}

// Param returns a single payload value and whether it is present.
func (a Arm) Param(name string) (float64, bool) {
	v, ok := a.params[name]
	return v, ok
}

func (a Arm) String() string {
	return fmt.Sprintf("arm[%d:%s]", a.ID, a.Name)
}

// ArmRegistry owns the fixed action space of a run. It is read-only after
// NewArmRegistry returns.
type ArmRegistry struct {
	arms []Arm
}

// NewArmRegistry validates specs and builds the registry.
// Returns a *ConfigurationError if there are fewer than two arms, if explicit
// IDs repeat or do not cover 0..K-1, if names are empty or repeat, or if two
// arms carry identical payloads.
func NewArmRegistry(specs []ArmSpec) (*ArmRegistry, error) {
	k := len(specs)
	if k < 2 {
		return nil, &ConfigurationError{Param: "arms", Value: k, Reason: "at least 2 arms are required"}
	}

	arms := make([]Arm, k)
	placed := make([]bool, k)
	names := make(map[string]int, k)
	for pos, spec := range specs {
		id := pos
		if spec.ID != nil {
			id = *spec.ID
		}
		if id < 0 || id >= k {
			return nil, &ConfigurationError{
				Param:  fmt.Sprintf("arms[%d].id", pos),
				Value:  id,
				Reason: fmt.Sprintf("arm IDs must cover 0..%d", k-1),
			}
		}
		if placed[id] {
			return nil, &ConfigurationError{Param: fmt.Sprintf("arms[%d].id", pos), Value: id, Reason: "duplicate arm ID"}
		}
		if spec.Name == "" {
			return nil, &ConfigurationError{Param: fmt.Sprintf("arms[%d].name", pos), Value: "", Reason: "arm name must not be empty"}
		}
		if prev, dup := names[spec.Name]; dup {
			return nil, &ConfigurationError{
				Param:  fmt.Sprintf("arms[%d].name", pos),
				Value:  spec.Name,
				Reason: fmt.Sprintf("name already used by arms[%d]", prev),
			}
		}
		names[spec.Name] = pos
		placed[id] = true
		arms[id] = Arm{ID: id, Name: spec.Name, params: maps.Clone(spec.Params)}
	}

	// A no-op duplicate arm splits the evidence for one configuration across
	// two IDs; reject it before it can skew exploration.
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if maps.Equal(arms[i].params, arms[j].params) {
				return nil, &ConfigurationError{
					Param:  fmt.Sprintf("arms[%d].params", j),
					Value:  arms[j].params,
					Reason: fmt.Sprintf("payload identical to arm %d (%s)", i, arms[i].Name),
				}
			}
		}
	}

	return &ArmRegistry{arms: arms}, nil
}

// Arms returns the arms ordered by ID.
func (r *ArmRegistry) Arms() []Arm {
	out := make([]Arm, len(r.arms))
	copy(out, r.arms)
	return out
}

// Len returns K.
func (r *ArmRegistry) Len() int {
	return len(r.arms)
}

// ConfigOf returns the arm with the given ID.
func (r *ArmRegistry) ConfigOf(id int) (Arm, error) {
	if id < 0 || id >= len(r.arms) {
		return Arm{}, &ConfigurationError{Param: "armId", Value: id, Reason: fmt.Sprintf("unknown arm, registry has %d arms", len(r.arms))}
	}
	return r.arms[id], nil
}
