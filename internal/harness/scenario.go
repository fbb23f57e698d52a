package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an ActDB test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Verify runs the DB with re-evaluation on cache hits; any
	// nondeterminism fault fails the scenario.
	Verify bool `yaml:"verify,omitempty"`

	// Replay saves the final log to a store, replays it and compares
	// every action value with the original.
	Replay bool `yaml:"replay,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Exactly one of Store, Act or Query is set.
type Step struct {
	// Store appends a value entry. Any YAML value (null included) is allowed,
	// so presence is tracked through the node.
	Store yaml.Node `yaml:"store,omitempty"`

	// Act appends an action by registry name, with Args.
	Act  string `yaml:"act,omitempty"`
	Args any    `yaml:"args,omitempty"`

	// Query runs a query; Expect (optional) checks its rows.
	Query  *Query  `yaml:"query,omitempty"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// HasStore reports whether the step is a store step.
func (s *Step) HasStore() bool {
	return s.Store.Kind != 0
}

// Query selects entries. With no selector it requests the latest action.
type Query struct {
	ID     string `yaml:"id,omitempty"`
	Seq    *int   `yaml:"seq,omitempty"`
	Latest bool   `yaml:"latest,omitempty"`
	All    bool   `yaml:"all,omitempty"`

	// Where matches action entries whose args object contains these fields.
	// Alone it selects the first match; with All, every match.
	Where map[string]any `yaml:"where,omitempty"`

	// Version bounds the query (inclusive).
	Version *int `yaml:"version,omitempty"`

	// NoValues returns rows without resolving them.
	NoValues bool `yaml:"no_values,omitempty"`
}

// Expect checks a query result. Unset fields are not checked.
type Expect struct {
	// Found checks whether any row came back.
	Found *bool `yaml:"found,omitempty"`

	// ID checks the first row's id.
	ID string `yaml:"id,omitempty"`

	// Value checks the first row's value for equality.
	Value yaml.Node `yaml:"value,omitempty"`

	// IDs checks the ids of all rows, in order.
	IDs []string `yaml:"ids,omitempty"`

	// Count checks the number of rows.
	Count *int `yaml:"count,omitempty"`
}

// HasValue reports whether a value expectation was given.
func (e *Expect) HasValue() bool {
	return e.Value.Kind != 0
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(&s.Steps[i]); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step *Step) error {
	kinds := 0
	if step.HasStore() {
		kinds++
	}
	if step.Act != "" {
		kinds++
	}
	if step.Query != nil {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("exactly one of store, act, query is required")
	}

	if step.Args != nil && step.Act == "" {
		return fmt.Errorf("args is only valid with act")
	}
	if step.Expect != nil && step.Query == nil {
		return fmt.Errorf("expect is only valid with query")
	}

	if q := step.Query; q != nil {
		selectors := 0
		for _, set := range []bool{q.ID != "", q.Seq != nil, q.Latest, q.All} {
			if set {
				selectors++
			}
		}
		if q.Where != nil && !q.All {
			selectors++
		}
		if selectors > 1 {
			return fmt.Errorf("query: id, seq, latest, all and where are mutually exclusive (where may combine with all)")
		}
	}

	return nil
}
