package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tessera-db/tessera/internal/dataset"
)

// Scenario defines a conformance test scenario: a schema, an initial
// dataset, a sequence of mutations, and assertions over the resulting
// store.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are stored
	// under testdata/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Schema selects the schema: the builtin "city" schema, or a path to
	// a CUE schema file relative to the scenario file.
	Schema string `yaml:"schema"`

	// Setup lists the parts to create before the ops run, in order.
	Setup []dataset.Part `yaml:"setup,omitempty"`

	// Ops lists the mutations to apply, in order.
	Ops []Op `yaml:"ops,omitempty"`

	// Assertions validate the final store state.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// dir is the scenario file's directory, for resolving schema paths.
	dir string
}

// Op is one mutation step. Fields are interpreted per Op value:
//
//	add:            Kind, Refs, Attrs
//	set_ref:        ID, Field, Target
//	clear_ref:      ID, Field
//	set_attr:       ID, Field, Value
//	delete:         Kind, ID (non-cascading; must have no dependents)
//	cascade_delete: Kind, ID
type Op struct {
	Op     string         `yaml:"op"`
	Kind   string         `yaml:"kind,omitempty"`
	ID     int            `yaml:"id,omitempty"`
	Field  string         `yaml:"field,omitempty"`
	Target int            `yaml:"target,omitempty"`
	Value  any            `yaml:"value,omitempty"`
	Refs   map[string]int `yaml:"refs,omitempty"`
	Attrs  map[string]any `yaml:"attrs,omitempty"`

	// Error, when non-empty, asserts that the op fails with the given
	// store error code instead of succeeding.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates one aspect of the final store.
//
//	count:    Kind, Want (single int)
//	incident: Field, Target, WantIDs
//	up:       ID, Chain, Want (single int)
//	down:     ID, Chain, WantIDs
type Assertion struct {
	Type    string   `yaml:"type"`
	Kind    string   `yaml:"kind,omitempty"`
	Field   string   `yaml:"field,omitempty"`
	ID      int      `yaml:"id,omitempty"`
	Target  int      `yaml:"target,omitempty"`
	Chain   []string `yaml:"chain,omitempty"`
	Want    int      `yaml:"want,omitempty"`
	WantIDs []int    `yaml:"want_ids,omitempty"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	sc.dir = filepath.Dir(path)
	return &sc, nil
}
