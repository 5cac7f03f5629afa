package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/doublets/internal/config"
	"github.com/roach88/doublets/internal/render"
)

// Scenario defines one enumeration and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Backend selects the store: sqlite (default) or badger.
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty"`

	// Leaves are created as named points, in order, before enumerating.
	Leaves []string `yaml:"leaves,omitempty" json:"leaves,omitempty"`

	// Sequence is the token sequence to enumerate. Every token must be a
	// leaf.
	Sequence []string `yaml:"sequence" json:"sequence"`

	// Render controls how variants are formatted.
	Render RenderOptions `yaml:"render,omitempty" json:"render,omitempty"`

	// Expect holds the assertions. Unset fields are not checked.
	Expect Expect `yaml:"expect" json:"expect"`
}

// RenderOptions mirrors the [render] config section.
type RenderOptions struct {
	Element string `yaml:"element,omitempty" json:"element,omitempty"`
	Index   bool   `yaml:"index,omitempty" json:"index,omitempty"`
	Visited bool   `yaml:"visited,omitempty" json:"visited,omitempty"`
	Debug   bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// Expect lists the expected results.
type Expect struct {
	// Count is the expected number of variants.
	Count *int `yaml:"count,omitempty" json:"count,omitempty"`

	// Renders are the expected variant renderings, in result order.
	Renders []string `yaml:"renders,omitempty" json:"renders,omitempty"`

	// Links is the expected number of stored links after the run.
	Links *int64 `yaml:"links,omitempty" json:"links,omitempty"`

	// Error is the expected enumeration error code.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Load reads a scenario file. Files ending in .cue are evaluated with CUE;
// anything else is parsed as YAML. Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s *Scenario
	if filepath.Ext(path) == ".cue" {
		s, err = parseCUE(path, data)
	} else {
		s, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "expects:"
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &s, nil
}

// scenarioSchema closes the scenario struct so CUE reports unknown fields.
const scenarioSchema = `
#Scenario: {
	name:         string
	description?: string
	backend?:     "sqlite" | "badger"
	leaves?: [...string]
	sequence: [...string]
	render?: {
		element?: "point" | "partial" | "none"
		index?:   bool
		visited?: bool
		debug?:   bool
	}
	expect: {
		count?: int & >=0
		renders?: [...string]
		links?: int & >=0
		error?: string
	}
}
`

func parseCUE(path string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema).LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile scenario schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to validate CUE: %w", err)
	}

	var s Scenario
	if err := v.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Sequence) == 0 && s.Expect.Error == "" {
		return fmt.Errorf("sequence is required and must be non-empty")
	}

	switch s.Backend {
	case "", config.BackendSQLite, config.BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if s.Render.Element != "" {
		if _, err := render.ElementPredicate(s.Render.Element); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	for i, leaf := range s.Leaves {
		if slices.Index(s.Leaves, leaf) != i {
			return fmt.Errorf("leaves[%d]: duplicate leaf %q", i, leaf)
		}
	}
	if len(s.Leaves) > 0 {
		for i, tok := range s.Sequence {
			if !slices.Contains(s.Leaves, tok) {
				return fmt.Errorf("sequence[%d]: %q is not a leaf", i, tok)
			}
		}
	}

	if s.Expect.Count != nil && *s.Expect.Count < 0 {
		return fmt.Errorf("expect.count must be non-negative")
	}

	return nil
}

// leaves returns the leaf names in creation order.
func (s *Scenario) leaves() []string {
	if len(s.Leaves) > 0 {
		return s.Leaves
	}
	var out []string
	for _, tok := range s.Sequence {
		if !slices.Contains(out, tok) {
			out = append(out, tok)
		}
	}
	return out
}
