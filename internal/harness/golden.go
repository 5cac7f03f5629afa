package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file form of a Result.
type Snapshot struct {
	Scenario string   `json:"scenario"`
	Backend  string   `json:"backend"`
	Count    int      `json:"count"`
	Renders  []string `json:"renders"`
	Links    int64    `json:"links"`
	Error    string   `json:"error,omitempty"`
}

// MarshalSnapshot renders the golden form of r: indented JSON with a
// trailing newline.
func MarshalSnapshot(r *Result) ([]byte, error) {
	renders := r.Renders
	if renders == nil {
		renders = []string{}
	}
	data, err := json.MarshalIndent(Snapshot{
		Scenario: r.Scenario,
		Backend:  r.Backend,
		Count:    r.Count,
		Renders:  renders,
		Links:    r.Links,
		Error:    r.ErrorCode,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
