package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scenarioDir = "../harness/testdata/scenarios"
	goldenDir   = "../harness/testdata/golden"
)

func TestScenarioCommand_Pass(t *testing.T) {
	out, _, err := execute(t, "scenario", scenarioDir, "--golden-dir", goldenDir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ xyx\n")
	assert.Contains(t, out, "✓ abcd\n")
	assert.Contains(t, out, "Scenario Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestScenarioCommand_Filter(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "scenario", scenarioDir, "--golden-dir", goldenDir, "--filter", "xyx*")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   ScenarioSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
}

func TestScenarioCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pair.yaml")
	writeFile(t, file, `name: pair
sequence: [a, b]
expect:
  count: 1
  renders: ["(a b)"]
`)

	_, _, err := execute(t, "scenario", file, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "pair.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario": "pair"`)

	out, _, err := execute(t, "scenario", file)
	require.NoError(t, err, out)

	// A stale golden file fails the run.
	writeFile(t, filepath.Join(dir, "golden", "pair.golden"), "{}\n")
	out, _, err = execute(t, "scenario", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ pair")
	assert.Contains(t, out, "snapshot differs")
}

func TestScenarioCommand_ExpectationFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wrong.yaml")
	writeFile(t, file, `name: wrong
sequence: [a, b, c]
expect:
  count: 3
`)

	out, _, err := execute(t, "--format", "json", "scenario", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SCENARIO_FAILED", resp.Error.Code)
}

func TestScenarioCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "broken.yaml")
	writeFile(t, file, "name: broken\nsequence: [a\n")

	out, _, err := execute(t, "scenario", file)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}

func TestScenarioCommand_MissingPath(t *testing.T) {
	_, _, err := execute(t, "scenario", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "xyx.golden"), goldenFilePath(filepath.Join("s", "xyx.yaml"), ""))
	assert.Equal(t, filepath.Join("g", "abcd.golden"), goldenFilePath(filepath.Join("s", "abcd.cue"), "g"))
}
