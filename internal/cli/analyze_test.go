package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given args, returning combined
// output and the command error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAnalyze_Theatre(t *testing.T) {
	path := writeModel(t, theatreYAML)

	out, err := execute(t, "analyze", path, "--importance")
	require.NoError(t, err)

	assert.Contains(t, out, "Model: theatre")
	assert.Contains(t, out, "Minimal cut sets (2):")
	assert.Contains(t, out, "{gen_fail, mains_fail}")
	assert.Contains(t, out, "Total probability (exact): 0.00207")
	assert.Contains(t, out, "Importance factors (bdd):")
	assert.Contains(t, out, "mains_fail")
}

func TestAnalyze_JSONOutput(t *testing.T) {
	path := writeModel(t, theatreYAML)

	out, err := execute(t, "--format", "json", "analyze", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "theatre", data["model"])
	assert.InDelta(t, 0.00207, data["p_total"].(float64), 1e-12)
	assert.NotEmpty(t, data["id"])
}

func TestAnalyze_Approximations(t *testing.T) {
	path := writeModel(t, theatreYAML)

	out, err := execute(t, "analyze", path, "--approximation", "mcub")
	require.NoError(t, err)
	assert.Contains(t, out, "Total probability (mcub): 0.0020991")

	out, err = execute(t, "analyze", path, "--approximation", "rare-event")
	require.NoError(t, err)
	assert.Contains(t, out, "Total probability (rare-event): 0.0021")
}

func TestAnalyze_SaveAndHistory(t *testing.T) {
	path := writeModel(t, theatreYAML)
	db := filepath.Join(t.TempDir(), "results.db")

	_, err := execute(t, "analyze", path, "--importance", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "theatre")
	assert.Contains(t, out, "0.00207")
}

func TestAnalyze_BadModelExitCode(t *testing.T) {
	path := writeModel(t, "name: broken\ntop-event: nowhere\n")

	_, err := execute(t, "analyze", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyze_BadApproximation(t *testing.T) {
	path := writeModel(t, theatreYAML)

	_, err := execute(t, "analyze", path, "--approximation", "montecarlo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_OK(t *testing.T) {
	path := writeModel(t, theatreYAML)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "3 basic events")
}

func TestValidate_Invalid(t *testing.T) {
	doc := `name: cyclic
basic-events:
  - id: a
    probability: 0.1
gates:
  - id: g1
    type: or
    inputs: [g2, a]
  - id: g2
    type: or
    inputs: [g1, a]
top-event: g1
`
	path := writeModel(t, doc)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error")
}

func TestHistory_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no archived runs")
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "history")
	require.Error(t, err)
}
