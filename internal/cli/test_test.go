package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failingScenario = `
name: failing
description: "wrong class expected"
html: '<button id="b" data-aktion-name="t" data-aktion-value="on"></button>'
steps:
  - trigger: { target: "#b", event: click }
assertions:
  - type: attribute
    target: "#b"
    name: class
    equals: "off"
`

func TestTest_AllScenariosPass(t *testing.T) {
	out, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ menu_toggle\n")
	assert.Contains(t, out, "✓ terms_chain\n")
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	out, err := execute(t, "test", "--filter", "s*", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ scroll_stop")
	assert.Contains(t, out, "✓ swipe_card")
	assert.NotContains(t, out, "menu_toggle")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
}

func TestTest_UpdateWritesGoldenFiles(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	out, err := execute(t, "test", "--update", "--golden", golden, "--filter", "menu_toggle", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ menu_toggle (golden updated)")

	got, err := os.ReadFile(filepath.Join(golden, "menu_toggle.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "menu_toggle.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestTest_FailuresExitOne(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "failing.yaml"), []byte(failingScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "broken.yaml"), []byte("name: [unclosed"), 0644))

	out, err := execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml\n  failed to load scenario")
	assert.Contains(t, out, "✗ failing\n  assertions[0]:")
	assert.Contains(t, out, "0 passed, 2 failed, 2 total")
}

func TestTest_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))

	src, err := os.ReadFile(filepath.Join(scenariosDir, "ordered_batch.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "ordered_batch.yaml"), src, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "ordered_batch.golden"), []byte("{}"), 0644))

	out, err := execute(t, "test", "--format", "json", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.Equal(t, 1, resp.Data.Scenarios[0].Batches)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "trace does not match golden file")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_NoScenarios(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}
