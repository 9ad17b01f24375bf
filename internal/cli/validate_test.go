package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Clean(t *testing.T) {
	page := writePage(t, menuPage)

	out, err := execute(t, "validate", page)
	require.NoError(t, err)
	assert.Equal(t, "✓ 2 action(s) from 2 declaring element(s)\n", out)
}

func TestValidate_Diagnostics(t *testing.T) {
	page := writePage(t, `
<button id="a" data-aktion-name="a" data-aktion-value="x" data-aktion-trigger-after="zzz"></button>
<button id="b" data-aktion-name="b" data-aktion-value="x" data-aktion-trigger-before="b"></button>`)

	out, err := execute(t, "validate", page)
	require.NoError(t, err, "warnings do not fail without --strict")
	assert.Contains(t, out, "✓ 2 action(s) from 2 declaring element(s)")
	assert.Contains(t, out, `warning: a: trigger-after references unknown action "zzz"`)
	assert.Contains(t, out, "info: b: trigger-before references the action itself")

	_, err = execute(t, "validate", "--strict", page)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 warning(s)")
}

func TestValidate_CompileErrors(t *testing.T) {
	page := writePage(t, `
<button id="ok" data-aktion-value="x"></button>
<button id="bad" data-aktion-value="x" data-aktion-value-type="guess"></button>`)

	out, err := execute(t, "validate", page)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ 1 of 2 declaring element(s) failed to compile")
	assert.Contains(t, out, "[E103] button#bad: value_type:")
}

func TestValidate_JSON(t *testing.T) {
	page := writePage(t, `
<button id="a" data-aktion-name="a" data-aktion-value="x" data-aktion-trigger-before="b"></button>
<button id="b" data-aktion-name="b" data-aktion-value="x" data-aktion-trigger-before="a"></button>
<button id="c" data-aktion-value="x" data-aktion-interval-time="0"></button>`)

	out, err := execute(t, "validate", "--format", "json", page)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Elements)
	assert.Equal(t, 2, resp.Data.Actions)

	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "interval_time", resp.Data.Errors[0].Field)
	assert.Equal(t, ErrCodeInvalidInteger, resp.Data.Errors[0].Code)
	assert.Equal(t, "button#c", resp.Data.Errors[0].Element)

	require.NotEmpty(t, resp.Data.Diagnostics)
	var cycle bool
	for _, d := range resp.Data.Diagnostics {
		if len(d.Path) > 0 {
			cycle = true
		}
	}
	assert.True(t, cycle, "the a/b cycle is reported")
}

func TestValidate_MissingPage(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", "/nonexistent/page.html")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}
