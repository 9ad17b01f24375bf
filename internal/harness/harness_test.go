package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megant/aktion/internal/testutil"
)

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func trigger(target, event string) Step {
	return Step{Trigger: &TriggerStep{Target: target, Event: event}}
}

func TestRun_InlineToggle(t *testing.T) {
	scenario := &Scenario{
		Name:        "inline_toggle",
		Description: "Toggle a class twice",
		HTML:        `<button id="b" data-aktion-name="t" data-aktion-value="on"></button>`,
		Steps: []Step{
			trigger("#b", "click"),
			{Advance: "10ms"},
			trigger("#b", "click"),
			{Advance: "10ms"},
			trigger("#b", "click"),
		},
		Assertions: []Assertion{
			{Type: AssertAttribute, Target: "#b", Name: "class", Equals: strp("on")},
			{Type: AssertOrder, Actions: []string{"t", "t", "t"}},
			{Type: AssertBatchCount, Count: intp(3)},
			{Type: AssertEventCount, Event: "click", Count: intp(3)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Wired)
	assert.Empty(t, result.Skipped)

	require.Len(t, result.Batches, 3)
	assert.Equal(t, "batch-1", result.Batches[0].ID)
	assert.Equal(t, int64(20), result.Batches[2].At.Milliseconds())
}

func TestRun_FailingAssertionsDoNotError(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Assertions that do not hold",
		HTML:        `<button id="b" data-aktion-name="t" data-aktion-value="on"></button>`,
		Steps:       []Step{trigger("#b", "click")},
		Assertions: []Assertion{
			{Type: AssertAttribute, Target: "#b", Name: "class", Absent: true},
			{Type: AssertBatchCount, Count: intp(1)},
			{Type: AssertOrder, Actions: []string{"other"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "assertions[0]:")
	assert.Contains(t, result.Errors[1], "assertions[2]:")
}

func TestRun_MissingStepTarget(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_target",
		Description: "Step target does not exist",
		HTML:        `<p></p>`,
		Steps:       []Step{trigger("#nope", "click")},
		Assertions:  []Assertion{{Type: AssertBatchCount, Count: intp(0)}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `steps[0]: no element matches "#nope"`)
}

func TestRun_CompileErrorsAreSkipped(t *testing.T) {
	scenario := &Scenario{
		Name:        "skipped",
		Description: "One valid and one invalid declaration",
		HTML: `<button id="ok" data-aktion-name="ok" data-aktion-value="on"></button>
<button id="bad" data-aktion-name="bad" data-aktion-type="explode" data-aktion-value="on"></button>`,
		Steps: []Step{trigger("#ok", "click"), trigger("#bad", "click")},
		Assertions: []Assertion{
			{Type: AssertOrder, Actions: []string{"ok"}},
			{Type: AssertAttribute, Target: "#bad", Name: "class", Absent: true},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Wired)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0], "button#bad")
}

func TestRun_PredicatesAndPrefix(t *testing.T) {
	scenario := &Scenario{
		Name:        "predicates",
		Description: "Extra conditions come from the scenario",
		Config:      &ScenarioConfig{Prefix: strp("x")},
		Predicates:  map[string]bool{"yes": true, "no": false},
		HTML: `<button id="a" data-x-name="a" data-x-value="a" data-x-extra-condition="yes"></button>
<button id="b" data-x-name="b" data-x-value="b" data-x-extra-condition="no"></button>`,
		Steps: []Step{trigger("#a", "click"), trigger("#b", "click")},
		Assertions: []Assertion{
			{Type: AssertAttribute, Target: "#a", Name: "class", Equals: strp("a")},
			{Type: AssertAttribute, Target: "#b", Name: "class", Absent: true},
			{Type: AssertOrder, Actions: []string{"a"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Wired)
}

func TestRun_TouchHeldStillIsNotASwipe(t *testing.T) {
	scenario := &Scenario{
		Name:        "held",
		Description: "A touch resting past the stillness timeout",
		HTML:        `<div id="card" data-aktion-name="s" data-aktion-event="swipeleft" data-aktion-value="gone"></div>`,
		Steps: []Step{{Touch: &TouchStep{
			Target: "#card",
			From:   [2]int{100, 100},
			Moves:  [][2]int{{50, 100}},
			Hold:   "250ms",
		}}},
		Assertions: []Assertion{
			{Type: AssertEventCount, Event: "swipeleft", Count: intp(0)},
			{Type: AssertBatchCount, Count: intp(0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_TouchCancelStillSwipes(t *testing.T) {
	scenario := &Scenario{
		Name:        "cancel",
		Description: "touchcancel ends a touch like touchend",
		HTML:        `<div id="card" data-aktion-name="s" data-aktion-event="swipeup" data-aktion-value="up"></div>`,
		Steps: []Step{{Touch: &TouchStep{
			Target: "#card",
			From:   [2]int{0, 100},
			Moves:  [][2]int{{0, 40}},
			Cancel: true,
		}}},
		Assertions: []Assertion{
			{Type: AssertEventCount, Event: "touchcancel", Count: intp(1)},
			{Type: AssertEventCount, Event: "swipeup", Target: "div#card", Count: intp(1)},
			{Type: AssertAttribute, Target: "#card", Name: "class", Contains: "up"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ScrollKeepRunning(t *testing.T) {
	scenario := &Scenario{
		Name:        "scroll_down",
		Description: "scrolldown fires on every downward sample",
		HTML: `<div id="feed">
  <div id="content" data-aktion-name="down" data-aktion-event="scrolldown" data-aktion-type="trigger-event" data-aktion-value="moved"
       data-aktion-interval-time="50"></div>
</div>`,
		Steps: []Step{{Scroll: &ScrollStep{
			Target:      "#feed",
			Viewport:    100,
			Content:     1000,
			Offsets:     []int{0, 10, 20, 30},
			Interval:    "50ms",
			KeepRunning: true,
		}}},
		Assertions: []Assertion{
			{Type: AssertBatchCount, Count: intp(2)},
			{Type: AssertEventCount, Event: "moved", Count: intp(2)},
			{Type: AssertEventCount, Event: "touchend", Count: intp(0)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Batches, 2)
	assert.Equal(t, int64(150), result.Batches[0].At.Milliseconds())
	assert.Equal(t, int64(200), result.Batches[1].At.Milliseconds())
}

func TestRun_WithTracerAndLogger(t *testing.T) {
	spans := testutil.NewSpanRecorder()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	scenario := &Scenario{
		Name:        "traced",
		Description: "Flush spans reach the tracer",
		Config:      &ScenarioConfig{Debug: boolp(true)},
		BatchIDs:    []string{"fixed"},
		HTML:        `<button id="b" data-aktion-name="t" data-aktion-value="on"></button>`,
		Steps:       []Step{trigger("#b", "click")},
		Assertions:  []Assertion{{Type: AssertBatchCount, Count: intp(1)}},
	}

	result, err := Run(scenario, WithTracer(spans), WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, result.Pass)

	flushes := spans.Named("aktion.flush")
	require.Len(t, flushes, 1)
	assert.Equal(t, "fixed", flushes[0].Attributes["aktion.batch.id"])
	assert.Len(t, spans.Named("aktion.execute"), 1)

	assert.Contains(t, buf.String(), "scenario completed")
	assert.Contains(t, buf.String(), "actions activated")
}
