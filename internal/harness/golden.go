package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/megant/aktion/internal/ir"
)

// TraceSnapshot captures the flush trace of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Result       *Result
}

// Canonical implements ir.Canonical.
func (s TraceSnapshot) Canonical() any {
	batches := make([]any, len(s.Result.Batches))
	for i, b := range s.Result.Batches {
		batches[i] = b.Summary()
	}

	events := make([]any, len(s.Result.Events))
	for i, ev := range s.Result.Events {
		events[i] = ev
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"wired":         s.Result.Wired,
		"batches":       batches,
		"events":        events,
	}
}

// MarshalTrace renders the canonical trace of a result.
func MarshalTrace(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(TraceSnapshot{ScenarioName: name, Result: result})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
