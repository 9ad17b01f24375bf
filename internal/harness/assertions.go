package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/megant/aktion/internal/dom"
)

// AssertionContext provides access to the final page for state assertions.
type AssertionContext struct {
	Doc *dom.Document
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Executed []string // Execution order for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Executed) > 0 {
		fmt.Fprintf(&buf, "\nExecuted:\n")
		for i, name := range e.Executed {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, name)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertAttribute:
		return assertAttribute(actx.Doc, a)
	case AssertProperty:
		return assertProperty(actx.Doc, a)
	case AssertOrder:
		return assertOrder(result, a)
	case AssertBatchCount:
		return assertBatchCount(result, a)
	case AssertEventCount:
		return assertEventCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func lookup(doc *dom.Document, selector string) (*dom.Element, error) {
	el := doc.First(selector)
	if el == nil {
		return nil, &AssertionError{
			Type:     "target",
			Expected: fmt.Sprintf("an element matching %q", selector),
			Actual:   "no match",
		}
	}
	return el, nil
}

// assertAttribute checks an attribute for an exact value, a whitespace
// separated token, or absence.
func assertAttribute(doc *dom.Document, a Assertion) error {
	el, err := lookup(doc, a.Target)
	if err != nil {
		return err
	}
	value, present := el.Attr(a.Name)

	switch {
	case a.Absent:
		if present {
			return &AssertionError{
				Type:     AssertAttribute,
				Expected: fmt.Sprintf("%s to have no %s attribute", a.Target, a.Name),
				Actual:   fmt.Sprintf("%s=%q", a.Name, value),
			}
		}
	case a.Equals != nil:
		if !present || value != *a.Equals {
			return &AssertionError{
				Type:     AssertAttribute,
				Expected: fmt.Sprintf("%s %s=%q", a.Target, a.Name, *a.Equals),
				Actual:   describeAttr(a.Name, value, present),
			}
		}
	default:
		if !slices.Contains(strings.Fields(value), a.Contains) {
			return &AssertionError{
				Type:     AssertAttribute,
				Expected: fmt.Sprintf("%s %s to contain %q", a.Target, a.Name, a.Contains),
				Actual:   describeAttr(a.Name, value, present),
			}
		}
	}
	return nil
}

func describeAttr(name, value string, present bool) string {
	if !present {
		return fmt.Sprintf("no %s attribute", name)
	}
	return fmt.Sprintf("%s=%q", name, value)
}

// assertProperty checks a boolean property such as checked.
func assertProperty(doc *dom.Document, a Assertion) error {
	el, err := lookup(doc, a.Target)
	if err != nil {
		return err
	}
	if got := el.Property(a.Name); got != *a.Value {
		return &AssertionError{
			Type:     AssertProperty,
			Expected: fmt.Sprintf("%s.%s = %t", a.Target, a.Name, *a.Value),
			Actual:   fmt.Sprintf("%t", got),
		}
	}
	return nil
}

// assertOrder checks the concatenated execution order of all batches.
// The match is exact: every executed action must be listed.
func assertOrder(result *Result, a Assertion) error {
	executed := result.Executed()
	if !slices.Equal(executed, a.Actions) {
		return &AssertionError{
			Type:     AssertOrder,
			Expected: fmt.Sprintf("%v", a.Actions),
			Actual:   fmt.Sprintf("%v", executed),
			Executed: executed,
		}
	}
	return nil
}

// assertBatchCount checks the number of flushes.
func assertBatchCount(result *Result, a Assertion) error {
	if len(result.Batches) != *a.Count {
		return &AssertionError{
			Type:     AssertBatchCount,
			Expected: fmt.Sprintf("%d batches", *a.Count),
			Actual:   fmt.Sprintf("%d batches", len(result.Batches)),
			Executed: result.Executed(),
		}
	}
	return nil
}

// assertEventCount checks how often an event type was dispatched. With a
// target, only events whose target label (e.g. "div#card.open") equals it
// count.
func assertEventCount(result *Result, a Assertion) error {
	count := 0
	if a.Target == "" {
		count = result.EventCount(a.Event)
	} else {
		for _, ev := range result.Events {
			if ev.Type == a.Event && ev.Target == a.Target {
				count++
			}
		}
	}
	if count != *a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d %s events", *a.Count, a.Event),
			Actual:   fmt.Sprintf("%d %s events", count, a.Event),
		}
	}
	return nil
}
