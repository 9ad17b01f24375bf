package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/megant/aktion/internal/engine"
)

// Scenario defines an interaction test over one page.
// Steps drive the page through the virtual loop; assertions check the final
// DOM state, the flush trace and the dispatched events.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Page is an HTML file, relative to the scenario file.
	// Exactly one of Page and HTML must be set.
	Page string `yaml:"page,omitempty"`

	// HTML is inline page markup.
	HTML string `yaml:"html,omitempty"`

	// Config overrides engine defaults. Absent fields keep their defaults.
	Config *ScenarioConfig `yaml:"config,omitempty"`

	// Predicates registers constant extra conditions by name.
	Predicates map[string]bool `yaml:"predicates,omitempty"`

	// BatchIDs are the fixed batch IDs handed out in flush order. Once used
	// up, IDs continue as "batch-<n>".
	BatchIDs []string `yaml:"batch_ids,omitempty"`

	// Steps drive the page.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory of the scenario file; empty for inline scenarios.
	dir string
}

// ScenarioConfig mirrors engine.Config with optional fields.
type ScenarioConfig struct {
	Prefix *string `yaml:"prefix,omitempty"`
	IOS    *bool   `yaml:"ios,omitempty"`
	Debug  *bool   `yaml:"debug,omitempty"`
}

// Apply overlays c on cfg.
func (c *ScenarioConfig) Apply(cfg engine.Config) engine.Config {
	if c == nil {
		return cfg
	}
	if c.Prefix != nil {
		cfg.DataAttributePrefix = *c.Prefix
	}
	if c.IOS != nil {
		cfg.IOS = *c.IOS
	}
	if c.Debug != nil {
		cfg.DebugMode = *c.Debug
	}
	return cfg
}

// Step is one interaction. Exactly one field is set.
type Step struct {
	// Trigger dispatches a DOM event and runs the tasks it posted.
	Trigger *TriggerStep `yaml:"trigger,omitempty"`

	// Touch performs a touch sequence.
	Touch *TouchStep `yaml:"touch,omitempty"`

	// Scroll drives a scroll container through a list of offsets.
	Scroll *ScrollStep `yaml:"scroll,omitempty"`

	// Advance moves the virtual clock forward, e.g. "250ms".
	Advance string `yaml:"advance,omitempty"`
}

// TriggerStep dispatches Event on the first element matching Target.
type TriggerStep struct {
	Target string `yaml:"target"`
	Event  string `yaml:"event"`
}

// TouchStep dispatches touchstart at From, waits Hold, dispatches a touchmove
// for every point of Moves and ends with touchend, or touchcancel when
// Cancel is set. The end event uses the last point.
type TouchStep struct {
	Target string   `yaml:"target"`
	From   [2]int   `yaml:"from"`
	Moves  [][2]int `yaml:"moves"`
	Hold   string   `yaml:"hold,omitempty"`
	Cancel bool     `yaml:"cancel,omitempty"`
}

// ScrollStep starts polling with Start on Target, scrolls to each offset and
// waits one Interval after each, then dispatches Stop unless KeepRunning.
type ScrollStep struct {
	Target string `yaml:"target"`
	// Viewport and Content set the container metrics when non-zero.
	Viewport int    `yaml:"viewport,omitempty"`
	Content  int    `yaml:"content,omitempty"`
	Offsets  []int  `yaml:"offsets"`
	Interval string `yaml:"interval,omitempty"`
	// Start defaults to touchstart, Stop to touchend.
	Start       string `yaml:"start,omitempty"`
	Stop        string `yaml:"stop,omitempty"`
	KeepRunning bool   `yaml:"keep_running,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "attribute": Check an attribute of Target (Equals, Contains or Absent)
	// - "property": Check a boolean property of Target
	// - "order": Check the concatenated execution order of all batches
	// - "batch_count": Check the number of flushes
	// - "event_count": Check how often Event was dispatched
	Type string `yaml:"type"`

	Target string `yaml:"target,omitempty"`
	Name   string `yaml:"name,omitempty"`

	Equals   *string `yaml:"equals,omitempty"`
	Contains string  `yaml:"contains,omitempty"`
	Absent   bool    `yaml:"absent,omitempty"`

	Value *bool `yaml:"value,omitempty"`

	Actions []string `yaml:"actions,omitempty"`

	Event string `yaml:"event,omitempty"`
	Count *int   `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertAttribute  = "attribute"
	AssertProperty   = "property"
	AssertOrder      = "order"
	AssertBatchCount = "batch_count"
	AssertEventCount = "event_count"
)

// DefaultScrollInterval is the polling interval assumed by scroll steps that
// do not name one. It matches the descriptor default.
const DefaultScrollInterval = 100 * time.Millisecond

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)

	if scenario.Page != "" {
		if _, err := os.Stat(scenario.PagePath()); os.IsNotExist(err) {
			return nil, &PageNotFoundError{
				Scenario:     scenario.Name,
				Page:         scenario.Page,
				ResolvedPath: scenario.PagePath(),
			}
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Page paths are resolved against the
// working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// PagePath returns the page file path resolved against the scenario file.
func (s *Scenario) PagePath() string {
	if s.Page == "" || filepath.IsAbs(s.Page) {
		return s.Page
	}
	return filepath.Join(s.dir, s.Page)
}

// PageNotFoundError is returned when a scenario references a missing page.
type PageNotFoundError struct {
	Scenario     string
	Page         string
	ResolvedPath string
}

// Error implements the error interface.
func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q references page %q which does not exist (resolved to: %s)",
		e.Scenario, e.Page, e.ResolvedPath)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Page == "") == (s.HTML == "") {
		return fmt.Errorf("exactly one of page and html is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	set := 0
	if s.Trigger != nil {
		set++
		if s.Trigger.Target == "" || s.Trigger.Event == "" {
			return fmt.Errorf("steps[%d]: trigger needs target and event", index)
		}
	}
	if s.Touch != nil {
		set++
		if s.Touch.Target == "" {
			return fmt.Errorf("steps[%d]: touch needs a target", index)
		}
		if err := validateDuration(index, "hold", s.Touch.Hold); err != nil {
			return err
		}
	}
	if s.Scroll != nil {
		set++
		if s.Scroll.Target == "" {
			return fmt.Errorf("steps[%d]: scroll needs a target", index)
		}
		if len(s.Scroll.Offsets) == 0 {
			return fmt.Errorf("steps[%d]: scroll needs offsets", index)
		}
		if err := validateDuration(index, "interval", s.Scroll.Interval); err != nil {
			return err
		}
	}
	if s.Advance != "" {
		set++
		if err := validateDuration(index, "advance", s.Advance); err != nil {
			return err
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of trigger, touch, scroll and advance is required", index)
	}
	return nil
}

func validateDuration(index int, field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("steps[%d]: invalid %s %q: %w", index, field, value, err)
	}
	if d < 0 {
		return fmt.Errorf("steps[%d]: %s must not be negative", index, field)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertAttribute:
		if a.Target == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: target and name are required for attribute", index)
		}
		checks := 0
		if a.Equals != nil {
			checks++
		}
		if a.Contains != "" {
			checks++
		}
		if a.Absent {
			checks++
		}
		if checks != 1 {
			return fmt.Errorf("assertions[%d]: exactly one of equals, contains and absent is required for attribute", index)
		}
	case AssertProperty:
		if a.Target == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: target and name are required for property", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for property", index)
		}
	case AssertOrder:
		if a.Actions == nil {
			return fmt.Errorf("assertions[%d]: actions list is required for order", index)
		}
	case AssertBatchCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for batch_count", index)
		}
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for event_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
