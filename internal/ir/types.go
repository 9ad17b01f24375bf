package ir

import (
	"log/slog"
	"time"

	"github.com/megant/aktion/internal/dom"
)

// ActionType selects what an activation does to its destination.
type ActionType string

const (
	ActionSet          ActionType = "set"
	ActionToggle       ActionType = "toggle"
	ActionAdd          ActionType = "add"
	ActionRemove       ActionType = "remove"
	ActionTriggerEvent ActionType = "trigger-event"
)

// ActionTypes lists every valid ActionType.
var ActionTypes = []ActionType{ActionSet, ActionToggle, ActionAdd, ActionRemove, ActionTriggerEvent}

// ValueType selects how Descriptor.Value is interpreted.
type ValueType string

const (
	// ValueStatic uses the value literally.
	ValueStatic ValueType = "static"
	// ValueAttribute reads the named attribute off the triggering element.
	ValueAttribute ValueType = "attribute"
	// ValueEvent names an event to dispatch.
	ValueEvent ValueType = "event"
)

// Predicate gates an activation. It takes no arguments.
type Predicate func() bool

// Always is the default predicate.
func Always() bool { return true }

// Descriptor is the normalized configuration of one declared action.
type Descriptor struct {
	// Name is unique within an engine; author-supplied or "action<N>".
	Name string

	Type      ActionType
	Value     string
	ValueType ValueType

	// Event is a native event name or a synthetic scroll/swipe token.
	Event string
	// EventThreshold is the swipe distance in pixels.
	EventThreshold int

	// Attribute is the destination attribute mutated by set/toggle/add/remove.
	Attribute string

	// SourceSelector is empty when the declaring element is the source.
	SourceSelector      string
	DestinationSelector string

	// Source and Destination are resolved at compile time. Destination
	// defaults to Source.
	Source      []*dom.Element
	Destination []*dom.Element

	// TriggerBefore and TriggerAfter name another action of the same batch.
	TriggerBefore string
	TriggerAfter  string

	// IntervalTime is the scroll polling period.
	IntervalTime time.Duration

	// ExtraCondition gates activation; ConditionName is its registry key.
	ExtraCondition Predicate
	ConditionName  string

	// Element is the element that declared the action.
	Element *dom.Element
}

// Condition evaluates the extra condition. A nil predicate passes.
func (d *Descriptor) Condition() bool {
	if d == nil || d.ExtraCondition == nil {
		return true
	}
	return d.ExtraCondition()
}

// Family classifies the descriptor's event.
func (d *Descriptor) Family() EventFamily {
	return FamilyOf(d.Event)
}

// Delegated reports whether listeners for this descriptor should be
// delegated from <body> instead of bound on the resolved source elements.
func (d *Descriptor) Delegated() bool {
	return d.SourceSelector != "" &&
		d.SourceSelector != dom.SelectorWindow &&
		d.SourceSelector != dom.SelectorDocument
}

// LogValue implements slog.LogValuer.
func (d *Descriptor) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("<nil>")
	}
	attrs := []slog.Attr{
		slog.String("name", d.Name),
		slog.String("type", string(d.Type)),
		slog.String("value", d.Value),
		slog.String("event", d.Event),
	}
	if d.Type != ActionTriggerEvent {
		attrs = append(attrs, slog.String("attribute", d.Attribute))
	}
	if d.TriggerBefore != "" {
		attrs = append(attrs, slog.String("trigger_before", d.TriggerBefore))
	}
	if d.TriggerAfter != "" {
		attrs = append(attrs, slog.String("trigger_after", d.TriggerAfter))
	}
	return slog.GroupValue(attrs...)
}

// Summary returns a canonical-JSON-friendly view of the descriptor.
func (d *Descriptor) Summary() map[string]any {
	m := map[string]any{
		"name":        d.Name,
		"type":        string(d.Type),
		"value":       d.Value,
		"value_type":  string(d.ValueType),
		"event":       d.Event,
		"attribute":   d.Attribute,
		"sources":     len(d.Source),
		"destination": len(d.Destination),
	}
	if d.Family() == FamilySwipe {
		m["event_threshold"] = d.EventThreshold
	}
	if d.Family() == FamilyScroll {
		m["interval_ms"] = d.IntervalTime.Milliseconds()
	}
	if d.SourceSelector != "" {
		m["source_selector"] = d.SourceSelector
	}
	if d.DestinationSelector != "" {
		m["destination_selector"] = d.DestinationSelector
	}
	if d.TriggerBefore != "" {
		m["trigger_before"] = d.TriggerBefore
	}
	if d.TriggerAfter != "" {
		m["trigger_after"] = d.TriggerAfter
	}
	if d.ConditionName != "" {
		m["extra_condition"] = d.ConditionName
	}
	return m
}
