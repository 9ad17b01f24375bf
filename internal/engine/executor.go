package engine

import (
	"io"
	"log/slog"
	"strings"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
)

// Executor applies one activation.
//
// Mutations (set, toggle, add, remove) are applied immediately. A
// trigger-event activation mutates nothing and returns a callback that
// dispatches the event later.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an Executor. A nil logger discards output.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{logger: logger}
}

// Execute runs d with trigger as the triggering element. It returns a
// deferred callback for trigger-event actions and nil otherwise.
func (x *Executor) Execute(d *ir.Descriptor, trigger *dom.Element) func() {
	x.logger.Debug(d.Name+" action is running.", "action", d)

	value := resolveValue(d, trigger)
	if value == "" {
		x.logger.Debug("action has no value", "action", d.Name, "value_type", d.ValueType)
		return nil
	}

	if d.Type == ir.ActionTriggerEvent {
		return x.eventCallback(d, value)
	}

	targets := affectedElements(d, trigger)
	for _, token := range splitValues(value) {
		for _, el := range targets {
			apply(d.Type, d.Attribute, token, el)
		}
	}
	return nil
}

// resolveValue reads the value off the triggering element for attribute
// value types, and returns the literal value otherwise.
func resolveValue(d *ir.Descriptor, trigger *dom.Element) string {
	if d.ValueType != ir.ValueAttribute {
		return d.Value
	}
	if trigger == nil {
		return ""
	}
	v, _ := trigger.Attr(d.Value)
	return v
}

// affectedElements narrows the destination to the triggering element when no
// destination selector was declared and the source matched several elements.
func affectedElements(d *ir.Descriptor, trigger *dom.Element) []*dom.Element {
	if d.DestinationSelector == "" && len(d.Destination) > 1 && trigger != nil {
		return []*dom.Element{trigger}
	}
	return d.Destination
}

// splitValues splits a comma-separated value into trimmed, non-empty tokens.
func splitValues(value string) []string {
	var tokens []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			tokens = append(tokens, v)
		}
	}
	return tokens
}

// apply mutates one attribute of el with one token.
func apply(typ ir.ActionType, attr, token string, el *dom.Element) {
	if typ == ir.ActionSet {
		el.SetAttr(attr, token)
		return
	}

	raw, _ := el.Attr(attr)
	tokens := strings.Fields(raw)
	idx := indexOf(tokens, token)

	if dom.IsBooleanProperty(attr) {
		applyBoolean(typ, attr, token, el, tokens, idx)
		return
	}

	switch {
	case typ != ir.ActionRemove && idx < 0:
		el.SetAttr(attr, strings.Join(append(tokens, token), " "))
	case typ != ir.ActionAdd && idx >= 0:
		tokens = append(tokens[:idx], tokens[idx+1:]...)
		el.SetAttr(attr, strings.Join(tokens, " "))
	}
}

// applyBoolean handles checked, selected and disabled. Their live state is
// the property: switching off clears the property and leaves the attribute
// as it is.
func applyBoolean(typ ir.ActionType, attr, token string, el *dom.Element, tokens []string, idx int) {
	on := idx >= 0 && el.Property(attr)
	switch {
	case typ != ir.ActionRemove && !on:
		if idx < 0 {
			el.SetAttr(attr, strings.Join(append(tokens, token), " "))
		}
		el.SetProperty(attr, true)
	case typ != ir.ActionAdd && on:
		el.SetProperty(attr, false)
	}
}

// eventCallback returns the deferred dispatch of a trigger-event action.
// Targets are looked up when the callback runs: the destination selector,
// else the source selector, else the resolved destination.
func (x *Executor) eventCallback(d *ir.Descriptor, event string) func() {
	return func() {
		targets := d.Destination
		selector := d.DestinationSelector
		if selector == "" {
			selector = d.SourceSelector
		}
		if selector != "" && d.Element != nil {
			targets = d.Element.Document().Query(selector)
		}
		x.logger.Debug("dispatching action event", "action", d.Name, "event", event, "targets", len(targets))
		for _, el := range targets {
			el.Trigger(event, nil)
		}
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
