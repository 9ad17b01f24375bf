package compiler

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// DefaultPrefix is the data attribute prefix used when none is configured.
const DefaultPrefix = "aktion"

// Attribute suffixes read off a declaring element, in schema order.
const (
	AttrName                = "name"
	AttrType                = "type"
	AttrValue               = "value"
	AttrValueType           = "value-type"
	AttrEvent               = "event"
	AttrEventThreshold      = "event-threshold"
	AttrAttribute           = "attribute"
	AttrSourceSelector      = "source-selector"
	AttrDestinationSelector = "destination-selector"
	AttrTriggerBefore       = "trigger-before"
	AttrTriggerAfter        = "trigger-after"
	AttrIntervalTime        = "interval-time"
	AttrExtraCondition      = "extra-condition"
)

var attributes = []string{
	AttrName, AttrType, AttrValue, AttrValueType, AttrEvent, AttrEventThreshold,
	AttrAttribute, AttrSourceSelector, AttrDestinationSelector,
	AttrTriggerBefore, AttrTriggerAfter, AttrIntervalTime, AttrExtraCondition,
}

var integerAttributes = map[string]bool{
	AttrEventThreshold: true,
	AttrIntervalTime:   true,
}

// Factory turns declaring elements into descriptors.
//
// A Factory owns the auto-name counter, so names stay unique across repeated
// scans of the same document.
type Factory struct {
	doc        *dom.Document
	prefix     string
	ios        bool
	predicates *PredicateRegistry

	ctx    *cue.Context
	schema cue.Value

	counter int
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithPrefix sets the data attribute prefix ("aktion" reads data-aktion-*).
func WithPrefix(prefix string) FactoryOption {
	return func(f *Factory) {
		if prefix != "" {
			f.prefix = prefix
		}
	}
}

// WithIOS enables the iOS click hack: click sources get cursor: pointer so
// that the platform dispatches click events for them.
func WithIOS(ios bool) FactoryOption {
	return func(f *Factory) {
		f.ios = ios
	}
}

// WithPredicates sets the registry extra-condition names are resolved in.
func WithPredicates(r *PredicateRegistry) FactoryOption {
	return func(f *Factory) {
		if r != nil {
			f.predicates = r
		}
	}
}

// NewFactory creates a descriptor factory for doc.
func NewFactory(doc *dom.Document, opts ...FactoryOption) (*Factory, error) {
	f := &Factory{
		doc:        doc,
		prefix:     DefaultPrefix,
		predicates: NewPredicateRegistry(),
		ctx:        cuecontext.New(),
	}
	for _, opt := range opts {
		opt(f)
	}

	v := f.ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile descriptor schema: %w", formatCUEError(err))
	}
	f.schema = v.LookupPath(cue.ParsePath("#Descriptor"))
	if !f.schema.Exists() {
		return nil, errors.New("compile descriptor schema: #Descriptor not found")
	}
	return f, nil
}

// Prefix returns the data attribute prefix.
func (f *Factory) Prefix() string {
	return f.prefix
}

// Predicates returns the registry extra conditions are resolved in.
func (f *Factory) Predicates() *PredicateRegistry {
	return f.predicates
}

// AttrName returns the full data attribute name for a suffix.
func (f *Factory) AttrName(attr string) string {
	return "data-" + f.prefix + "-" + attr
}

// Selector matches every element that declares an action.
func (f *Factory) Selector() string {
	return "[" + f.AttrName(AttrValue) + "]"
}

// Elements returns the declaring elements of the document in document order.
func (f *Factory) Elements() []*dom.Element {
	return f.doc.Query(f.Selector())
}

// Scan compiles every declaring element. Elements that fail to compile are
// skipped; their errors are joined into the returned error.
func (f *Factory) Scan() ([]*ir.Descriptor, error) {
	var (
		descs []*ir.Descriptor
		errs  []error
	)
	for _, el := range f.Elements() {
		d, err := f.Compile(el)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descs = append(descs, d)
	}
	return descs, errors.Join(errs...)
}

// Compile reads the data attributes of el into a descriptor, fills defaults
// from the schema, and resolves source and destination elements.
func (f *Factory) Compile(el *dom.Element) (*ir.Descriptor, error) {
	fields := make(map[string]any, len(attributes))
	for _, attr := range attributes {
		raw, _ := el.Attr(f.AttrName(attr))
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		key := fieldName(attr)
		if integerAttributes[attr] {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &CompileError{
					Field:   key,
					Message: fmt.Sprintf("%q is not an integer", raw),
					Element: el.String(),
				}
			}
			fields[key] = n
			continue
		}
		fields[key] = raw
	}

	if _, ok := fields["value"]; !ok {
		return nil, &CompileError{
			Field:   "value",
			Message: "value is required",
			Element: el.String(),
		}
	}

	// The counter only advances for unnamed elements.
	if _, ok := fields["name"]; !ok {
		fields["name"] = fmt.Sprintf("action%d", f.counter)
		f.counter++
	}

	// Fields are checked one at a time so errors name the attribute.
	for _, attr := range attributes {
		key := fieldName(attr)
		val, ok := fields[key]
		if !ok {
			continue
		}
		fv := f.schema.LookupPath(cue.ParsePath(key)).Unify(f.ctx.Encode(val))
		if err := fv.Validate(); err != nil {
			return nil, fieldError(key, err, el)
		}
	}

	v := f.schema.Unify(f.ctx.Encode(fields))
	if err := v.Validate(); err != nil {
		return nil, withElement(formatCUEError(err), el)
	}

	d := &ir.Descriptor{Element: el}
	var err error
	if d.Name, err = stringField(v, "name"); err != nil {
		return nil, withElement(err, el)
	}
	typ, err := stringField(v, "type")
	if err != nil {
		return nil, withElement(err, el)
	}
	d.Type = ir.ActionType(typ)
	if d.Value, err = stringField(v, "value"); err != nil {
		return nil, withElement(err, el)
	}
	valueType, err := stringField(v, "value_type")
	if err != nil {
		return nil, withElement(err, el)
	}
	d.ValueType = ir.ValueType(valueType)
	if d.Event, err = stringField(v, "event"); err != nil {
		return nil, withElement(err, el)
	}
	if d.EventThreshold, err = intField(v, "event_threshold"); err != nil {
		return nil, withElement(err, el)
	}
	if d.Attribute, err = stringField(v, "attribute"); err != nil {
		return nil, withElement(err, el)
	}
	if d.SourceSelector, err = stringField(v, "source_selector"); err != nil {
		return nil, withElement(err, el)
	}
	if d.DestinationSelector, err = stringField(v, "destination_selector"); err != nil {
		return nil, withElement(err, el)
	}
	if d.TriggerBefore, err = stringField(v, "trigger_before"); err != nil {
		return nil, withElement(err, el)
	}
	if d.TriggerAfter, err = stringField(v, "trigger_after"); err != nil {
		return nil, withElement(err, el)
	}
	interval, err := intField(v, "interval_time")
	if err != nil {
		return nil, withElement(err, el)
	}
	d.IntervalTime = time.Duration(interval) * time.Millisecond
	if d.ConditionName, err = stringField(v, "extra_condition"); err != nil {
		return nil, withElement(err, el)
	}

	d.ExtraCondition = ir.Always
	if d.ConditionName != "" {
		p, ok := f.predicates.Lookup(d.ConditionName)
		if !ok {
			return nil, &CompileError{
				Field:   "extra_condition",
				Message: fmt.Sprintf("unknown predicate %q", d.ConditionName),
				Element: el.String(),
			}
		}
		d.ExtraCondition = p
	}

	d.Source = f.resolveSource(el, d.SourceSelector)
	if d.DestinationSelector != "" {
		d.Destination = f.doc.Query(d.DestinationSelector)
	} else {
		d.Destination = d.Source
	}

	if f.ios && d.Event == "click" &&
		d.SourceSelector != dom.SelectorWindow && d.SourceSelector != dom.SelectorDocument {
		for _, src := range d.Source {
			setStyle(src, "cursor", "pointer")
		}
	}

	return d, nil
}

func (f *Factory) resolveSource(el *dom.Element, selector string) []*dom.Element {
	switch selector {
	case "":
		return []*dom.Element{el}
	case dom.SelectorWindow:
		return []*dom.Element{f.doc.Window()}
	case dom.SelectorDocument:
		return []*dom.Element{f.doc.DocumentElement()}
	default:
		return f.doc.Query(selector)
	}
}

// fieldName maps an attribute suffix to its schema field.
func fieldName(attr string) string {
	return strings.ReplaceAll(attr, "-", "_")
}

func stringField(v cue.Value, field string) (string, error) {
	f, _ := v.LookupPath(cue.ParsePath(field)).Default()
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func intField(v cue.Value, field string) (int, error) {
	f, _ := v.LookupPath(cue.ParsePath(field)).Default()
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// setStyle sets one declaration of an element's inline style, keeping the
// others in place.
func setStyle(el *dom.Element, property, value string) {
	if el.Kind() != dom.KindElement {
		return
	}
	style, _ := el.Attr("style")
	var decls []string
	replaced := false
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(name) == property {
			decl = property + ": " + value
			replaced = true
		}
		decls = append(decls, decl)
	}
	if !replaced {
		decls = append(decls, property+": "+value)
	}
	el.SetAttr("style", strings.Join(decls, "; "))
}
