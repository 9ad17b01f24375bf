package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/megant/aktion/internal/compiler"
	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
)

// PageOptions selects how a page's declarations are read.
type PageOptions struct {
	Prefix string
	IOS    bool
	// Predicates are registered as always-true extra conditions so pages
	// that reference host predicates still compile.
	Predicates []string
}

// LoadResult contains the results of compiling the declarations of a page.
type LoadResult struct {
	Doc         *dom.Document
	Descriptors []*ir.Descriptor
	Elements    int // Declaring elements found, compiled or not
	Errors      []ValidationError
	Diagnostics []compiler.Diagnostic
}

// ValidationError is one declaring element that failed to compile.
type ValidationError struct {
	Element string `json:"element,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// LoadError represents an error that stops a page from being compiled at all.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadPage parses an HTML page and compiles every declaring element.
// Compile failures are collected in the result; only an unreadable page or
// an invalid option returns an error.
func LoadPage(path string, opts PageOptions) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("page not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading page: %v", err)}
	}

	doc, err := dom.ParseString(string(data))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing page: %v", err)}
	}

	preds := compiler.NewPredicateRegistry()
	for _, name := range opts.Predicates {
		if err := preds.Register(name, ir.Always); err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("predicate %q: %v", name, err)}
		}
	}

	factoryOpts := []compiler.FactoryOption{
		compiler.WithIOS(opts.IOS),
		compiler.WithPredicates(preds),
	}
	if opts.Prefix != "" {
		factoryOpts = append(factoryOpts, compiler.WithPrefix(opts.Prefix))
	}
	factory, err := compiler.NewFactory(doc, factoryOpts...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("creating compiler: %v", err)}
	}

	result := &LoadResult{
		Doc:      doc,
		Elements: len(factory.Elements()),
	}
	descs, err := factory.Scan()
	result.Descriptors = descs
	if err != nil {
		for _, e := range unjoin(err) {
			result.Errors = append(result.Errors, convertCompileError(e))
		}
	}
	result.Diagnostics = compiler.Diagnose(descs)
	return result, nil
}

// convertCompileError converts a compile error to a ValidationError.
func convertCompileError(err error) ValidationError {
	var cErr *compiler.CompileError
	if errors.As(err, &cErr) {
		line := 0
		if cErr.Pos.IsValid() {
			line = cErr.Pos.Line()
		}
		return ValidationError{
			Element: cErr.Element,
			Field:   cErr.Field,
			Message: cErr.Message,
			Code:    MapFieldToErrorCode(cErr.Field),
			Line:    line,
		}
	}
	return ValidationError{
		Field:   "page",
		Message: err.Error(),
		Code:    ErrCodeGeneric,
	}
}

// unjoin splits an errors.Join result into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeParseFailed = "E003" // HTML parse failed
	ErrCodeWriteFailed = "E004" // File write error

	// Declaration errors
	ErrCodeMissingValue     = "E101" // No value attribute
	ErrCodeInvalidType      = "E102" // Unknown action type
	ErrCodeInvalidValueType = "E103" // Unknown value type
	ErrCodeInvalidEvent     = "E104" // Empty or malformed event
	ErrCodeInvalidInteger   = "E105" // Threshold or interval out of range
	ErrCodeInvalidName      = "E106" // Empty action name or reference
	ErrCodeUnknownPredicate = "E107" // Extra condition not registered
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "value":
		return ErrCodeMissingValue
	case "type":
		return ErrCodeInvalidType
	case "value_type":
		return ErrCodeInvalidValueType
	case "event":
		return ErrCodeInvalidEvent
	case "event_threshold", "interval_time":
		return ErrCodeInvalidInteger
	case "name", "trigger_before", "trigger_after":
		return ErrCodeInvalidName
	case "extra_condition":
		return ErrCodeUnknownPredicate
	default:
		return ErrCodeGeneric
	}
}
