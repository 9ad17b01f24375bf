package compiler

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a declaring element whose attributes do not form a
// valid descriptor.
type CompileError struct {
	Field   string
	Message string
	// Element describes the declaring element, e.g. "button#open.btn".
	Element string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Element != "" {
		b.WriteString(e.Element)
		b.WriteString(": ")
	}
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	fmt.Fprintf(&b, "%s: %s", e.Field, e.Message)
	return b.String()
}

// formatCUEError extracts the field path and position from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "cue"
	if path := trimDefinition(first.Path()); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	format, args := first.Msg()
	ce := &CompileError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

// trimDefinition drops the leading #Descriptor selector from an error path.
func trimDefinition(path []string) []string {
	if len(path) > 0 && strings.HasPrefix(path[0], "#") {
		return path[1:]
	}
	return path
}

type describer interface {
	String() string
}

// fieldError reports a CUE validation failure of a single field.
func fieldError(field string, err error, el describer) error {
	ce := &CompileError{Field: field, Message: err.Error(), Element: el.String()}
	var formatted *CompileError
	if errors.As(formatCUEError(err), &formatted) {
		ce.Message = formatted.Message
		ce.Pos = formatted.Pos
	}
	return ce
}

// withElement attaches the declaring element to a CompileError.
func withElement(err error, el describer) error {
	var ce *CompileError
	if errors.As(err, &ce) && ce.Element == "" {
		ce.Element = el.String()
	}
	return err
}
