package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/megant/aktion/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	PageOptions
	Output string // output file path
}

// CompilationResult is the canonical view of a compiled page.
type CompilationResult struct {
	Page    string
	Actions []*ir.Descriptor
}

// Canonical implements ir.Canonical.
func (r CompilationResult) Canonical() any {
	actions := make([]any, len(r.Actions))
	for i, d := range r.Actions {
		actions[i] = d.Summary()
	}
	return map[string]any{
		"page":    r.Page,
		"actions": actions,
	}
}

// addPageFlags registers the flags that control how declarations are read.
func addPageFlags(cmd *cobra.Command, opts *PageOptions) {
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", `data attribute prefix (default "aktion")`)
	cmd.Flags().BoolVar(&opts.IOS, "ios", false, "apply the iOS click hack to click sources")
	cmd.Flags().StringSliceVar(&opts.Predicates, "predicate", nil, "extra-condition names to treat as always true")
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <page.html>",
		Short: "Compile a page's declarations to canonical JSON",
		Long: `Compile every declaring element of an HTML page into its normalized
action descriptor, with schema defaults applied, and output canonical JSON.

Fails when any declaring element does not compile.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	addPageFlags(cmd, &opts.PageOptions)

	return cmd
}

func runCompile(opts *CompileOptions, page string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, err := LoadPage(page, opts.PageOptions)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d declaring element(s) in %s", loadResult.Elements, page)

	if len(loadResult.Errors) > 0 {
		return outputValidationErrors(formatter, loadResult.Errors)
	}

	result := CompilationResult{Page: page, Actions: loadResult.Descriptors}
	for _, d := range result.Actions {
		formatter.VerboseLog("Compiled action: %s", d.Name)
	}

	if opts.Output != "" {
		if err := writeCompilation(result, opts.Output); err != nil {
			return outputError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), ExitCommandError)
		}
	}

	if formatter.JSON() {
		return formatter.Canonical(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d action(s)\n", len(result.Actions))
	for _, d := range result.Actions {
		fmt.Fprintf(formatter.Writer, "  %s\n", describeAction(d))
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote %s\n", opts.Output)
	}
	return nil
}

// describeAction renders one descriptor on a line, e.g.
// "open-menu: click → toggle class \"open\"".
func describeAction(d *ir.Descriptor) string {
	target := d.Attribute
	if d.Type == ir.ActionTriggerEvent {
		target = "event"
	}
	s := fmt.Sprintf("%s: %s → %s %s %q", d.Name, d.Event, d.Type, target, d.Value)
	if d.ValueType != ir.ValueStatic {
		s += fmt.Sprintf(" (from %s)", d.ValueType)
	}
	if d.TriggerBefore != "" {
		s += fmt.Sprintf(", before %s", d.TriggerBefore)
	}
	if d.TriggerAfter != "" {
		s += fmt.Sprintf(", after %s", d.TriggerAfter)
	}
	return s
}

// writeCompilation writes the canonical JSON of result to path.
func writeCompilation(result CompilationResult, path string) error {
	data, err := ir.MarshalCanonical(result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// outputLoadError reports an error returned by LoadPage.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return outputError(formatter, loadErr.Code, loadErr.Message, ExitCommandError)
	}
	return outputError(formatter, ErrCodeGeneric, err.Error(), ExitCommandError)
}

// outputError writes an error and returns an ExitError with exitCode.
func outputError(formatter *OutputFormatter, code, message string, exitCode int) error {
	if err := formatter.Error(code, message, nil); err != nil {
		return err
	}
	return NewExitError(exitCode, message)
}

// outputValidationErrors reports declaring elements that do not compile.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	message := fmt.Sprintf("%d declaration(s) failed to compile", len(errs))
	if formatter.JSON() {
		if err := formatter.Error(errs[0].Code, message, errs); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, message)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n\n", message)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  [%s] %s\n", e.Code, formatValidationError(e))
	}
	return NewExitError(ExitCommandError, message)
}

func formatValidationError(e ValidationError) string {
	s := e.Field + ": " + e.Message
	if e.Element != "" {
		s = e.Element + ": " + s
	}
	return s
}
