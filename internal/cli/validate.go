package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/megant/aktion/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	PageOptions
	Strict bool // treat warnings as failures
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                  `json:"valid"`
	Elements    int                   `json:"elements"`
	Actions     int                   `json:"actions"`
	Errors      []ValidationError     `json:"errors,omitempty"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <page.html>",
		Short: "Check a page's declarations",
		Long: `Check the data attribute declarations of an HTML page.

Reports declaring elements that do not compile, duplicate action names,
trigger-before/after references to unknown actions, and ordering cycles.

Exit codes:
  0 - All declarations compile (warnings allowed unless --strict)
  1 - Warnings found with --strict
  2 - Declarations that do not compile, or the page cannot be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on warnings")
	addPageFlags(cmd, &opts.PageOptions)

	return cmd
}

func runValidate(opts *ValidateOptions, page string, cmd *cobra.Command) error {
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

	result := ValidationResult{
		Valid:       len(loadResult.Errors) == 0,
		Elements:    loadResult.Elements,
		Actions:     len(loadResult.Descriptors),
		Errors:      loadResult.Errors,
		Diagnostics: loadResult.Diagnostics,
	}
	warnings := countWarnings(result.Diagnostics)

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	switch {
	case !result.Valid:
		return NewExitError(ExitCommandError, fmt.Sprintf("%d declaration(s) failed to compile", len(result.Errors)))
	case opts.Strict && warnings > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d warning(s)", warnings))
	}
	return nil
}

func countWarnings(diags []compiler.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Level == compiler.LevelWarning {
			n++
		}
	}
	return n
}

// outputValidateText prints errors first, then diagnostics.
func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer

	if result.Valid {
		fmt.Fprintf(w, "✓ %d action(s) from %d declaring element(s)\n", result.Actions, result.Elements)
	} else {
		fmt.Fprintf(w, "✗ %d of %d declaring element(s) failed to compile\n", len(result.Errors), result.Elements)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  [%s] %s\n", e.Code, formatValidationError(e))
		}
	}

	if len(result.Diagnostics) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, d := range result.Diagnostics {
		fmt.Fprintf(w, "  %s: %s: %s\n", d.Level, d.Name, d.Message)
	}
}
