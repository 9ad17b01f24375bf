package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/megant/aktion/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Events bool // print dispatched events in text output
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one scenario and print its flush trace",
		Long: `Run a scenario against its page on a virtual clock and print every
flush: batch ID, time, submitted actions and execution order.

With --format json the trace is printed as canonical JSON, the same bytes a
golden file holds. With --verbose, engine debug logs go to stderr.

Example:
  aktion run ./scenarios/menu_toggle.yaml
  aktion run ./scenarios/menu_toggle.yaml --events
  aktion run ./scenarios/menu_toggle.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Events, "events", false, "print dispatched events")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return outputError(formatter, ErrCodeNotFound, fmt.Sprintf("failed to load scenario: %v", err), ExitCommandError)
	}

	var runOpts []harness.RunOption
	if opts.Verbose {
		debug := true
		if scenario.Config == nil {
			scenario.Config = &harness.ScenarioConfig{}
		}
		scenario.Config.Debug = &debug
		runOpts = append(runOpts, harness.WithLogger(opts.Logger(formatter.GetErrWriter())))
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return outputError(formatter, ErrCodeGeneric, fmt.Sprintf("scenario %s: %v", scenario.Name, err), ExitCommandError)
	}

	if formatter.JSON() {
		if err := formatter.Canonical(harness.TraceSnapshot{ScenarioName: scenario.Name, Result: result}); err != nil {
			return err
		}
	} else {
		outputRunText(formatter, scenario, result, opts.Events)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed %d assertion(s)", scenario.Name, len(result.Errors)))
	}
	return nil
}

// outputRunText prints the trace of one scenario, e.g.
//
//	#1 batch-1 @0ms  a → c → b  (submitted: a b c)
func outputRunText(formatter *OutputFormatter, scenario *harness.Scenario, result *harness.Result, events bool) {
	w := formatter.Writer

	fmt.Fprintf(w, "%s: %d action(s) wired, %d batch(es)\n", scenario.Name, result.Wired, len(result.Batches))
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  skipped %s\n", s)
	}

	for _, b := range result.Batches {
		line := fmt.Sprintf("  #%d %s @%dms  %s", b.Seq, b.ID, b.At.Milliseconds(), strings.Join(b.Order, " → "))
		if strings.Join(b.Order, " ") != strings.Join(b.Submitted, " ") {
			line += fmt.Sprintf("  (submitted: %s)", strings.Join(b.Submitted, " "))
		}
		if b.Callbacks > 0 {
			line += fmt.Sprintf("  +%d callback(s)", b.Callbacks)
		}
		fmt.Fprintln(w, line)
	}

	if events {
		fmt.Fprintln(w, "\nEvents:")
		for _, ev := range result.Events {
			fmt.Fprintf(w, "  %s %s\n", ev.Type, ev.Target)
		}
	}

	if result.Pass {
		fmt.Fprintln(w, "\n✓ All assertions passed")
		return
	}
	fmt.Fprintln(w, "\n✗ Assertions failed:")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
	}
}
