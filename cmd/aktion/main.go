// Command aktion compiles, validates and exercises pages that declare their
// interactions in data-aktion-* attributes.
//
// Exit codes:
//
//	0 = success
//	1 = failure (scenario or assertion failed, warnings with --strict)
//	2 = command error (unreadable page, declarations that do not compile)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/megant/aktion/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command with args and returns the exit code.
func run(args []string) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		// commands report their own ExitErrors
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
