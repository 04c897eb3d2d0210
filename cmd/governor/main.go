// Command governor verifies registered jobs against their pinned fingerprints
// and runs them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NielsdaWheelz/governor/internal/cli/cobra"
	"github.com/NielsdaWheelz/governor/internal/errors"
)

func main() {
	// launchd stops a job by sending SIGTERM to governor; pass it on to the job.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cobra.ExecuteContext(ctx, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		// A failed job speaks through its own output; only mirror its exit code.
		if errors.GetCode(err) != errors.EJobFailed || cobra.GetGlobalOpts().Verbose {
			opts := errors.PrintOptions{
				Verbose: cobra.GetGlobalOpts().Verbose,
			}
			errors.PrintWithOptions(os.Stderr, err, opts)
		}
		os.Exit(errors.ExitCode(err))
	}
}
