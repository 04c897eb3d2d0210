// Package cobra provides the Cobra-based CLI command tree for governor.
package cobra

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/governor/internal/tracing"
	"github.com/NielsdaWheelz/governor/internal/version"
)

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	Verbose bool
	Trace   string
}

// globalOpts stores the parsed global options for access by subcommands.
var globalOpts GlobalOpts

// GetGlobalOpts returns the parsed global options.
func GetGlobalOpts() GlobalOpts {
	return globalOpts
}

// NewRootCmd creates the root cobra command for governor.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "governor",
		Short: "Privileged gatekeeper for registered background jobs",
		Long: `governor - privileged gatekeeper for registered background jobs

An administrator registers a job file under a name with sudo; governor pins the
file's SHA-256 fingerprint in an allowlist. Afterwards anyone may ask governor
to run the job by name. Every run re-fingerprints the file and refuses to start
it if the content changed since registration.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // We handle error printing in main.go
		SilenceUsage:  true, // We handle usage printing manually
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Verbose, "verbose", false, "show detailed error context")
	rootCmd.PersistentFlags().StringVar(&globalOpts.Trace, "trace", "", "append OpenTelemetry spans to this file")

	// Disable Cobra's default completion command (we register our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newRegisterCmd(),
		newRunCmd(),
		newCheckCmd(),
		newListCmd(),
		newShowCmd(),
		newUnregisterCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
func Execute(stdout, stderr io.Writer) error {
	return ExecuteContext(context.Background(), stdout, stderr)
}

// ExecuteContext runs the root command under ctx. Cancelling ctx terminates
// a running job. This is the main entry point from main.go.
func ExecuteContext(ctx context.Context, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	// Flush spans even when the command failed; a rejected run is the interesting trace.
	_ = tracing.Shutdown(context.Background())
	return err
}
