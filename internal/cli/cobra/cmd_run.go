package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/governor/internal/commands"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Verify and run a registered job",
		Long: `Run a registered job in the foreground.
The job file is re-fingerprinted first; if the content differs from what was
registered the job is not started and governor exits with E_INTEGRITY_VIOLATION.
Otherwise the file is executed directly (no shell, no arguments) with this
process's stdin, stdout and stderr, and governor exits with the job's exit code.

Arguments:
  name    registered job name`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			opts := commands.RunOpts{Name: args[0]}
			return commands.Run(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <name>",
		Short: "Verify a registered job without running it",
		Long: `Re-fingerprint a registered job and compare it with the pinned value.
Exits 0 when the file is unchanged and with E_INTEGRITY_VIOLATION otherwise.
Nothing is executed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			opts := commands.CheckOpts{Name: args[0]}
			return commands.Check(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}
