package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/governor/internal/commands"
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <name> <path>",
		Short: "Pin a job file's fingerprint under a name (requires root)",
		Long: `Register a job file under a name.
The path is resolved to its canonical form (symlinks followed), the content is
fingerprinted with SHA-256, and the record is stored in the allowlist together
with the account that should run it (the sudo invoking user, else root).
Registering an existing name replaces its record.

Arguments:
  name    job name: letters, digits, '.', '_' and '-', starting with a letter or digit
  path    job file to pin

Example:
  sudo governor register backup ~/jobs/backup.sh`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			opts := commands.RegisterOpts{
				Name: args[0],
				Path: args[1],
			}
			return commands.Register(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}

func newUnregisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "unregister <name>",
		Short:             "Remove a job from the allowlist (requires root)",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			opts := commands.UnregisterOpts{Name: args[0]}
			return commands.Unregister(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}
