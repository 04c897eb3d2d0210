package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/governor/internal/commands"
)

func newListCmd() *cobra.Command {
	var opts commands.ListOpts

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered jobs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			return commands.List(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output as JSON")

	return cmd
}

func newShowCmd() *cobra.Command {
	var opts commands.ShowOpts

	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Show the stored record for a job",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			opts.Name = args[0]
			return commands.Show(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output as JSON")

	return cmd
}
