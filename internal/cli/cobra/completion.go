package cobra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/NielsdaWheelz/governor/internal/errors"
	"github.com/NielsdaWheelz/governor/internal/store"
)

func newCompletionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts.
By default, prints the script to stdout.
Use --output to write directly to a file.
Job names are completed for run, check, show and unregister.

Arguments:
  shell    target shell: bash, zsh or fish

Installation:

  bash (with bash-completion package):
    governor completion bash > ~/.local/share/bash-completion/completions/governor

  zsh (with fpath):
    governor completion zsh > ~/.zsh/completions/_governor
    # ensure ~/.zsh/completions is in fpath before compinit

  fish:
    governor completion --output ~/.config/fish/completions/governor.fish fish

After installation, restart your shell.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := generateCompletion(cmd.Root(), args[0], &buf); err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return writeFileAtomic(cmd.Context(), afs.New(), output, buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "write completion script to file instead of stdout")

	return cmd
}

func generateCompletion(root *cobra.Command, shell string, buf *bytes.Buffer) error {
	var err error
	switch shell {
	case "bash":
		err = root.GenBashCompletionV2(buf, true)
	case "zsh":
		err = root.GenZshCompletion(buf)
	case "fish":
		err = root.GenFishCompletion(buf, true)
	default:
		return errors.New(errors.EUsage, fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish)", shell))
	}
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to generate completion script", err)
	}
	return nil
}

// writeFileAtomic writes data to a sibling temp file and moves it over path.
func writeFileAtomic(ctx context.Context, fs afs.Service, path string, data []byte) error {
	dir := filepath.Dir(path)
	if exists, _ := fs.Exists(ctx, dir); !exists {
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to create directory %s", dir), err)
		}
	}

	tmpPath := store.TempPath(path)
	if err := fs.Upload(ctx, tmpPath, 0o644, bytes.NewReader(data)); err != nil {
		_ = fs.Delete(ctx, tmpPath)
		return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to write %s", path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = fs.Delete(ctx, tmpPath)
		return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to rename to %s", path), err)
	}
	return nil
}
