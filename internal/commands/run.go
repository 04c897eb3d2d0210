package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/governor/internal/errors"
)

// RunOpts holds options for the run command.
type RunOpts struct {
	Name string
}

// Run verifies and executes a registered job in the foreground.
// The job inherits stdin and writes straight to stdout/stderr; governor
// itself prints nothing on success. A job that exits non-zero yields an
// error carrying the job's exit code.
func Run(ctx context.Context, rt *Runtime, opts RunOpts, stdout, stderr io.Writer) error {
	if opts.Name == "" {
		return errors.New(errors.EUsage, "usage: governor run <name>")
	}
	_, err := rt.Executor(stdout, stderr).Run(ctx, opts.Name)
	return err
}

// CheckOpts holds options for the check command.
type CheckOpts struct {
	Name string
}

// Check verifies a registered job without executing it.
func Check(ctx context.Context, rt *Runtime, opts CheckOpts, stdout, stderr io.Writer) error {
	if opts.Name == "" {
		return errors.New(errors.EUsage, "usage: governor check <name>")
	}
	job, err := rt.Executor(stdout, stderr).Check(ctx, opts.Name)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "ok %s path=%s hash=%s\n", opts.Name, job.Path, job.Fingerprint)
	return nil
}
