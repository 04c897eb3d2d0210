package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/governor/internal/errors"
	"github.com/NielsdaWheelz/governor/internal/render"
)

// ListOpts holds options for the list command.
type ListOpts struct {
	JSON bool
}

// List prints every registered job, sorted by name.
// Read-only; a missing allowlist lists nothing.
func List(ctx context.Context, rt *Runtime, opts ListOpts, stdout, stderr io.Writer) error {
	allowlist, err := rt.Store().Load(ctx)
	if err != nil {
		return err
	}

	names := allowlist.Names()
	if opts.JSON {
		jobs := make([]render.JobJSON, 0, len(names))
		for _, name := range names {
			job, _ := allowlist.Get(name)
			jobs = append(jobs, render.JobJSON{Name: name, Path: job.Path, Hash: job.Fingerprint, RunAs: job.RunAs})
		}
		return render.WriteJSON(stdout, jobs)
	}

	rows := make([]render.JobRow, 0, len(names))
	for _, name := range names {
		job, _ := allowlist.Get(name)
		rows = append(rows, render.JobRow{Name: name, RunAs: job.RunAs, Hash: job.Fingerprint, Path: job.Path})
	}
	return render.WriteListHuman(stdout, rows)
}

// ShowOpts holds options for the show command.
type ShowOpts struct {
	Name string
	JSON bool
}

// Show prints the full record of one registered job.
func Show(ctx context.Context, rt *Runtime, opts ShowOpts, stdout, stderr io.Writer) error {
	if opts.Name == "" {
		return errors.New(errors.EUsage, "usage: governor show <name>")
	}

	st := rt.Store()
	allowlist, err := st.Load(ctx)
	if err != nil {
		return err
	}
	job, ok := allowlist.Get(opts.Name)
	if !ok {
		return errors.NewWithDetails(errors.EJobNotFound, fmt.Sprintf("job %q is not registered", opts.Name),
			map[string]string{"job": opts.Name, "store": st.Path})
	}

	if opts.JSON {
		return render.WriteJSON(stdout, render.JobJSON{Name: opts.Name, Path: job.Path, Hash: job.Fingerprint, RunAs: job.RunAs})
	}
	return render.WriteShowHuman(stdout, render.ShowData{
		Name:  opts.Name,
		Path:  job.Path,
		Hash:  job.Fingerprint,
		RunAs: job.RunAs,
		Store: st.Path,
	})
}

// JobNames returns registered job names for shell completion.
// Silent on error: completion should never print diagnostics.
func JobNames(ctx context.Context, rt *Runtime) []string {
	allowlist, err := rt.Store().Load(ctx)
	if err != nil {
		return nil
	}
	return allowlist.Names()
}
