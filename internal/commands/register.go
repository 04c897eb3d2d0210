package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/governor/internal/errors"
	"github.com/NielsdaWheelz/governor/internal/privilege"
)

// RegisterOpts holds options for the register command.
type RegisterOpts struct {
	Name string
	Path string
}

// Register pins the file at opts.Path under opts.Name. Requires root.
// Prints one summary line on success:
//
//	registered <name> path=<canonical> hash=<sha256> run_as=<user>
func Register(ctx context.Context, rt *Runtime, opts RegisterOpts, stdout, stderr io.Writer) error {
	if opts.Name == "" || opts.Path == "" {
		return errors.New(errors.EUsage, "usage: governor register <name> <path>")
	}

	elev, err := privilege.Acquire(rt.Identity)
	if err != nil {
		return errors.WithDetails(err, map[string]string{
			"op":             "register",
			"job":            opts.Name,
			"requested_path": opts.Path,
		})
	}

	res, err := rt.Registrar().Register(ctx, elev, opts.Name, opts.Path)
	if err != nil {
		return err
	}
	warnEvents(stderr, res.EventAppendErrors)

	verb := "registered"
	if res.Replaced {
		verb = "updated"
	}
	_, _ = fmt.Fprintf(stdout, "%s %s path=%s hash=%s run_as=%s\n",
		verb, res.Name, res.Job.Path, res.Job.Fingerprint, res.Job.RunAs)
	return nil
}

// UnregisterOpts holds options for the unregister command.
type UnregisterOpts struct {
	Name string
}

// Unregister removes a job from the allowlist. Requires root.
func Unregister(ctx context.Context, rt *Runtime, opts UnregisterOpts, stdout, stderr io.Writer) error {
	if opts.Name == "" {
		return errors.New(errors.EUsage, "usage: governor unregister <name>")
	}

	elev, err := privilege.Acquire(rt.Identity)
	if err != nil {
		return errors.WithDetails(err, map[string]string{"op": "unregister", "job": opts.Name})
	}

	res, err := rt.Registrar().Unregister(ctx, elev, opts.Name)
	if err != nil {
		return err
	}
	warnEvents(stderr, res.EventAppendErrors)

	_, _ = fmt.Fprintf(stdout, "unregistered %s path=%s\n", res.Name, res.Job.Path)
	return nil
}
