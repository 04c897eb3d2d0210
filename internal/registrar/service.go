// Package registrar pins jobs into the allowlist.
// It is the only writer of the allowlist and every mutating entrypoint takes
// a privilege.Elevated capability.
package registrar

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/NielsdaWheelz/governor/internal/core"
	"github.com/NielsdaWheelz/governor/internal/errors"
	"github.com/NielsdaWheelz/governor/internal/events"
	"github.com/NielsdaWheelz/governor/internal/fs"
	"github.com/NielsdaWheelz/governor/internal/privilege"
	"github.com/NielsdaWheelz/governor/internal/store"
	"github.com/NielsdaWheelz/governor/internal/tracing"
)

// Service provides job registration.
type Service struct {
	Store  *store.Store
	Events *events.Log // optional; nil disables the audit log
}

// NewService creates a new registrar service.
func NewService(st *store.Store, log *events.Log) *Service {
	return &Service{Store: st, Events: log}
}

// RegisterResult contains the outcome of a registration.
type RegisterResult struct {
	Name     string
	Job      store.Job
	Replaced bool // an earlier record under the same name was overwritten

	// EventAppendErrors contains any errors from appending audit events.
	// Non-fatal; the allowlist was already persisted.
	EventAppendErrors []string
}

// Register resolves path, fingerprints its content, and stores the record
// under name, replacing any earlier record with that name.
//
// Nothing is read or written before the capability is checked. On any error
// the allowlist on disk is left as it was.
func (s *Service) Register(ctx context.Context, elev privilege.Elevated, name, path string) (*RegisterResult, error) {
	if err := privilege.Require(elev, "register"); err != nil {
		return nil, withRegisterContext(err, name, path)
	}
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "registrar.register")
	span.WithAttributes(map[string]string{"job": name})
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	canonical, err := resolve(name, path)
	if err != nil {
		return nil, err
	}

	fingerprint, err := fs.DigestFile(canonical)
	if err != nil {
		err = errors.WrapWithDetails(errors.EIO, fmt.Sprintf("failed to read %s", canonical), err,
			map[string]string{"job": name, "path": canonical})
		return nil, err
	}

	job := store.Job{
		Path:        canonical,
		Fingerprint: fingerprint,
		RunAs:       elev.RunAs(),
	}

	allowlist, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	_, replaced := allowlist.Get(name)
	allowlist.Put(name, job)
	if err = s.Store.Save(ctx, allowlist); err != nil {
		return nil, err
	}

	result := &RegisterResult{Name: name, Job: job, Replaced: replaced}
	if aerr := s.Events.Append(events.JobRegistered, name,
		events.RegisteredData(job.Path, job.Fingerprint, job.RunAs, replaced)); aerr != nil {
		result.EventAppendErrors = append(result.EventAppendErrors, fmt.Sprintf("%s: %v", events.JobRegistered, aerr))
	}
	return result, nil
}

// UnregisterResult contains the outcome of removing a job.
type UnregisterResult struct {
	Name              string
	Job               store.Job // the record that was removed
	EventAppendErrors []string
}

// Unregister removes name from the allowlist.
// Returns E_JOB_NOT_FOUND if there is no such record.
func (s *Service) Unregister(ctx context.Context, elev privilege.Elevated, name string) (*UnregisterResult, error) {
	if err := privilege.Require(elev, "unregister"); err != nil {
		return nil, err
	}
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "registrar.unregister")
	span.WithAttributes(map[string]string{"job": name})
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	allowlist, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	job, ok := allowlist.Get(name)
	if !ok {
		err = errors.NewWithDetails(errors.EJobNotFound, fmt.Sprintf("job %q is not registered", name),
			map[string]string{"job": name, "store": s.Store.Path})
		return nil, err
	}
	allowlist.Delete(name)
	if err = s.Store.Save(ctx, allowlist); err != nil {
		return nil, err
	}

	result := &UnregisterResult{Name: name, Job: job}
	if aerr := s.Events.Append(events.JobUnregistered, name, map[string]any{"path": job.Path}); aerr != nil {
		result.EventAppendErrors = append(result.EventAppendErrors, fmt.Sprintf("%s: %v", events.JobUnregistered, aerr))
	}
	return result, nil
}

// resolve canonicalizes path and maps failures to E_PATH_RESOLUTION.
func resolve(name, path string) (string, error) {
	canonical, err := fs.Canonicalize(path)
	if err == nil {
		return canonical, nil
	}

	details := map[string]string{"job": name, "requested_path": path}
	var notRegular *fs.ErrNotRegularFile
	switch {
	case stderrors.As(err, &notRegular):
		details["path"] = notRegular.Path
		return "", errors.WrapWithDetails(errors.EPathResolution, notRegular.Error(), err, details)
	case os.IsNotExist(err):
		return "", errors.WrapWithDetails(errors.EPathResolution,
			fmt.Sprintf("%s does not exist or is a dangling symlink", path), err, details)
	default:
		return "", errors.WrapWithDetails(errors.EPathResolution,
			fmt.Sprintf("failed to resolve %s", path), err, details)
	}
}

// withRegisterContext adds the requested job and path to a privilege error
// so the hint can show the exact command to re-run.
func withRegisterContext(err error, name, path string) error {
	return errors.WithDetails(err, map[string]string{"job": name, "requested_path": path})
}
