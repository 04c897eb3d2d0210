// Package executor runs registered jobs.
//
// A run verifies the job's current content against the fingerprint pinned at
// registration and only then starts it. Verification and execution happen in
// one invocation so a job can never be started on the strength of an earlier
// check.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/NielsdaWheelz/governor/internal/errors"
	"github.com/NielsdaWheelz/governor/internal/events"
	"github.com/NielsdaWheelz/governor/internal/exec"
	"github.com/NielsdaWheelz/governor/internal/fs"
	"github.com/NielsdaWheelz/governor/internal/privilege"
	"github.com/NielsdaWheelz/governor/internal/quarantine"
	"github.com/NielsdaWheelz/governor/internal/store"
	"github.com/NielsdaWheelz/governor/internal/tracing"
)

// Service provides verified job execution.
type Service struct {
	Store   *store.Store
	Spawner exec.Spawner
	Clearer quarantine.Clearer
	Events  *events.Log // optional

	// EnforceRunAs switches the child to the job's run_as account.
	// When false run_as is informational and the job inherits this process's identity.
	EnforceRunAs     bool
	Identity         privilege.Identity
	LookupCredential func(username string) (*exec.Credential, error)

	// Digest computes the fingerprint of the file at path.
	Digest func(path string) (string, error)
	Now    func() time.Time

	// Stdio handed to the job. Warn receives governor's own warnings.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Warn   io.Writer
}

// NewService creates an executor wired to the real process, filesystem and account database.
func NewService(st *store.Store, spawner exec.Spawner, clearer quarantine.Clearer, log *events.Log) *Service {
	if clearer == nil {
		clearer = quarantine.Nop{}
	}
	return &Service{
		Store:            st,
		Spawner:          spawner,
		Clearer:          clearer,
		Events:           log,
		Identity:         privilege.OSIdentity{},
		LookupCredential: privilege.LookupCredential,
		Digest:           fs.DigestFile,
		Now:              time.Now,
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Warn:             os.Stderr,
	}
}

// Result is the outcome of a job that was started.
type Result struct {
	Name          string
	Job           store.Job
	Status        exec.ExitStatus
	RunAsEnforced bool
	Duration      time.Duration
}

// Run looks up name, re-verifies the job file and, if it still matches,
// executes it and waits for it to exit.
//
// Returns:
//   - (result, nil) when the job exited 0
//   - (result, err) when the job ran and failed; err is E_JOB_FAILED carrying the job's exit code
//   - (nil, err) when the job was never started
func (s *Service) Run(ctx context.Context, name string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.run")
	span.WithAttributes(map[string]string{"job": name})
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	job, err := s.verify(ctx, name)
	if err != nil {
		s.appendEvent(events.RunRejected, name, rejectedData(job, err))
		return nil, err
	}

	s.clearQuarantine(ctx, name, job.Path)

	cred, enforced, err := s.credentialFor(name, job)
	if err != nil {
		s.appendEvent(events.RunRejected, name, rejectedData(job, err))
		return nil, err
	}

	s.appendEvent(events.RunStarted, name, events.StartedData(job.Path, job.RunAs, enforced))

	status, duration, err := s.spawn(ctx, job, cred)
	if err != nil {
		err = errors.WrapWithDetails(errors.EExecutionFailed,
			fmt.Sprintf("failed to start %s: %v", job.Path, err), err,
			map[string]string{"job": name, "path": job.Path, "run_as": job.RunAs})
		s.appendEvent(events.RunFinished, name, map[string]any{"error_code": string(errors.EExecutionFailed)})
		return nil, err
	}
	span.SetInt("exit_code", status.Code)
	s.appendEvent(events.RunFinished, name, events.FinishedData(status.Code, status.Signal, duration.Milliseconds()))

	result := &Result{
		Name:          name,
		Job:           job,
		Status:        status,
		RunAsEnforced: enforced,
		Duration:      duration,
	}
	if !status.Success() {
		extra := map[string]string{"path": job.Path}
		if status.Signal != "" {
			extra["signal"] = status.Signal
		}
		err = errors.JobFailed(name, status.Code, extra)
		return result, err
	}
	return result, nil
}

// Check performs the verification half of Run without executing anything.
func (s *Service) Check(ctx context.Context, name string) (store.Job, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.check")
	span.WithAttributes(map[string]string{"job": name})
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	job, err := s.verify(ctx, name)
	if err != nil {
		s.appendEvent(events.CheckFailed, name, rejectedData(job, err))
		return store.Job{}, err
	}
	s.appendEvent(events.CheckPassed, name, map[string]any{"path": job.Path, "hash": job.Fingerprint})
	return job, nil
}

// verify loads the record for name and compares the file's current
// fingerprint with the pinned one. The returned job is populated whenever
// the record exists, even on failure.
func (s *Service) verify(ctx context.Context, name string) (store.Job, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.verify")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	allowlist, err := s.Store.Load(ctx)
	if err != nil {
		return store.Job{}, err
	}
	job, ok := allowlist.Get(name)
	if !ok {
		err = errors.NewWithDetails(errors.EJobNotFound, fmt.Sprintf("job %q is not registered", name),
			map[string]string{"job": name, "store": s.Store.Path})
		return store.Job{}, err
	}

	digest := s.Digest
	if digest == nil {
		digest = fs.DigestFile
	}
	actual, err := digest(job.Path)
	if err != nil {
		err = errors.WrapWithDetails(errors.EIO, fmt.Sprintf("failed to read %s", job.Path), err,
			map[string]string{"job": name, "path": job.Path})
		return job, err
	}

	if !fs.DigestEqual(actual, job.Fingerprint) {
		err = errors.NewWithDetails(errors.EIntegrityViolation,
			fmt.Sprintf("Security Alert: script %q has been modified since registration", name),
			map[string]string{
				"job":           name,
				"path":          job.Path,
				"expected_hash": job.Fingerprint,
				"actual_hash":   actual,
			})
		return job, err
	}
	return job, nil
}

// clearQuarantine is best-effort; failures are reported and the run continues.
func (s *Service) clearQuarantine(ctx context.Context, name, path string) {
	if s.Clearer == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "executor.quarantine")
	err := s.Clearer.Clear(ctx, path)
	tracing.EndSpan(span, err)
	if err == nil {
		return
	}
	s.warnf("failed to clear %s on %s: %v", quarantine.Attribute, path, err)
	s.appendEvent(events.QuarantineClearFailed, name, events.QuarantineData(path, err.Error()))
}

// credentialFor decides which identity the child runs as.
// The bool result reports whether run_as was enforced.
func (s *Service) credentialFor(name string, job store.Job) (*exec.Credential, bool, error) {
	if !s.EnforceRunAs {
		return nil, false, nil
	}

	fail := func(msg string, cause error) error {
		return errors.WrapWithDetails(errors.EExecutionFailed, msg, cause,
			map[string]string{"job": name, "path": job.Path, "run_as": job.RunAs})
	}

	euid := s.Identity.EffectiveUID()
	if euid != privilege.RootUID {
		current, err := s.Identity.Username(euid)
		if err == nil && current == job.RunAs {
			return nil, true, nil
		}
		return nil, false, fail(fmt.Sprintf("cannot run as %q without root privileges", job.RunAs), err)
	}

	lookup := s.LookupCredential
	if lookup == nil {
		lookup = privilege.LookupCredential
	}
	cred, err := lookup(job.RunAs)
	if err != nil {
		return nil, false, fail(fmt.Sprintf("run_as account %q cannot be resolved", job.RunAs), err)
	}
	if cred.UID == privilege.RootUID {
		// Already root.
		return nil, true, nil
	}
	return cred, true, nil
}

func (s *Service) spawn(ctx context.Context, job store.Job, cred *exec.Credential) (exec.ExitStatus, time.Duration, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.spawn")
	span.WithAttributes(map[string]string{"path": job.Path})

	now := s.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	status, err := s.Spawner.Spawn(ctx, exec.SpawnSpec{
		Path:       job.Path,
		Credential: cred,
		Stdin:      s.Stdin,
		Stdout:     s.Stdout,
		Stderr:     s.Stderr,
	})
	duration := now().Sub(start)

	if err == nil {
		span.SetInt("exit_code", status.Code)
	}
	tracing.EndSpan(span, err)
	return status, duration, err
}

func (s *Service) appendEvent(event, name string, data map[string]any) {
	if err := s.Events.Append(event, name, data); err != nil {
		s.warnf("failed to append %s event: %v", event, err)
	}
}

func (s *Service) warnf(format string, args ...any) {
	w := s.Warn
	if w == nil {
		w = os.Stderr
	}
	_, _ = fmt.Fprintf(w, "warning: "+format+"\n", args...)
}

// rejectedData builds the audit payload for a verification failure.
func rejectedData(job store.Job, err error) map[string]any {
	var expected, actual string
	if ge, ok := errors.AsGovernorError(err); ok {
		expected = ge.Details["expected_hash"]
		actual = ge.Details["actual_hash"]
	}
	return events.RejectedData(job.Path, string(errors.GetCode(err)), expected, actual)
}
