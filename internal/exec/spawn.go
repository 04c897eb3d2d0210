package exec

import (
	"context"
	"io"
	"os"
	osexec "os/exec"
	"syscall"
	"time"
)

// Credential is the uid/gid a job is switched to before exec.
type Credential struct {
	UID    uint32
	GID    uint32
	Groups []uint32
}

// SpawnSpec describes one job execution.
type SpawnSpec struct {
	// Path is executed directly as argv[0]; no shell is involved.
	Path string

	// Credential, when non-nil, drops the child to that identity.
	Credential *Credential

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ExitStatus is how a started job terminated.
type ExitStatus struct {
	// Code is the exit code, or 128+signo when the job was killed by a signal.
	Code int
	// Signal is the signal name when the job was killed by a signal.
	Signal string
}

// Success reports whether the job exited with status 0.
func (s ExitStatus) Success() bool { return s.Code == 0 && s.Signal == "" }

// Spawner starts a job and waits for it to finish.
// The error return is only for failures to start; a job that ran and
// failed is reported through ExitStatus.
type Spawner interface {
	Spawn(ctx context.Context, spec SpawnSpec) (ExitStatus, error)
}

// GracePeriod is how long a job may run after being asked to terminate
// before it is killed.
const GracePeriod = 5 * time.Second

// ProcessSpawner is the os/exec backed Spawner.
type ProcessSpawner struct {
	// GracePeriod overrides the package default when non-zero.
	GracePeriod time.Duration
}

// NewProcessSpawner creates a Spawner that starts real processes.
func NewProcessSpawner() *ProcessSpawner {
	return &ProcessSpawner{}
}

// Spawn implements Spawner. It blocks until the child exits; there is no timeout.
//
// When ctx is cancelled while the job runs (governor itself received SIGINT or
// SIGTERM), the job is sent a termination signal and, if it is still alive
// after the grace period, killed. Its status is reported like any other exit.
func (p *ProcessSpawner) Spawn(ctx context.Context, spec SpawnSpec) (ExitStatus, error) {
	if err := ctx.Err(); err != nil {
		return ExitStatus{}, err
	}

	cmd := osexec.CommandContext(ctx, spec.Path)
	cmd.Stdin = orDefault(spec.Stdin, os.Stdin)
	cmd.Stdout = orDefaultWriter(spec.Stdout, os.Stdout)
	cmd.Stderr = orDefaultWriter(spec.Stderr, os.Stderr)
	configureCredential(cmd, spec.Credential)

	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = GracePeriod
	if p != nil && p.GracePeriod > 0 {
		cmd.WaitDelay = p.GracePeriod
	}

	if err := cmd.Start(); err != nil {
		return ExitStatus{}, err
	}

	waitErr := cmd.Wait()
	if cmd.ProcessState == nil {
		return ExitStatus{}, waitErr
	}
	return statusOf(cmd.ProcessState), nil
}

// statusOf converts a finished process state, mapping death by signal to 128+signo.
func statusOf(state *os.ProcessState) ExitStatus {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Code: 128 + int(ws.Signal()), Signal: ws.Signal().String()}
	}
	return ExitStatus{Code: state.ExitCode()}
}

func orDefault(r io.Reader, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orDefaultWriter(w io.Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
