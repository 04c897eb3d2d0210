// Package commands implements governor CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/viant/afs"

	"github.com/NielsdaWheelz/governor/internal/config"
	"github.com/NielsdaWheelz/governor/internal/events"
	"github.com/NielsdaWheelz/governor/internal/exec"
	"github.com/NielsdaWheelz/governor/internal/executor"
	"github.com/NielsdaWheelz/governor/internal/privilege"
	"github.com/NielsdaWheelz/governor/internal/quarantine"
	"github.com/NielsdaWheelz/governor/internal/registrar"
	"github.com/NielsdaWheelz/governor/internal/store"
)

// Runtime is the per-invocation wiring shared by every command.
// Tests replace individual fields; NewRuntime fills them for production.
type Runtime struct {
	Config   config.Config
	FS       afs.Service
	Identity privilege.Identity
	Events   *events.Log
	Spawner  exec.Spawner
	Clearer  quarantine.Clearer
	Stdin    io.Reader
}

// NewRuntime wires the real filesystem, process identity and spawner for cfg.
func NewRuntime(cfg config.Config) *Runtime {
	var clearer quarantine.Clearer = quarantine.Nop{}
	if cfg.Quarantine {
		clearer = quarantine.NewXattrClearer(exec.NewRealRunner())
	}
	return &Runtime{
		Config:   cfg,
		FS:       afs.New(),
		Identity: privilege.OSIdentity{},
		Events:   events.NewLog(cfg.AuditLogPath),
		Spawner:  exec.NewProcessSpawner(),
		Clearer:  clearer,
		Stdin:    os.Stdin,
	}
}

// Store returns the allowlist store for the configured path.
func (rt *Runtime) Store() *store.Store {
	return store.NewStore(rt.FS, rt.Config.AllowlistPath)
}

// Registrar returns a registrar bound to the runtime.
func (rt *Runtime) Registrar() *registrar.Service {
	return registrar.NewService(rt.Store(), rt.Events)
}

// Executor returns an executor bound to the runtime that hands the job
// stdout and stderr.
func (rt *Runtime) Executor(stdout, stderr io.Writer) *executor.Service {
	svc := executor.NewService(rt.Store(), rt.Spawner, rt.Clearer, rt.Events)
	svc.EnforceRunAs = rt.Config.EnforceRunAs
	svc.Identity = rt.Identity
	svc.Stdin = rt.Stdin
	svc.Stdout = stdout
	svc.Stderr = stderr
	svc.Warn = stderr
	return svc
}

// warnEvents reports audit append failures. The main operation already succeeded.
func warnEvents(stderr io.Writer, errs []string) {
	for _, e := range errs {
		warnf(stderr, "audit log: %s", e)
	}
}

func warnf(stderr io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(stderr, "warning: "+format+"\n", args...)
}
