// Package exec wraps process execution for governor.
//
// CommandRunner runs short helper utilities and captures their output.
// Spawner runs an allowlisted job with inherited stdio and reports its exit status.
package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	osexec "os/exec"
)

// CmdResult holds the outcome of a helper command that ran to completion.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs external helper commands.
// A non-zero exit is reported in CmdResult.ExitCode, not as an error;
// the error is reserved for failures to start (binary missing, ctx canceled).
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CmdResult, error)
}

// RealRunner is the os/exec backed CommandRunner.
type RealRunner struct{}

// NewRealRunner creates a CommandRunner that executes real processes.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run implements CommandRunner.
func (r *RealRunner) Run(ctx context.Context, name string, args ...string) (CmdResult, error) {
	cmd := osexec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *osexec.ExitError
		if stderrors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}
