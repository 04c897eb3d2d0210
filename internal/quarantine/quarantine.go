// Package quarantine removes the macOS "downloaded from the internet" marker
// from job files before they are executed.
//
// Clearing is a courtesy that suppresses a Gatekeeper prompt; a job runs the
// same whether or not it succeeds, so callers log failures and move on.
package quarantine

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/NielsdaWheelz/governor/internal/exec"
)

// Attribute is the extended attribute macOS sets on downloaded files.
const Attribute = "com.apple.quarantine"

// maxStderrLen is the maximum stderr length to include in error messages.
const maxStderrLen = 1024

// Clearer removes the quarantine marker from a file.
type Clearer interface {
	Clear(ctx context.Context, path string) error
}

// XattrClearer shells out to xattr(1) via exec.CommandRunner.
type XattrClearer struct {
	runner exec.CommandRunner
	goos   string
}

// NewXattrClearer creates an XattrClearer for the running platform.
func NewXattrClearer(runner exec.CommandRunner) *XattrClearer {
	return &XattrClearer{runner: runner, goos: runtime.GOOS}
}

// Clear implements Clearer.
// Uses: xattr -d com.apple.quarantine <path>
// Off darwin there is no such marker and Clear is a no-op.
func (c *XattrClearer) Clear(ctx context.Context, path string) error {
	if c.goos != "darwin" {
		return nil
	}

	result, err := c.runner.Run(ctx, "xattr", "-d", Attribute, path)
	if err != nil {
		return fmt.Errorf("xattr: %w", err)
	}
	if result.ExitCode != 0 {
		stderr := strings.TrimSpace(result.Stderr)
		if len(stderr) > maxStderrLen {
			stderr = stderr[:maxStderrLen] + "..."
		}
		// xattr exits 1 when the attribute is simply not present.
		if strings.Contains(stderr, "No such xattr") {
			return nil
		}
		if stderr == "" {
			return fmt.Errorf("xattr -d %s failed (exit=%d)", Attribute, result.ExitCode)
		}
		return fmt.Errorf("xattr -d %s failed (exit=%d): %s", Attribute, result.ExitCode, stderr)
	}
	return nil
}

// Nop is a Clearer that does nothing. Used when clearing is disabled.
type Nop struct{}

// Clear implements Clearer.
func (Nop) Clear(context.Context, string) error { return nil }
