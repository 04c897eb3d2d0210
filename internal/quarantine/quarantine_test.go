package quarantine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NielsdaWheelz/governor/internal/exec"
)

type fakeRunner struct {
	calls  [][]string
	result exec.CmdResult
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (exec.CmdResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result, f.err
}

func TestXattrClearer_Darwin(t *testing.T) {
	r := &fakeRunner{}
	c := &XattrClearer{runner: r, goos: "darwin"}

	if err := c.Clear(context.Background(), "/opt/jobs/backup.sh"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(r.calls))
	}
	want := "xattr -d com.apple.quarantine /opt/jobs/backup.sh"
	if got := strings.Join(r.calls[0], " "); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestXattrClearer_NonDarwinIsNoop(t *testing.T) {
	r := &fakeRunner{}
	c := &XattrClearer{runner: r, goos: "linux"}

	if err := c.Clear(context.Background(), "/opt/jobs/backup.sh"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("expected no calls off darwin, got %v", r.calls)
	}
}

func TestXattrClearer_AttributeAbsent(t *testing.T) {
	r := &fakeRunner{result: exec.CmdResult{ExitCode: 1, Stderr: "xattr: /x: No such xattr: com.apple.quarantine\n"}}
	c := &XattrClearer{runner: r, goos: "darwin"}

	if err := c.Clear(context.Background(), "/x"); err != nil {
		t.Errorf("missing attribute should not be an error: %v", err)
	}
}

func TestXattrClearer_Failure(t *testing.T) {
	tests := []struct {
		name    string
		runner  *fakeRunner
		wantSub string
	}{
		{
			name:    "non-zero exit with stderr",
			runner:  &fakeRunner{result: exec.CmdResult{ExitCode: 1, Stderr: "xattr: [Errno 1] Operation not permitted"}},
			wantSub: "exit=1",
		},
		{
			name:    "non-zero exit without stderr",
			runner:  &fakeRunner{result: exec.CmdResult{ExitCode: 2}},
			wantSub: "exit=2",
		},
		{
			name:    "binary missing",
			runner:  &fakeRunner{err: errors.New("executable file not found")},
			wantSub: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &XattrClearer{runner: tt.runner, goos: "darwin"}
			err := c.Clear(context.Background(), "/x")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).Clear(context.Background(), "/x"); err != nil {
		t.Errorf("Nop.Clear returned %v", err)
	}
}
