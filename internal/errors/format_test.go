package errors

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// TestPrintWithOptionsSignature is a compile-time contract test.
func TestPrintWithOptionsSignature(t *testing.T) {
	var fn = (func(io.Writer, error, PrintOptions))(PrintWithOptions)
	_ = fn
}

func TestFormatFirstLineAlwaysErrorCode(t *testing.T) {
	tests := []struct {
		name string
		code Code
		msg  string
	}{
		{"usage error", EUsage, "bad args"},
		{"not found", EJobNotFound, "job not found"},
		{"store corrupt", EStoreCorrupt, "allowlist is not valid json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := Format(New(tt.code, tt.msg), PrintOptions{})
			lines := strings.Split(output, "\n")

			expected := "error_code: " + string(tt.code)
			if lines[0] != expected {
				t.Errorf("first line = %q, want %q", lines[0], expected)
			}
			if lines[1] != tt.msg {
				t.Errorf("second line = %q, want %q", lines[1], tt.msg)
			}
		})
	}
}

func TestFormatIntegrityViolationBanner(t *testing.T) {
	err := NewWithDetails(EIntegrityViolation, "script modified", map[string]string{
		"job":  "backup",
		"path": "/opt/jobs/backup.sh",
	})
	output := Format(err, PrintOptions{})

	lines := strings.Split(output, "\n")
	if lines[0] != securityBanner {
		t.Errorf("first line = %q, want security banner", lines[0])
	}
	if lines[1] != "error_code: E_INTEGRITY_VIOLATION" {
		t.Errorf("second line = %q", lines[1])
	}
	if !strings.Contains(output, "try: review /opt/jobs/backup.sh, then: sudo governor register backup /opt/jobs/backup.sh") {
		t.Errorf("expected re-register suggestion, got:\n%s", output)
	}
}

func TestFormatContextKeysInOrder(t *testing.T) {
	err := NewWithDetails(EJobFailed, "job failed", map[string]string{
		"exit_code": "3",
		"path":      "/opt/jobs/backup.sh",
		"job":       "backup",
		"op":        "run",
	})
	output := Format(err, PrintOptions{})

	opIdx := strings.Index(output, "op: run")
	jobIdx := strings.Index(output, "job: backup")
	pathIdx := strings.Index(output, "path: /opt/jobs/backup.sh")
	exitIdx := strings.Index(output, "exit_code: 3")

	if opIdx < 0 || jobIdx < 0 || pathIdx < 0 || exitIdx < 0 {
		t.Fatalf("missing context keys in output:\n%s", output)
	}
	if !(opIdx < jobIdx && jobIdx < pathIdx && pathIdx < exitIdx) {
		t.Errorf("context keys out of order:\n%s", output)
	}
}

func TestFormatVerboseShowsExtraAndCause(t *testing.T) {
	err := WrapWithDetails(EIntegrityViolation, "script modified", errors.New("digest mismatch"), map[string]string{
		"job":           "backup",
		"expected_hash": "aaaa",
		"actual_hash":   "bbbb",
		"zeta":          "last",
	})

	quiet := Format(err, PrintOptions{})
	if strings.Contains(quiet, "expected_hash") {
		t.Errorf("default mode should not print expected_hash:\n%s", quiet)
	}

	verbose := Format(err, PrintOptions{Verbose: true})
	for _, want := range []string{"expected_hash: aaaa", "actual_hash: bbbb", "extra:\n  zeta: last", "cause: digest mismatch"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("verbose output missing %q:\n%s", want, verbose)
		}
	}
}

func TestFormatHintLine(t *testing.T) {
	err := NewWithDetails(EJobNotFound, "job \"x\" not found", map[string]string{
		"job":  "x",
		"hint": "register it first",
	})
	output := Format(err, PrintOptions{})

	if !strings.Contains(output, "\nhint: register it first\n") {
		t.Errorf("missing hint line:\n%s", output)
	}
	if !strings.HasSuffix(output, "try: governor list\n") {
		t.Errorf("missing try line:\n%s", output)
	}
}

func TestFormatNonGovernorError(t *testing.T) {
	output := Format(errors.New("plain"), PrintOptions{})
	if output != "plain\n" {
		t.Errorf("Format() = %q, want %q", output, "plain\n")
	}
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"trailing whitespace", "value \n", 10, "value"},
		{"crlf", "a\r\nb", 10, `a\nb`},
		{"truncate", "abcdef", 3, "abc…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeValue(tt.in, tt.max); got != tt.want {
				t.Errorf("sanitizeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintWithOptions(t *testing.T) {
	var buf bytes.Buffer
	PrintWithOptions(&buf, New(EUsage, "x"), PrintOptions{})
	if buf.String() != "error_code: E_USAGE\nx\n" {
		t.Errorf("PrintWithOptions() = %q", buf.String())
	}
}
