// Package errors provides error formatting for governor CLI output.
package errors

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// PrintOptions controls error output formatting.
type PrintOptions struct {
	// Verbose enables detailed error output with more context keys and the cause chain.
	Verbose bool
}

// Context key whitelist (default mode, in order)
var defaultContextKeys = []string{
	"op",
	"job",
	"path",
	"run_as",
	"exit_code",
	"store",
}

// Additional context keys for verbose mode
var verboseContextKeys = []string{
	"op",
	"job",
	"path",
	"requested_path",
	"run_as",
	"expected_hash",
	"actual_hash",
	"exit_code",
	"signal",
	"store",
	"config",
	"uid",
}

const (
	maxValueLen      = 256 // Max chars for single-line context values
	maxExtraValueLen = 128 // Max chars for extra section values
)

// securityBanner is printed ahead of integrity violations so the alarm is not
// mistaken for an ordinary failure in daemon logs.
const securityBanner = "!!! SECURITY ALERT !!!"

// Format formats an error for display without I/O.
// Returns the formatted string ready for printing.
func Format(err error, opts PrintOptions) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	ge, ok := AsGovernorError(err)
	if !ok {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	if ge.Code == EIntegrityViolation {
		sb.WriteString(securityBanner)
		sb.WriteString("\n")
	}

	sb.WriteString("error_code: ")
	sb.WriteString(string(ge.Code))
	sb.WriteString("\n")
	sb.WriteString(ge.Msg)
	sb.WriteString("\n")

	contextKeys := defaultContextKeys
	if opts.Verbose {
		contextKeys = verboseContextKeys
	}

	printedKeys := make(map[string]bool)
	var block strings.Builder
	for _, key := range contextKeys {
		val, ok := ge.Details[key]
		if !ok || val == "" {
			continue
		}
		printedKeys[key] = true
		block.WriteString(key)
		block.WriteString(": ")
		block.WriteString(sanitizeValue(val, maxValueLen))
		block.WriteString("\n")
	}

	if opts.Verbose {
		var extraKeys []string
		for key, val := range ge.Details {
			if !printedKeys[key] && key != "hint" && val != "" {
				extraKeys = append(extraKeys, key)
			}
		}
		if len(extraKeys) > 0 {
			sort.Strings(extraKeys)
			block.WriteString("\nextra:\n")
			for _, key := range extraKeys {
				block.WriteString("  ")
				block.WriteString(key)
				block.WriteString(": ")
				block.WriteString(sanitizeValue(ge.Details[key], maxExtraValueLen))
				block.WriteString("\n")
			}
		}
		if ge.Cause != nil {
			block.WriteString("cause: ")
			block.WriteString(sanitizeValue(ge.Cause.Error(), maxValueLen))
			block.WriteString("\n")
		}
	}

	if block.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(block.String())
	}

	if hint := ge.Details["hint"]; hint != "" {
		sb.WriteString("\nhint: ")
		sb.WriteString(hint)
		sb.WriteString("\n")
	}

	for _, try := range deriveTryLines(ge) {
		sb.WriteString("try: ")
		sb.WriteString(try)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintWithOptions writes a formatted error to w with the given options.
func PrintWithOptions(w io.Writer, err error, opts PrintOptions) {
	if err == nil {
		return
	}
	_, _ = io.WriteString(w, Format(err, opts))
}

// sanitizeValue sanitizes a value for single-line context output.
// - Trims trailing whitespace first
// - Normalizes CRLF to LF
// - Replaces newlines with literal \n
// - Truncates to maxLen chars
func sanitizeValue(val string, maxLen int) string {
	val = strings.TrimRight(val, " \t\r\n")
	val = strings.ReplaceAll(val, "\r\n", "\n")
	val = strings.ReplaceAll(val, "\n", "\\n")
	if len(val) > maxLen {
		return val[:maxLen] + "…"
	}
	return val
}

// deriveTryLines returns actionable suggestions based on error code.
func deriveTryLines(ge *GovernorError) []string {
	if ge == nil {
		return nil
	}

	job := ge.Details["job"]
	path := ge.Details["path"]

	var lines []string
	switch ge.Code {
	case EJobNotFound:
		lines = append(lines, "governor list")
	case EInsufficientPrivilege:
		if job != "" && ge.Details["op"] == "register" && ge.Details["requested_path"] != "" {
			lines = append(lines, fmt.Sprintf("sudo governor register %s %s", job, ge.Details["requested_path"]))
		}
	case EIntegrityViolation:
		// Re-pinning is only correct after the new content has been reviewed.
		if job != "" && path != "" {
			lines = append(lines, fmt.Sprintf("review %s, then: sudo governor register %s %s", path, job, path))
		}
	}
	return lines
}
