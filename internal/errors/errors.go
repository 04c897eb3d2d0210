// Package errors defines the stable error code system for governor.
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract; wrappers match on these strings.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Configuration
	EInvalidConfig Code = "E_INVALID_CONFIG"

	// Authorization gate
	EInsufficientPrivilege Code = "E_INSUFFICIENT_PRIVILEGE" // register/unregister without root

	// Filesystem access
	EPathResolution Code = "E_PATH_RESOLUTION" // target missing, dangling symlink, or not a regular file
	EIO             Code = "E_IO"              // target could not be read while digesting

	// Allowlist persistence
	EStoreCorrupt Code = "E_STORE_CORRUPT" // allowlist exists but cannot be parsed
	EStoreWrite   Code = "E_STORE_WRITE"   // allowlist could not be written

	// Lookup and verification
	EInvalidName        Code = "E_INVALID_NAME"        // job name does not match validation rules
	EJobNotFound        Code = "E_JOB_NOT_FOUND"       // job not present in the allowlist
	EIntegrityViolation Code = "E_INTEGRITY_VIOLATION" // content no longer matches the pinned fingerprint

	// Execution
	EExecutionFailed Code = "E_EXECUTION_FAILED" // job could not be started
	EJobFailed       Code = "E_JOB_FAILED"       // job ran and exited non-zero
)

// exitCodes maps pre-execution failures to process exit codes that stay clear
// of the low codes jobs commonly return. E_JOB_FAILED is absent on purpose:
// it carries the job's own exit code via ExitCodeError.
var exitCodes = map[Code]int{
	EUsage:                 2,
	EInvalidName:           2,
	EIntegrityViolation:    65,
	EPathResolution:        66,
	EJobNotFound:           67,
	EInternal:              70,
	EStoreWrite:            73,
	EIO:                    74,
	EInsufficientPrivilege: 77,
	EStoreCorrupt:          78,
	EInvalidConfig:         78,
	EExecutionFailed:       126,
}

// GovernorError is the standard error type for governor errors.
type GovernorError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *GovernorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *GovernorError) Unwrap() error {
	return e.Cause
}

// ExitCodeError wraps an error with an explicit process exit code.
type ExitCodeError struct {
	Err  error
	Code int
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func (e *ExitCodeError) ExitCode() int {
	return e.Code
}

// WithExitCode wraps err with a specific process exit code.
func WithExitCode(err error, code int) error {
	return &ExitCodeError{Err: err, Code: code}
}

// New creates a new GovernorError with the given code and message.
func New(code Code, msg string) error {
	return &GovernorError{Code: code, Msg: msg}
}

// NewWithDetails creates a new GovernorError with code, message, and details.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &GovernorError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new GovernorError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &GovernorError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new GovernorError wrapping an underlying error with details.
// Details map is copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &GovernorError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// WithDetails returns err with extra merged into its details.
// Keys already present on err win. Errors that are not GovernorErrors are returned unchanged.
func WithDetails(err error, extra map[string]string) error {
	var ge *GovernorError
	if !errors.As(err, &ge) {
		return err
	}
	details := copyDetails(extra)
	if details == nil {
		details = make(map[string]string, len(ge.Details))
	}
	for k, v := range ge.Details {
		details[k] = v
	}
	return &GovernorError{Code: ge.Code, Msg: ge.Msg, Cause: ge.Cause, Details: copyDetails(details)}
}

// JobFailed reports a job that ran and exited with a non-zero status.
// The returned error makes the process exit with the job's own code.
// extra is merged into the error details.
func JobFailed(name string, exitCode int, extra map[string]string) error {
	details := map[string]string{"job": name, "exit_code": fmt.Sprint(exitCode)}
	for k, v := range extra {
		details[k] = v
	}
	err := &GovernorError{
		Code:    EJobFailed,
		Msg:     fmt.Sprintf("job %q failed with exit code %d", name, exitCode),
		Details: details,
	}
	return WithExitCode(err, exitCode)
}

// GetCode extracts the error code from an error, or empty string if not a GovernorError.
func GetCode(err error) Code {
	var ge *GovernorError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// AsGovernorError returns (*GovernorError, true) if err is or wraps a GovernorError.
func AsGovernorError(err error) (*GovernorError, bool) {
	var ge *GovernorError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the process exit code for an error.
// Returns 0 if err is nil, an explicit ExitCodeError code if present,
// the mapped code for known error codes, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if code, ok := exitCodes[GetCode(err)]; ok {
		return code
	}
	return 1
}
