// Package events provides the governor audit log.
// Events are stored in an append-only JSONL file next to the allowlist.
package events

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the version of the Event line format.
const SchemaVersion = "1.0"

// Event names.
const (
	JobRegistered         = "job_registered"
	JobUnregistered       = "job_unregistered"
	RunRejected           = "run_rejected"
	RunStarted            = "run_started"
	RunFinished           = "run_finished"
	QuarantineClearFailed = "quarantine_clear_failed"
	CheckPassed           = "check_passed"
	CheckFailed           = "check_failed"
)

// Event represents a single line in the audit log.
// This is the public contract for the audit file format.
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	Timestamp     string         `json:"timestamp"` // RFC3339
	InvocationID  string         `json:"invocation_id"`
	Event         string         `json:"event"`
	Job           string         `json:"job"`
	Data          map[string]any `json:"data,omitempty"`
}

// AppendEvent appends a single event to the JSONL file at path.
// The file and its directory are created lazily.
func AppendEvent(path string, e Event) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// Log appends events for one governor invocation.
// Every event written through the same Log shares an invocation id.
//
// Best-effort: errors are returned but callers should report them as
// warnings and continue with the main operation.
type Log struct {
	Path         string
	InvocationID string
	Now          func() time.Time
}

// NewLog creates a Log writing to path with a fresh invocation id.
// An empty path disables the log.
func NewLog(path string) *Log {
	return &Log{
		Path:         path,
		InvocationID: uuid.NewString(),
		Now:          time.Now,
	}
}

// Append writes one event. A nil Log or empty path is a no-op.
func (l *Log) Append(event, job string, data map[string]any) error {
	if l == nil || l.Path == "" {
		return nil
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return AppendEvent(l.Path, Event{
		SchemaVersion: SchemaVersion,
		Timestamp:     now().UTC().Format(time.RFC3339),
		InvocationID:  l.InvocationID,
		Event:         event,
		Job:           job,
		Data:          data,
	})
}

// RegisteredData returns the data map for a job_registered event.
func RegisteredData(path, fingerprint, runAs string, replaced bool) map[string]any {
	return map[string]any{
		"path":     path,
		"hash":     fingerprint,
		"run_as":   runAs,
		"replaced": replaced,
	}
}

// RejectedData returns the data map for a run_rejected or check_failed event.
func RejectedData(path, errorCode, expected, actual string) map[string]any {
	data := map[string]any{
		"path":       path,
		"error_code": errorCode,
	}
	if expected != "" {
		data["expected_hash"] = expected
	}
	if actual != "" {
		data["actual_hash"] = actual
	}
	return data
}

// StartedData returns the data map for a run_started event.
func StartedData(path, runAs string, enforced bool) map[string]any {
	return map[string]any{
		"path":            path,
		"run_as":          runAs,
		"run_as_enforced": enforced,
	}
}

// FinishedData returns the data map for a run_finished event.
func FinishedData(exitCode int, signal string, durationMS int64) map[string]any {
	data := map[string]any{
		"exit_code":   exitCode,
		"duration_ms": durationMS,
	}
	if signal != "" {
		data["signal"] = signal
	}
	return data
}

// QuarantineData returns the data map for a quarantine_clear_failed event.
// Reason strings are bounded to 512 bytes.
func QuarantineData(path, reason string) map[string]any {
	const maxReasonLen = 512
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
	}
	return map[string]any{
		"path":   path,
		"reason": reason,
	}
}
