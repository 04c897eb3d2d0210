package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var out []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestAppendEvent(t *testing.T) {
	t.Run("creates file and directory lazily", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "events.jsonl")

		err := AppendEvent(path, Event{
			SchemaVersion: SchemaVersion,
			Timestamp:     "2026-01-10T12:00:00Z",
			InvocationID:  "inv-1",
			Event:         JobRegistered,
			Job:           "backup",
		})
		if err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.HasSuffix(string(content), "\n") {
			t.Error("expected line to end with newline")
		}
		if strings.Count(string(content), "\n") != 1 {
			t.Errorf("expected exactly one line, got %q", content)
		}
	})

	t.Run("appends multiple events", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "events.jsonl")
		for _, name := range []string{RunStarted, RunFinished} {
			if err := AppendEvent(path, Event{SchemaVersion: SchemaVersion, Event: name, Job: "backup"}); err != nil {
				t.Fatalf("AppendEvent() error = %v", err)
			}
		}

		got := readEvents(t, path)
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2", len(got))
		}
		if got[0].Event != RunStarted || got[1].Event != RunFinished {
			t.Errorf("events out of order: %+v", got)
		}
	})
}

func TestLog_SharesInvocationID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	fixed := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	log := NewLog(path)
	log.Now = func() time.Time { return fixed }

	if err := log.Append(RunStarted, "backup", StartedData("/opt/backup.sh", "alice", false)); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(RunFinished, "backup", FinishedData(0, "", 12)); err != nil {
		t.Fatal(err)
	}

	got := readEvents(t, path)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].InvocationID == "" || got[0].InvocationID != got[1].InvocationID {
		t.Errorf("invocation ids differ or are empty: %q vs %q", got[0].InvocationID, got[1].InvocationID)
	}
	if got[0].Timestamp != "2026-10-17T09:30:00Z" {
		t.Errorf("Timestamp = %q", got[0].Timestamp)
	}
	if got[0].SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %q", got[0].SchemaVersion)
	}
	if got[1].Data["exit_code"] != float64(0) {
		t.Errorf("exit_code = %v", got[1].Data["exit_code"])
	}
}

func TestLog_DistinctInvocations(t *testing.T) {
	a := NewLog("x")
	b := NewLog("x")
	if a.InvocationID == b.InvocationID {
		t.Error("each Log must get its own invocation id")
	}
}

func TestLog_Disabled(t *testing.T) {
	var nilLog *Log
	if err := nilLog.Append(RunStarted, "x", nil); err != nil {
		t.Errorf("nil Log should be a no-op, got %v", err)
	}
	if err := NewLog("").Append(RunStarted, "x", nil); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}

func TestRejectedData(t *testing.T) {
	data := RejectedData("/opt/backup.sh", "E_JOB_NOT_FOUND", "", "")
	if _, ok := data["expected_hash"]; ok {
		t.Error("expected_hash should be omitted when empty")
	}

	data = RejectedData("/opt/backup.sh", "E_INTEGRITY_VIOLATION", "aa", "bb")
	if data["expected_hash"] != "aa" || data["actual_hash"] != "bb" {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestQuarantineData_TruncatesReason(t *testing.T) {
	data := QuarantineData("/x", strings.Repeat("a", 600))
	if len(data["reason"].(string)) != 512 {
		t.Errorf("reason length = %d, want 512", len(data["reason"].(string)))
	}
}
