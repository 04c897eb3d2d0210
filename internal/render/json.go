package render

import (
	"encoding/json"
	"io"
)

// JSONSchemaVersion is the version of the --json output envelope.
const JSONSchemaVersion = "1.0"

// JSONEnvelope wraps machine-readable command output.
type JSONEnvelope struct {
	SchemaVersion string `json:"schema_version"`
	Data          any    `json:"data"`
}

// JobJSON is the --json shape of one job.
type JobJSON struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Hash  string `json:"hash"`
	RunAs string `json:"run_as"`
}

// WriteJSON writes data inside a versioned envelope, indented, with a trailing newline.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONEnvelope{SchemaVersion: JSONSchemaVersion, Data: data})
}
