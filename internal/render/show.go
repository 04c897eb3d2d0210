package render

import (
	"fmt"
	"io"
)

// ShowData holds one job record for human show output.
type ShowData struct {
	Name  string
	Path  string
	Hash  string
	RunAs string

	// Store is the allowlist the record was read from.
	Store string
}

// WriteShowHuman writes a single job record as key: value lines.
//
// Output format:
//
//	name: backup
//	path: /opt/jobs/backup.sh
//	hash: 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
//	run_as: alice
//	store: /var/lib/governor/allowlist.json
func WriteShowHuman(w io.Writer, data ShowData) error {
	lines := [][2]string{
		{"name", data.Name},
		{"path", data.Path},
		{"hash", data.Hash},
		{"run_as", data.RunAs},
	}
	if data.Store != "" {
		lines = append(lines, [2]string{"store", data.Store})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	return nil
}
