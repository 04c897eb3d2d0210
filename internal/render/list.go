// Package render provides output formatting for governor commands.
package render

import (
	"fmt"
	"io"
	"strings"
)

// HashDisplayLen is how many fingerprint characters the list table shows.
const HashDisplayLen = 12

// PathMaxLen is the maximum display length for a path in the list table.
const PathMaxLen = 80

// JobRow holds one registered job for display.
type JobRow struct {
	Name  string
	RunAs string
	Hash  string
	Path  string
}

// WriteListHuman writes registered jobs as whitespace-aligned columns.
// Rows are written in the order given.
func WriteListHuman(w io.Writer, rows []JobRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no jobs registered")
		return err
	}

	widths := columnWidths(rows)
	if _, err := fmt.Fprintln(w, formatRow(widths, "NAME", "RUN_AS", "HASH", "PATH")); err != nil {
		return err
	}
	for _, row := range rows {
		line := formatRow(widths, row.Name, row.RunAs, ShortHash(row.Hash), TruncateForDisplay(row.Path, PathMaxLen))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type colWidths struct {
	name  int
	runAs int
	hash  int
}

func columnWidths(rows []JobRow) colWidths {
	widths := colWidths{
		name:  len("NAME"),
		runAs: len("RUN_AS"),
		hash:  len("HASH"),
	}
	for _, row := range rows {
		widths.name = max(widths.name, len(row.Name))
		widths.runAs = max(widths.runAs, len(row.RunAs))
		widths.hash = max(widths.hash, len(ShortHash(row.Hash)))
	}
	return widths
}

func formatRow(widths colWidths, name, runAs, hash, path string) string {
	line := fmt.Sprintf("%-*s  %-*s  %-*s  %s",
		widths.name, name,
		widths.runAs, runAs,
		widths.hash, hash,
		path,
	)
	return strings.TrimRight(line, " ")
}

// ShortHash returns the leading HashDisplayLen characters of a fingerprint.
func ShortHash(hash string) string {
	if len(hash) <= HashDisplayLen {
		return hash
	}
	return hash[:HashDisplayLen]
}

// TruncateForDisplay safely truncates s to maxLen runes, keeping the tail.
// Paths are more recognizable by their file name than their prefix.
func TruncateForDisplay(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return "…" + string(runes[len(runes)-maxLen+1:])
}
