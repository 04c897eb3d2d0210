// Package core provides foundational utilities for governor.
package core

import (
	"regexp"
	"strconv"

	"github.com/NielsdaWheelz/governor/internal/errors"
)

// Name validation constants.
const (
	NameMinLen = 1
	NameMaxLen = 64
)

// namePattern validates job names. The daemon-cli front end uses them in
// wrapper file names and launchd labels, so path separators, whitespace and
// a leading dot or hyphen are excluded.
// Pattern: an alphanumeric, then letters, digits, '.', '_' or '-'.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks if a job name meets all validation requirements.
// Returns nil if valid, or E_INVALID_NAME error with details.
//
// Validation rules:
//   - Length: 1-64 characters
//   - Must start with a letter or digit
//   - May contain only letters, digits, '.', '_' and '-'
func ValidateName(name string) error {
	if len(name) < NameMinLen {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"job name must not be empty",
			map[string]string{"job": name},
		)
	}
	if len(name) > NameMaxLen {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"job name must be at most "+strconv.Itoa(NameMaxLen)+" characters",
			map[string]string{"job": name, "max_length": strconv.Itoa(NameMaxLen)},
		)
	}
	if !namePattern.MatchString(name) {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"job name must start with a letter or digit and contain only letters, digits, '.', '_' and '-'",
			map[string]string{"job": name},
		)
	}
	return nil
}
