// Package store provides persistence for the job allowlist.
//
// The allowlist is a single JSON document read in full at the start of every
// invocation and written in full by registration. Writes go to a sibling temp
// file that is then renamed over the target in one step, so a concurrent
// reader sees either the old or the new document, never a torn or missing
// one. There is no locking: the last writer wins.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/NielsdaWheelz/governor/internal/errors"
)

// FileMode is the permission of the persisted allowlist.
const FileMode = 0o644

// Store handles persistence of the allowlist document.
type Store struct {
	FS   afs.Service // storage backend; local paths in production, temp dirs in tests
	Path string      // absolute path of allowlist.json
}

// NewStore creates a new Store for the allowlist at path.
func NewStore(fs afs.Service, path string) *Store {
	return &Store{FS: fs, Path: path}
}

// Load reads the allowlist.
// A missing document is the valid first-run state and yields an empty allowlist.
// A document that exists but does not decode into the expected shape
// returns E_STORE_CORRUPT.
func (s *Store) Load(ctx context.Context) (*Allowlist, error) {
	exists, err := s.FS.Exists(ctx, s.Path)
	if err != nil {
		return nil, s.corrupt("failed to stat allowlist", err)
	}
	if !exists {
		return NewAllowlist(), nil
	}

	data, err := s.FS.DownloadWithURL(ctx, s.Path)
	if err != nil {
		return nil, s.corrupt("failed to read allowlist", err)
	}

	allowlist, err := Decode(data)
	if err != nil {
		return nil, s.corrupt("allowlist does not match the expected schema", err)
	}
	return allowlist, nil
}

// Save writes the full allowlist, replacing prior content.
// Missing parent directories are created first.
func (s *Store) Save(ctx context.Context, allowlist *Allowlist) error {
	if allowlist == nil {
		allowlist = NewAllowlist()
	}

	data, err := Encode(allowlist)
	if err != nil {
		return s.writeError("failed to encode allowlist", err)
	}

	dir := filepath.Dir(s.Path)
	exists, err := s.FS.Exists(ctx, dir)
	if err != nil {
		return s.writeError("failed to stat allowlist directory", err)
	}
	if !exists {
		if err := s.FS.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return s.writeError("failed to create allowlist directory", err)
		}
	}

	tmp := TempPath(s.Path)
	if err := s.FS.Upload(ctx, tmp, FileMode, bytes.NewReader(data)); err != nil {
		_ = s.FS.Delete(ctx, tmp)
		return s.writeError("failed to write allowlist", err)
	}
	// Not afs Move: it removes the destination first, so readers could find no allowlist.
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = s.FS.Delete(ctx, tmp)
		return s.writeError("failed to replace allowlist", err)
	}
	return nil
}

// TempPath returns a unique sibling of path for staging a replacement.
// The name keeps path's extension and is hidden from directory listings.
func TempPath(path string) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s", uuid.NewString(), filepath.Base(path)))
}

// Decode parses an allowlist document strictly.
// Unknown fields, trailing data, and records without path or hash are rejected.
func Decode(data []byte) (*Allowlist, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var allowlist Allowlist
	if err := dec.Decode(&allowlist); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing data after allowlist document")
	}

	if allowlist.Scripts == nil {
		allowlist.Scripts = map[string]Job{}
	}
	for name, job := range allowlist.Scripts {
		if job.Path == "" {
			return nil, fmt.Errorf("job %q has an empty path", name)
		}
		if job.Fingerprint == "" {
			return nil, fmt.Errorf("job %q has an empty hash", name)
		}
	}
	return &allowlist, nil
}

// Encode renders the allowlist as indented JSON with a trailing newline.
func Encode(allowlist *Allowlist) ([]byte, error) {
	data, err := json.MarshalIndent(allowlist, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *Store) corrupt(msg string, err error) error {
	return errors.WrapWithDetails(errors.EStoreCorrupt, msg+": "+err.Error(), err,
		map[string]string{
			"store": s.Path,
			"hint":  "restore " + s.Path + " from a backup, or move it aside and re-register every job",
		})
}

func (s *Store) writeError(msg string, err error) error {
	return errors.WrapWithDetails(errors.EStoreWrite, msg+": "+err.Error(), err,
		map[string]string{"store": s.Path})
}
