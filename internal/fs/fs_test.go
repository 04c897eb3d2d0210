package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCanonicalize_RegularFile(t *testing.T) {
	tmpDir := resolvedTempDir(t)
	target := filepath.Join(tmpDir, "jobs", "backup.sh")
	writeFile(t, target, "#!/bin/sh\n")

	got, err := Canonicalize(target)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if got != target {
		t.Errorf("Canonicalize() = %q, want %q", got, target)
	}
}

func TestCanonicalize_DotSegments(t *testing.T) {
	tmpDir := resolvedTempDir(t)
	target := filepath.Join(tmpDir, "jobs", "backup.sh")
	writeFile(t, target, "#!/bin/sh\n")
	if err := os.MkdirAll(filepath.Join(tmpDir, "other"), 0755); err != nil {
		t.Fatal(err)
	}

	messy := tmpDir + "/other/../jobs/./backup.sh"
	got, err := Canonicalize(messy)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if got != target {
		t.Errorf("Canonicalize(%q) = %q, want %q", messy, got, target)
	}
}

func TestCanonicalize_FollowsSymlink(t *testing.T) {
	tmpDir := resolvedTempDir(t)
	target := filepath.Join(tmpDir, "real", "backup.sh")
	writeFile(t, target, "#!/bin/sh\n")

	link := filepath.Join(tmpDir, "link.sh")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	got, err := Canonicalize(link)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if got != target {
		t.Errorf("Canonicalize() = %q, want %q", got, target)
	}
}

func TestCanonicalize_Relative(t *testing.T) {
	tmpDir := resolvedTempDir(t)
	target := filepath.Join(tmpDir, "backup.sh")
	writeFile(t, target, "#!/bin/sh\n")

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore cwd: %v", err)
		}
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}

	got, err := Canonicalize("backup.sh")
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if got != target {
		t.Errorf("Canonicalize() = %q, want %q", got, target)
	}
}

func TestCanonicalize_Missing(t *testing.T) {
	_, err := Canonicalize(filepath.Join(t.TempDir(), "nope.sh"))
	if !os.IsNotExist(err) && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestCanonicalize_DanglingSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	link := filepath.Join(tmpDir, "dangling.sh")
	if err := os.Symlink(filepath.Join(tmpDir, "gone.sh"), link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	_, err := Canonicalize(link)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error for dangling symlink, got %v", err)
	}
}

func TestCanonicalize_Directory(t *testing.T) {
	_, err := Canonicalize(t.TempDir())
	var nrf *ErrNotRegularFile
	if !errors.As(err, &nrf) {
		t.Fatalf("expected ErrNotRegularFile, got %T: %v", err, err)
	}
	if !strings.Contains(nrf.Error(), "not a regular file") {
		t.Errorf("unexpected message: %v", nrf)
	}
}

func TestDigestFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "job.sh")
	content := "#!/bin/sh\necho hello\n"
	writeFile(t, path, content)

	got, err := DigestFile(path)
	if err != nil {
		t.Fatalf("DigestFile failed: %v", err)
	}
	if got != sha256Hex(content) {
		t.Errorf("DigestFile() = %q, want %q", got, sha256Hex(content))
	}
}

func TestDigestFile_SingleByteChange(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "job.sh")
	writeFile(t, path, "exit 0\n")
	before, err := DigestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "exit 1\n")
	after, err := DigestFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if DigestEqual(before, after) {
		t.Error("digests should differ after a single byte change")
	}
}

func TestDigestFile_Missing(t *testing.T) {
	_, err := DigestFile(filepath.Join(t.TempDir(), "missing"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestDigest_Empty(t *testing.T) {
	got, err := Digest(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != emptySHA {
		t.Errorf("Digest(\"\") = %q, want %q", got, emptySHA)
	}
}

func TestDigestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "abc", "abc", true},
		{"different", "abc", "abd", false},
		{"different length", "abc", "abcd", false},
		{"case differs", "ABC", "abc", false},
		{"both empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DigestEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("DigestEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// resolvedTempDir returns t.TempDir() with symlinks resolved (macOS /var -> /private/var).
func resolvedTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return dir
}
