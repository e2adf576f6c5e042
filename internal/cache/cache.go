// Package cache stores rendered page fragments between runs.
//
// A Store lives in a directory derived from a SHA-256 of the repository root,
// holds one file per page mirroring the page's repo-relative path, and a
// sentinel file recording the render options fingerprint of the last run.
//
// Entries are validated by modification time against their source file and,
// once per run, by comparing the options fingerprint. A fingerprint mismatch
// marks every entry stale for the current run without deleting anything;
// entries are overwritten as pages get re-rendered.
//
// Concurrent runs against the same repository are not coordinated.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for cache operations.
var (
	ErrCacheIO    = errors.New("cache I/O failed")
	ErrCacheRead  = fmt.Errorf("%w: read", ErrCacheIO)
	ErrCacheWrite = fmt.Errorf("%w: write", ErrCacheIO)
	ErrInvalidKey = errors.New("invalid cache key")
)

// FingerprintFile is the sentinel holding the last-used options fingerprint.
const FingerprintFile = ".mdmerge-options"

// appDir is the directory created under the user cache directory.
const appDir = "go-mdmerge"

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// Store is a filesystem-backed render cache scoped to one repository root.
type Store struct {
	root    string
	invalid bool
}

// DefaultBaseDir returns the directory under which per-repository caches live.
// Falls back to the system temp directory when no user cache dir is available.
func DefaultBaseDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDir)
	}
	return filepath.Join(os.TempDir(), appDir)
}

// Key returns the directory name used for repoRoot: hex SHA-256 of its path.
func Key(repoRoot string) string {
	sum := sha256.Sum256([]byte(repoRoot))
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if needed) the cache for repoRoot under baseDir.
// An empty baseDir selects DefaultBaseDir(). Opening the same root twice
// yields the same location.
func Open(repoRoot, baseDir string) (*Store, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir()
	}
	root := filepath.Join(baseDir, Key(repoRoot))
	if err := os.MkdirAll(root, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating cache root %s: %v", ErrCacheWrite, root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the cache directory for this repository.
func (s *Store) Root() string {
	return s.root
}

// Invalidated reports whether the fingerprint check failed for this run.
func (s *Store) Invalidated() bool {
	return s.invalid
}

// CheckFingerprint compares fp with the fingerprint persisted by the previous
// run, then persists fp for the next one. It reports whether the cache is
// still valid. A missing sentinel counts as valid (first run).
// Call once per run, before any IsStale.
func (s *Store) CheckFingerprint(fp []byte) (bool, error) {
	path := filepath.Join(s.root, FingerprintFile)

	valid := true
	prev, err := os.ReadFile(path) // #nosec G304 -- path is inside the cache root
	switch {
	case err == nil:
		valid = bytes.Equal(prev, fp)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("%w: %s: %v", ErrCacheRead, FingerprintFile, err)
	}

	if err := os.WriteFile(path, fp, filePermissions); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCacheWrite, FingerprintFile, err)
	}

	if !valid {
		s.invalid = true
	}
	return valid, nil
}

// IsStale reports whether the entry for pageID must be rebuilt: it is missing,
// the run's fingerprint check failed, or it is older than sourceModTime.
func (s *Store) IsStale(pageID string, sourceModTime time.Time) bool {
	if s.invalid {
		return true
	}
	path, err := s.entryPath(pageID)
	if err != nil {
		return true
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return true
	}
	return info.ModTime().Before(sourceModTime)
}

// Read returns the cached fragment text for pageID.
func (s *Store) Read(pageID string) (string, error) {
	path, err := s.entryPath(pageID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheRead, err)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the cache root
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCacheRead, pageID, err)
	}
	return string(data), nil
}

// Write stores text as the fragment for pageID, replacing any prior entry.
func (s *Store) Write(pageID, text string) error {
	path, err := s.entryPath(pageID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheWrite, pageID, err)
	}
	if err := os.WriteFile(path, []byte(text), filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheWrite, pageID, err)
	}
	return nil
}

// entryPath maps a slash-separated page id to its file under the cache root.
func (s *Store) entryPath(pageID string) (string, error) {
	if pageID == "" || pageID == FingerprintFile {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, pageID)
	}
	rel := filepath.Clean(filepath.FromSlash(pageID))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes cache root", ErrInvalidKey, pageID)
	}
	return filepath.Join(s.root, rel), nil
}
