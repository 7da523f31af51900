// Package store manages the local data directory: one sub-directory per
// installed compiler version and a pointer file naming the global version.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blang/semver"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/fsutil"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// GlobalPointerFile is the name of the global version pointer inside the data directory.
const GlobalPointerFile = ".global-version"

// PointerParseError reports a global pointer whose content is not a version.
type PointerParseError struct {
	Content string
	Err     error
}

func (e *PointerParseError) Error() string {
	return fmt.Sprintf("parse global version %q: %v", e.Content, e.Err)
}

func (e *PointerParseError) Unwrap() error {
	return e.Err
}

// Store reads and writes the on-disk layout under a data directory.
type Store struct {
	dataDir string
}

// New returns a store rooted at dataDir. Nothing is created until a write.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DataDir returns the root directory of the store.
func (s *Store) DataDir() string {
	return s.dataDir
}

// EnsureDataDir creates the data directory if it does not exist.
func (s *Store) EnsureDataDir() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fsutil.Wrap("create data directory", s.dataDir, err)
	}
	return nil
}

// VersionDir returns the directory holding the binary of v.
func (s *Store) VersionDir(v semver.Version) string {
	return filepath.Join(s.dataDir, v.String())
}

// BinaryName returns the file name of the v binary on p.
func BinaryName(v semver.Version, p platform.Platform) string {
	name := "zksolc-" + v.String()
	if p.IsWindows() {
		name += ".exe"
	}
	return name
}

// BinaryPath returns the location of the v binary on p.
func (s *Store) BinaryPath(v semver.Version, p platform.Platform) string {
	return filepath.Join(s.VersionDir(v), BinaryName(v, p))
}

// IsInstalled reports whether a version directory exists for v.
func (s *Store) IsInstalled(v semver.Version) bool {
	info, err := os.Stat(s.VersionDir(v))
	return err == nil && info.IsDir()
}

// ListInstalled returns the installed versions in ascending order. Entries
// whose name is not a version (the pointer file, lock files, stray
// directories) are ignored. A missing data directory lists as empty.
func (s *Store) ListInstalled() ([]semver.Version, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fsutil.Wrap("read data directory", s.dataDir, err)
	}

	var versions []semver.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := semver.Parse(entry.Name())
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}

	semver.Sort(versions)
	return versions, nil
}

// RemoveVersion deletes the directory of v. Removing an absent version succeeds.
func (s *Store) RemoveVersion(v semver.Version) error {
	dir := s.VersionDir(v)
	if err := os.RemoveAll(dir); err != nil {
		return fsutil.Wrap("remove version directory", dir, err)
	}
	logger := logging.GetLogger("store")
	logger.Debug().Str("version", v.String()).Msg("Version removed")
	return nil
}

func (s *Store) pointerPath() string {
	return filepath.Join(s.dataDir, GlobalPointerFile)
}

// SetGlobal records v as the global version. The pointer is replaced
// atomically so concurrent readers never see a torn write.
func (s *Store) SetGlobal(v semver.Version) error {
	if err := s.EnsureDataDir(); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(s.pointerPath(), []byte(v.String()), 0o644); err != nil {
		return err
	}
	logger := logging.GetLogger("store")
	logger.Debug().Str("version", v.String()).Msg("Global version set")
	return nil
}

// GetGlobal returns the global version, or nil when none is set. A pointer
// that exists but holds only whitespace counts as unset.
func (s *Store) GetGlobal() (*semver.Version, error) {
	path := s.pointerPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fsutil.Wrap("read global version", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}

	v, err := semver.Parse(content)
	if err != nil {
		return nil, &PointerParseError{Content: content, Err: err}
	}
	return &v, nil
}

// UnsetGlobal clears the global version. Clearing an unset pointer succeeds.
func (s *Store) UnsetGlobal() error {
	path := s.pointerPath()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fsutil.Wrap("remove global version", path, err)
	}
	return nil
}
