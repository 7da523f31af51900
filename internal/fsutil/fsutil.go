// Package fsutil holds the local filesystem primitives shared by the installer
// and the version store: atomic whole-file replacement and the IoError type
// that wraps every local filesystem failure.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// IoError reports a local filesystem failure (permission, disk full, missing directory).
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *IoError unless it is nil or already one.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IoError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IoError{Op: op, Path: path, Err: err}
}

// TempPath returns a unique sibling path of target for staging writes.
func TempPath(target string) string {
	return filepath.Join(filepath.Dir(target), fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), uuid.NewString()))
}

// WriteFileAtomic writes data to path so that readers observe either the old
// content or the complete new content, never a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic stages the output of write in a temp file next to path, syncs it,
// applies perm and renames it onto path. The temp file is removed on failure.
func WriteAtomic(path string, perm os.FileMode, write func(w io.Writer) error) error {
	tmpPath := TempPath(path)
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return Wrap("create temp file", tmpPath, err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if err := write(tmpFile); err != nil {
		return Wrap("write temp file", tmpPath, err)
	}

	if err := tmpFile.Sync(); err != nil {
		return Wrap("sync temp file", tmpPath, err)
	}

	// OpenFile honours the umask; set the mode explicitly
	if err := tmpFile.Chmod(perm); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		return Wrap("chmod temp file", tmpPath, err)
	}

	if err := tmpFile.Close(); err != nil {
		return Wrap("close temp file", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return Wrap("rename temp file", path, err)
	}

	cleanupNeeded = false
	return nil
}

// IsDirEmpty reports whether dir exists and has no entries.
func IsDirEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
