// Package lock serializes installs of the same compiler version across
// processes with an OS advisory lock on <dataDir>/.lock-zksolc-<version>.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/fsutil"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
)

// PollInterval is how often a waiting Acquire retries a held lock.
const PollInterval = 50 * time.Millisecond

// ErrLockTimeout is returned (wrapping the context error) when the context
// ends before the lock could be taken.
var ErrLockTimeout = errors.New("timed out waiting for install lock")

// errLocked is returned by tryLock when another holder owns the lock.
var errLocked = errors.New("lock held")

// Lock is a held install lock.
type Lock struct {
	path  string
	file  *os.File
	owner string
}

// Path returns the location of the lock file for version under dataDir.
func Path(dataDir, version string) string {
	return filepath.Join(dataDir, ".lock-zksolc-"+version)
}

// Acquire blocks until the install lock for version is held or ctx is done.
// The lock file is created if needed and carries the holder's pid, timestamp
// and owner token. A process that dies loses the lock with its descriptors,
// so there are no stale locks to clean up.
func Acquire(ctx context.Context, dataDir, version string) (*Lock, error) {
	logger := logging.GetLogger("lock")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fsutil.Wrap("create data directory", dataDir, err)
	}

	lockPath := Path(dataDir, version)
	start := time.Now()
	waiting := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrLockTimeout, lockPath, err)
		}

		file, err := open(lockPath)
		if err != nil {
			return nil, err
		}

		if err := tryLock(file); err != nil {
			file.Close()
			if !errors.Is(err, errLocked) {
				return nil, fsutil.Wrap("lock", lockPath, err)
			}
			if !waiting {
				logger.Debug().Str("path", lockPath).Msg("Install lock held, waiting")
				waiting = true
			}
			if err := sleep(ctx, PollInterval); err != nil {
				return nil, fmt.Errorf("%w %s: %w", ErrLockTimeout, lockPath, err)
			}
			continue
		}

		// The previous holder may have removed the file between our open and
		// lock. Holding a lock on an unlinked inode excludes nobody, so retry.
		current, err := os.Stat(lockPath)
		locked, statErr := file.Stat()
		if err != nil || statErr != nil || !os.SameFile(current, locked) {
			unlock(file)
			file.Close()
			continue
		}

		l := &Lock{path: lockPath, file: file, owner: uuid.NewString()}
		if err := l.writeMetadata(); err != nil {
			l.Release()
			return nil, err
		}

		logger.Debug().
			Str("path", lockPath).
			Dur("waited", time.Since(start)).
			Msg("Install lock acquired")
		return l, nil
	}
}

func open(lockPath string) (*os.File, error) {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fsutil.Wrap("open lock file", lockPath, err)
	}
	return file, nil
}

func (l *Lock) writeMetadata() error {
	data := fmt.Sprintf("pid=%d\ntimestamp=%s\nowner=%s\n",
		os.Getpid(), time.Now().UTC().Format(time.RFC3339), l.owner)

	if err := l.file.Truncate(0); err != nil {
		return fsutil.Wrap("truncate lock file", l.path, err)
	}
	if _, err := l.file.WriteAt([]byte(data), 0); err != nil {
		return fsutil.Wrap("write lock file", l.path, err)
	}
	if err := l.file.Sync(); err != nil {
		return fsutil.Wrap("sync lock file", l.path, err)
	}
	return nil
}

// Owner returns the token written into the lock file by this holder.
func (l *Lock) Owner() string {
	return l.owner
}

// Release removes the lock file and drops the lock. It is safe to call more
// than once.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	// Remove while still holding the lock so a waiter that opened the old
	// inode notices the swap and retries on a fresh file. Windows refuses to
	// delete an open file, so try again once the handle is closed.
	err := os.Remove(l.path)

	unlock(l.file)
	l.file.Close()
	l.file = nil

	if err != nil && !os.IsNotExist(err) {
		if err = os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fsutil.Wrap("remove lock file", l.path, err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
