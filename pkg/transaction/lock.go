package transaction

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// Locker serializes transactions across processes.
type Locker interface {
	// Lock blocks until the lock is held or timeout passes and returns
	// the function releasing it.
	Lock(timeout time.Duration) (unlock func(), err error)
}

// FileLocker is an advisory flock(2) on a file. The lock is released when
// the process exits, so a crash never leaves it stuck.
type FileLocker struct {
	path string
}

// NewFileLocker locks path, creating its directory when needed.
func NewFileLocker(path string) *FileLocker {
	return &FileLocker{path: path}
}

func (l *FileLocker) Lock(timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create lock directory for %s", l.path)
	}

	fl := flock.New(l.path)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil && ctx.Err() == nil {
		return nil, errors.Wrapf(err, errors.ErrLocked, "failed to lock %s", l.path)
	}
	if !locked {
		return nil, errors.Newf(errors.ErrLocked, "another hostsub process holds %s", l.path).
			WithDetail("timeout", timeout.String())
	}

	return func() {
		_ = fl.Unlock()
	}, nil
}

// NopLocker does not lock. For in-memory filesystems where no other
// process can reach the files.
type NopLocker struct{}

func (NopLocker) Lock(time.Duration) (func(), error) {
	return func() {}, nil
}
