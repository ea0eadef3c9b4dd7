// Package atomicfile replaces files through a temp file and a rename in the
// same directory, so readers see either the old or the new content in full.
package atomicfile

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/filesystem"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
)

const defaultPerm fs.FileMode = 0644

// Writer performs atomic replacements on a filesystem.
type Writer struct {
	fs types.FS
}

// New returns a Writer backed by fsys.
func New(fsys types.FS) *Writer {
	return &Writer{fs: fsys}
}

// Write replaces path with content. The temp file lives next to path so
// the rename never crosses a filesystem boundary; it is removed on every
// failure path. The permission bits of an existing target are preserved.
func (w *Writer) Write(path string, content []byte) (err error) {
	logger := logging.GetLogger("atomicfile")

	dir := filepath.Dir(path)
	perm := defaultPerm
	if info, statErr := w.fs.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := w.fs.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	closed := false

	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = tmp.Close()
		}
		if rmErr := w.fs.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn().Err(rmErr).Str("temp", tmpName).Msg("Failed to remove temp file")
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write temp file %s", tmpName)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to sync temp file %s", tmpName)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to close temp file %s", tmpName)
	}
	if err = w.fs.Chmod(tmpName, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set permissions on %s", tmpName)
	}
	if err = w.fs.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", path)
	}

	if syncErr := filesystem.SyncDir(w.fs, dir); syncErr != nil {
		logger.Debug().Err(syncErr).Str("dir", dir).Msg("Directory sync failed, rename already done")
	}

	logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("File replaced atomically")
	return nil
}

// WriteString is Write for string content.
func (w *Writer) WriteString(path, content string) error {
	return w.Write(path, []byte(content))
}
