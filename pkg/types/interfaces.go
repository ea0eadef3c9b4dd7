package types

import (
	"io"
	"io/fs"
)

// File is the writable handle returned by FS.CreateTemp.
type File interface {
	io.Writer
	io.Closer
	Name() string
	Sync() error
}

// FS is the filesystem interface required for hostsub operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// CreateTemp creates a new temporary file in dir, see os.CreateTemp.
	CreateTemp(dir, pattern string) (File, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
}
