// pkg/testutil/failing_fs.go
// DEPENDENCIES: pkg/types
// PURPOSE: Inject filesystem failures at chosen operations

package testutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/hostsub/pkg/types"
)

// ErrInjected is returned by FailingFS for every injected failure.
var ErrInjected = errors.New("injected failure")

// Op names accepted by FailingFS.FailOn.
const (
	OpReadFile   = "ReadFile"
	OpWriteFile  = "WriteFile"
	OpCreateTemp = "CreateTemp"
	OpTempWrite  = "TempWrite"
	OpTempSync   = "TempSync"
	OpRename     = "Rename"
	OpMkdirAll   = "MkdirAll"
	OpReadDir    = "ReadDir"
	OpChmod      = "Chmod"
)

type failRule struct {
	op     string
	match  string
	after  int // number of matching calls that still succeed
	failed bool
}

// FailingFS wraps a types.FS and fails selected operations.
type FailingFS struct {
	types.FS

	mu    sync.Mutex
	rules []*failRule
	calls map[string]int
}

// NewFailingFS wraps inner.
func NewFailingFS(inner types.FS) *FailingFS {
	return &FailingFS{FS: inner, calls: make(map[string]int)}
}

// FailOn makes every call to op on a path containing match fail.
// An empty match matches every path.
func (f *FailingFS) FailOn(op, match string) *FailingFS {
	return f.FailAfter(op, match, 0)
}

// FailAfter lets the first n matching calls succeed and fails the rest.
func (f *FailingFS) FailAfter(op, match string, n int) *FailingFS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &failRule{op: op, match: match, after: n})
	return f
}

// Reset removes all failure rules.
func (f *FailingFS) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = nil
}

// Calls returns how many times op was invoked.
func (f *FailingFS) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Failed reports whether any rule for op fired.
func (f *FailingFS) Failed(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.op == op && r.failed {
			return true
		}
	}
	return false
}

func (f *FailingFS) check(op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	for _, r := range f.rules {
		if r.op != op || !strings.Contains(path, r.match) {
			continue
		}
		if r.after > 0 {
			r.after--
			continue
		}
		r.failed = true
		return &fs.PathError{Op: op, Path: path, Err: ErrInjected}
	}
	return nil
}

func (f *FailingFS) ReadFile(name string) ([]byte, error) {
	if err := f.check(OpReadFile, name); err != nil {
		return nil, err
	}
	return f.FS.ReadFile(name)
}

func (f *FailingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.check(OpWriteFile, name); err != nil {
		return err
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FailingFS) Chmod(name string, mode fs.FileMode) error {
	if err := f.check(OpChmod, name); err != nil {
		return err
	}
	return f.FS.Chmod(name, mode)
}

func (f *FailingFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}
	return f.FS.MkdirAll(path, perm)
}

func (f *FailingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check(OpReadDir, name); err != nil {
		return nil, err
	}
	return f.FS.ReadDir(name)
}

func (f *FailingFS) Rename(oldpath, newpath string) error {
	if err := f.check(OpRename, newpath); err != nil {
		return err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FailingFS) CreateTemp(dir, pattern string) (types.File, error) {
	if err := f.check(OpCreateTemp, filepath.Join(dir, pattern)); err != nil {
		return nil, err
	}
	file, err := f.FS.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return &failingFile{File: file, owner: f}, nil
}

type failingFile struct {
	types.File
	owner *FailingFS
}

func (ff *failingFile) Write(p []byte) (int, error) {
	if err := ff.owner.check(OpTempWrite, ff.Name()); err != nil {
		return 0, err
	}
	return ff.File.Write(p)
}

func (ff *failingFile) Sync() error {
	if err := ff.owner.check(OpTempSync, ff.Name()); err != nil {
		return err
	}
	return ff.File.Sync()
}
