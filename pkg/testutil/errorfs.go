package testutil

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/fnassist/pkg/types"
)

// ErrorFS wraps a types.FS and fails operations on chosen paths
type ErrorFS struct {
	types.FS

	mu   sync.RWMutex
	errs map[string]error
}

// NewErrorFS wraps inner
func NewErrorFS(inner types.FS) *ErrorFS {
	return &ErrorFS{FS: inner, errs: make(map[string]error)}
}

// WithError makes every operation on path return err
func (e *ErrorFS) WithError(path string, err error) *ErrorFS {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[filepath.Clean(path)] = err
	return e
}

func (e *ErrorFS) check(op, path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err, ok := e.errs[filepath.Clean(path)]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

func (e *ErrorFS) Stat(name string) (fs.FileInfo, error) {
	if err := e.check("stat", name); err != nil {
		return nil, err
	}
	return e.FS.Stat(name)
}

func (e *ErrorFS) Lstat(name string) (fs.FileInfo, error) {
	if err := e.check("lstat", name); err != nil {
		return nil, err
	}
	return e.FS.Lstat(name)
}

func (e *ErrorFS) ReadFile(name string) ([]byte, error) {
	if err := e.check("read", name); err != nil {
		return nil, err
	}
	return e.FS.ReadFile(name)
}

func (e *ErrorFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := e.check("readdir", name); err != nil {
		return nil, err
	}
	return e.FS.ReadDir(name)
}

func (e *ErrorFS) Symlink(oldname, newname string) error {
	if err := e.check("symlink", newname); err != nil {
		return err
	}
	return e.FS.Symlink(oldname, newname)
}

func (e *ErrorFS) Remove(name string) error {
	if err := e.check("remove", name); err != nil {
		return err
	}
	return e.FS.Remove(name)
}

func (e *ErrorFS) RemoveAll(path string) error {
	if err := e.check("removeall", path); err != nil {
		return err
	}
	return e.FS.RemoveAll(path)
}

func (e *ErrorFS) Rename(oldpath, newpath string) error {
	if err := e.check("rename", oldpath); err != nil {
		return err
	}
	return e.FS.Rename(oldpath, newpath)
}
