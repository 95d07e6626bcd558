package types

import (
	"io/fs"
)

// FS is the filesystem interface required for container and relocation operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	// EvalSymlinks returns the path after resolving every symbolic link.
	// The path must exist.
	EvalSymlinks(path string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// AccessChecker reports whether the process can read OS-protected locations
type AccessChecker interface {
	HasElevatedAccess() bool
}

// WriteGuard decides whether a container may be modified right now. It
// returns an error when something, usually the running game, holds it.
type WriteGuard interface {
	AllowWrite() error
}

// ProgressFunc receives the amount of work done so far and the total.
// total is zero or negative when unknown.
type ProgressFunc func(done, total int64)
