package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Mover moves files and directory trees on the OS filesystem. Rename is
// tried first; across volumes it falls back to copy then delete.
type Mover struct {
	rename func(oldpath, newpath string) error
}

// NewMover creates a Mover backed by os.Rename
func NewMover() *Mover {
	return &Mover{rename: os.Rename}
}

// Move moves src to dst. dst must not exist.
//
// A failed copy removes the partial destination and leaves src untouched.
// A failure while deleting src after a complete copy is reported as a
// *PartialMoveError: the data then exists in both places.
func (m *Mover) Move(src, dst string) error {
	err := m.rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := CopyTree(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return &PartialMoveError{Source: src, Destination: dst, Err: err}
	}
	return nil
}

// PartialMoveError means a cross-volume move copied everything but could
// not remove the source.
type PartialMoveError struct {
	Source      string
	Destination string
	Err         error
}

func (e *PartialMoveError) Error() string {
	return fmt.Sprintf("copied %s to %s but failed to remove the source: %v", e.Source, e.Destination, e.Err)
}

func (e *PartialMoveError) Unwrap() error {
	return e.Err
}

// CopyTree copies a file, symlink or directory tree from src to dst.
// Symlinks are recreated, not followed. Modes and modification times are kept.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case info.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode().IsRegular():
			return copyFile(path, target, info)
		default:
			// sockets, devices and pipes have no place in app data
			return nil
		}
	})
}

// CopyFile copies one regular file, overwriting dst
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return copyFile(src, dst, info)
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
