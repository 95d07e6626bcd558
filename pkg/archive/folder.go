package archive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// ImportFolder brings the folder src into targetDir as its
// PersistentDownloadDir. When that directory already exists the files of
// src are copied over it and src is removed afterwards; otherwise src is
// moved into place. Progress counts regular files.
func ImportFolder(ctx context.Context, src, targetDir string, progress types.ProgressFunc) (int, error) {
	total, err := countFiles(src)
	if err != nil {
		return 0, err
	}

	dest := filepath.Join(targetDir, PersistentDir)
	if _, err := os.Lstat(dest); os.IsNotExist(err) {
		if err := cancelled(ctx); err != nil {
			return 0, err
		}
		if err := filesystem.NewMover().Move(src, dest); err != nil {
			return 0, errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot move %s to %s", src, dest).
				WithDetail("source", src).
				WithDetail("target", dest)
		}
		report(progress, total, total)
		return total, nil
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := cancelled(ctx); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			if err := filesystem.CopyFile(path, target); err != nil {
				return err
			}
			copied++
			report(progress, copied, total)
		}
		return nil
	})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrDownloadCancelled) {
			return copied, err
		}
		return copied, errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot merge %s into %s", src, dest)
	}

	if err := os.RemoveAll(src); err != nil {
		return copied, errors.Wrapf(err, errors.ErrUnexpectedOS, "imported %d files but cannot remove %s", copied, src).
			WithDetail("partial", true)
	}
	return copied, nil
}

func countFiles(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrPermission, "cannot read %s", root)
	}
	return n, nil
}
