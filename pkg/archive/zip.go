package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/klauspost/compress/zip"
)

// ImportZip extracts every entry of the zip archive at src into targetDir.
// Progress counts entries, directories included.
func ImportZip(ctx context.Context, src, targetDir string, progress types.ProgressFunc) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrValidation, "cannot open zip archive %s", src)
	}
	defer r.Close()

	total := len(r.File)
	for i, f := range r.File {
		if err := cancelled(ctx); err != nil {
			return i, err
		}
		if err := extractZipEntry(f, targetDir); err != nil {
			return i, err
		}
		report(progress, i+1, total)
	}
	return total, nil
}

func extractZipEntry(f *zip.File, targetDir string) error {
	dest, err := safeJoin(targetDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", dest)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", filepath.Dir(dest))
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrValidation, "cannot read zip entry %s", f.Name)
	}
	defer rc.Close()

	return writeFile(dest, rc, f.Mode().Perm())
}

func writeFile(dest string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", dest)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot write %s", dest)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot write %s", dest)
	}
	return nil
}
