package archive

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/klauspost/compress/gzip"
)

// ImportTarGz extracts a gzip-compressed tarball into targetDir. Regular
// files and directories are extracted; links and special files are
// skipped. The archive is read twice, once to count entries for progress.
func ImportTarGz(ctx context.Context, src, targetDir string, progress types.ProgressFunc) (int, error) {
	total, err := countTarEntries(src)
	if err != nil {
		return 0, err
	}

	logger := logging.GetLogger("archive")
	done := 0
	err = walkTar(src, func(hdr *tar.Header, r io.Reader) error {
		if err := cancelled(ctx); err != nil {
			return err
		}
		if !extractable(hdr) {
			logger.Debug().Str("entry", hdr.Name).Msg("skipping non-regular tar entry")
			return nil
		}

		dest, err := safeJoin(targetDir, hdr.Name)
		if err != nil {
			return err
		}
		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", dest)
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", filepath.Dir(dest))
			}
			if err := writeFile(dest, r, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		}

		done++
		report(progress, done, total)
		return nil
	})
	return done, err
}

func extractable(hdr *tar.Header) bool {
	return hdr.Typeflag == tar.TypeDir || hdr.Typeflag == tar.TypeReg
}

func countTarEntries(src string) (int, error) {
	n := 0
	err := walkTar(src, func(hdr *tar.Header, _ io.Reader) error {
		if extractable(hdr) {
			n++
		}
		return nil
	})
	return n, err
}

func walkTar(src string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "cannot open %s", src)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, errors.ErrValidation, "%s is not gzip compressed", src)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrValidation, "cannot read tar archive %s", src)
		}
		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}
