package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// PersistentDir is the folder the game keeps its downloaded assets in
const PersistentDir = "PersistentDownloadDir"

// Kind identifies an import source
type Kind string

const (
	KindZip    Kind = "zip"
	KindTarGz  Kind = "tar.gz"
	KindFolder Kind = "folder"
)

// Result describes a finished import
type Result struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Files  int    `json:"files" yaml:"files"`
}

// Detect returns the kind of import source at path
func Detect(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrNotFound, "import source not found: %s", path).WithDetail("path", path)
		}
		return "", errors.Wrapf(err, errors.ErrPermission, "cannot read %s", path)
	}
	if info.IsDir() {
		return KindFolder, nil
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return KindZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return KindTarGz, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unsupported import source: %s", filepath.Base(path)).
		WithDetail("path", path)
}

// Import detects the kind of src and imports it into targetDir
func Import(ctx context.Context, src, targetDir string, progress types.ProgressFunc) (*Result, error) {
	logger := logging.GetLogger("archive")
	done := logging.LogOperationStart(logger, "import")
	defer done()

	kind, err := Detect(src)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPermission, "cannot create %s", targetDir)
	}

	var n int
	switch kind {
	case KindZip:
		n, err = ImportZip(ctx, src, targetDir, progress)
	case KindTarGz:
		n, err = ImportTarGz(ctx, src, targetDir, progress)
	default:
		n, err = ImportFolder(ctx, src, targetDir, progress)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().Str("source", src).Str("target", targetDir).Int("files", n).Msg("import finished")
	return &Result{Kind: kind, Source: src, Target: targetDir, Files: n}, nil
}

// safeJoin joins an archive entry name onto dir, refusing names that
// would land outside it
func safeJoin(dir, name string) (string, error) {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return "", errors.Newf(errors.ErrValidation, "archive entry has an absolute path: %s", name)
	}
	joined := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrValidation, "archive entry escapes the target: %s", name)
	}
	return joined, nil
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrDownloadCancelled, "import cancelled")
	}
	return nil
}

func report(progress types.ProgressFunc, done, total int) {
	if progress != nil {
		progress(int64(done), int64(total))
	}
}
