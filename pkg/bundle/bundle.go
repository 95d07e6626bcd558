// Package bundle manages the installed application bundle: it settles
// which of the names the game's self-updater may leave behind is the real
// installation, opens it, and removes it.
package bundle

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/config"
	fnerrors "github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// Launcher opens an application bundle
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// OpenLauncher uses the macOS open command
type OpenLauncher struct{}

// Launch implements Launcher
func (OpenLauncher) Launch(ctx context.Context, path string) error {
	return exec.CommandContext(ctx, "open", path).Run()
}

// Normalizer resolves the installed bundle variants to one canonical path
type Normalizer struct {
	FS              types.FS
	ApplicationsDir string
	Canonical       string
	Alternates      []string
	Launcher        Launcher
}

// NewNormalizer creates a Normalizer from configuration
func NewNormalizer(fsys types.FS, cfg config.Bundle) *Normalizer {
	return &Normalizer{
		FS:              fsys,
		ApplicationsDir: cfg.ApplicationsDir,
		Canonical:       cfg.Canonical,
		Alternates:      cfg.Alternates,
		Launcher:        OpenLauncher{},
	}
}

// CanonicalPath returns where the bundle is expected to live. It does not
// look at the disk.
func (n *Normalizer) CanonicalPath() string {
	return filepath.Join(n.ApplicationsDir, n.Canonical)
}

// ResolveCanonicalAppPath returns the canonical bundle path, renaming a
// staged variant into place first.
//
// This is not a pure query. When the canonical bundle and an alternate
// both exist, the canonical one is considered stale and is deleted before
// the first alternate takes its name.
func (n *Normalizer) ResolveCanonicalAppPath() (string, error) {
	logger := logging.GetLogger("bundle")
	canonical := n.CanonicalPath()

	canonicalExists, err := n.exists(canonical)
	if err != nil {
		return "", err
	}
	var alternate string
	for _, name := range n.Alternates {
		p := filepath.Join(n.ApplicationsDir, name)
		ok, err := n.exists(p)
		if err != nil {
			return "", err
		}
		if ok {
			alternate = p
			break
		}
	}

	switch {
	case alternate == "" && !canonicalExists:
		return "", fnerrors.Newf(fnerrors.ErrNotInstalled, "%s is not installed in %s", n.Canonical, n.ApplicationsDir).
			WithDetail("path", canonical)

	case alternate == "":
		return canonical, nil

	case canonicalExists:
		logger.Info().Str("stale", canonical).Str("replacement", alternate).Msg("removing stale bundle")
		if err := n.FS.RemoveAll(canonical); err != nil {
			return "", fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "failed to remove stale bundle %s", canonical)
		}
	}

	if err := n.FS.Rename(alternate, canonical); err != nil {
		return "", fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "failed to rename %s to %s", alternate, canonical).
			WithDetails(map[string]interface{}{"source": alternate, "target": canonical})
	}
	logger.Info().Str("from", alternate).Str("to", canonical).Msg("bundle renamed to canonical name")
	return canonical, nil
}

// Open normalizes the bundle and launches it
func (n *Normalizer) Open(ctx context.Context) (string, error) {
	path, err := n.ResolveCanonicalAppPath()
	if err != nil {
		return "", err
	}
	if err := n.Launcher.Launch(ctx, path); err != nil {
		return "", fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "failed to open %s", path)
	}
	return path, nil
}

// DeleteApp removes the installed bundle. Staged variants are removed too.
func (n *Normalizer) DeleteApp() ([]string, error) {
	var removed []string
	for _, name := range append([]string{n.Canonical}, n.Alternates...) {
		p := filepath.Join(n.ApplicationsDir, name)
		ok, err := n.exists(p)
		if err != nil {
			return removed, err
		}
		if !ok {
			continue
		}
		if err := n.FS.RemoveAll(p); err != nil {
			return removed, fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "failed to delete %s", p)
		}
		removed = append(removed, p)
	}
	if len(removed) == 0 {
		return nil, fnerrors.Newf(fnerrors.ErrNotInstalled, "%s is not installed in %s", n.Canonical, n.ApplicationsDir)
	}
	return removed, nil
}

func (n *Normalizer) exists(p string) (bool, error) {
	_, err := n.FS.Lstat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "cannot inspect %s", p)
	}
}
