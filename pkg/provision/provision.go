// Package provision installs the provisioning profile the sideloaded game
// needs inside its application bundle, and can add the memory entitlements
// to the profile's embedded property list.
package provision

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/download"
	fnerrors "github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// ProfileName is the provisioning profile file inside the inner bundle
const ProfileName = "embedded.mobileprovision"

// Fetcher downloads a URL to a local path
type Fetcher interface {
	Download(ctx context.Context, src, dest string, progress types.ProgressFunc) (*download.Result, error)
}

// Installer puts a provisioning profile into an application bundle
type Installer struct {
	Fetcher     Fetcher
	URL         string
	InnerBundle string
	Mover       *filesystem.Mover
}

// NewInstaller creates an Installer
func NewInstaller(fetcher Fetcher, url, innerBundle string) *Installer {
	return &Installer{Fetcher: fetcher, URL: url, InnerBundle: innerBundle, Mover: filesystem.NewMover()}
}

// ProfilePath returns where the profile lives inside bundlePath
func (i *Installer) ProfilePath(bundlePath string) string {
	return filepath.Join(bundlePath, "Wrapper", i.InnerBundle, ProfileName)
}

// Install downloads the profile and moves it into bundlePath, replacing
// any profile already there. It returns the installed path.
func (i *Installer) Install(ctx context.Context, bundlePath string) (string, error) {
	logger := logging.GetLogger("provision").With().Str("bundle", bundlePath).Logger()

	if info, err := os.Stat(bundlePath); err != nil || !info.IsDir() {
		return "", fnerrors.Newf(fnerrors.ErrNotInstalled, "application bundle not found: %s", bundlePath)
	}

	tmpDir, err := os.MkdirTemp("", "fnassist-provision-*")
	if err != nil {
		return "", fnerrors.Wrap(err, fnerrors.ErrUnexpectedOS, "cannot create temporary directory")
	}
	defer os.RemoveAll(tmpDir)

	tmp := filepath.Join(tmpDir, ProfileName)
	if _, err := i.Fetcher.Download(ctx, i.URL, tmp, nil); err != nil {
		return "", err
	}

	dest := i.ProfilePath(bundlePath)
	if err := i.replace(tmp, dest); err != nil {
		return "", err
	}
	logger.Info().Str("profile", dest).Msg("provisioning profile installed")
	return dest, nil
}

// PatchInstalled adds the memory entitlements to the profile already in
// bundlePath. It reports whether the file changed.
func (i *Installer) PatchInstalled(bundlePath string) (bool, error) {
	dest := i.ProfilePath(bundlePath)
	data, err := os.ReadFile(dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fnerrors.Newf(fnerrors.ErrNotFound, "provisioning profile not found: %s", dest)
		}
		return false, fnerrors.Wrapf(err, fnerrors.ErrPermission, "cannot read %s", dest)
	}

	patched, changed, err := PatchEntitlements(data)
	if err != nil || !changed {
		return false, err
	}

	tmpDir, err := os.MkdirTemp("", "fnassist-provision-*")
	if err != nil {
		return false, fnerrors.Wrap(err, fnerrors.ErrUnexpectedOS, "cannot create temporary directory")
	}
	defer os.RemoveAll(tmpDir)

	tmp := filepath.Join(tmpDir, ProfileName)
	if err := os.WriteFile(tmp, patched, 0644); err != nil {
		return false, fnerrors.Wrap(err, fnerrors.ErrUnexpectedOS, "cannot write patched profile")
	}
	if err := i.replace(tmp, dest); err != nil {
		return false, err
	}
	logger := logging.GetLogger("provision")
	logger.Info().Str("profile", dest).Msg("entitlements added")
	return true, nil
}

func (i *Installer) replace(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fnerrors.Wrapf(err, fnerrors.ErrPermission, "cannot create %s", filepath.Dir(dest))
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fnerrors.Wrapf(err, fnerrors.ErrPermission, "cannot replace %s", dest)
	}
	mover := i.Mover
	if mover == nil {
		mover = filesystem.NewMover()
	}
	if err := mover.Move(src, dest); err != nil {
		return fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "cannot move profile into %s", dest)
	}
	return nil
}
