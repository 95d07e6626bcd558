package containers

import (
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/lockset"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// Deleter removes containers from disk
type Deleter struct {
	FS     types.FS
	Locks  *lockset.Registry
	Access types.AccessChecker
	// GameDir is the game data folder that also identifies a container
	// without metadata. Empty means types.DefaultGameDir.
	GameDir string
	// Guard refuses the deletion while the game runs. Optional.
	Guard types.WriteGuard
}

// DeleteContainer removes the container tree at root. It refuses anything
// that does not look like a container: a directory with neither the
// metadata file nor Data/Documents/<GameDir>.
func (d *Deleter) DeleteContainer(root string) error {
	logger := logging.GetLogger("containers.delete")

	clean := filepath.Clean(root)
	if root == "" || clean == string(filepath.Separator) || clean == "." {
		return errors.Newf(errors.ErrValidation, "refusing to delete %q", root)
	}
	if err := d.requireContainer(clean); err != nil {
		return err
	}
	if err := access.Require(d.Access); err != nil {
		return err
	}
	if d.Guard != nil {
		if err := d.Guard.AllowWrite(); err != nil {
			return err
		}
	}

	locks := d.Locks
	if locks == nil {
		locks = lockset.Default()
	}
	unlock, err := locks.TryLock(clean)
	if err != nil {
		return err
	}
	defer unlock()

	if err := d.FS.RemoveAll(clean); err != nil {
		return errors.Wrapf(err, errors.ErrUnexpectedOS, "failed to delete container %s", clean).
			WithDetail("path", clean)
	}
	logger.Info().Str("container", clean).Msg("container deleted")
	return nil
}

func (d *Deleter) requireContainer(root string) error {
	_, metaErr := d.FS.Lstat(paths.MetadataPath(root))
	if metaErr == nil {
		return nil
	}
	game := types.Container{RootPath: root, GameDir: d.GameDir}.GameDataPath()
	if _, err := d.FS.Lstat(game); err == nil {
		return nil
	}
	return errors.Wrapf(metaErr, errors.ErrValidation, "%s is not a container", root).
		WithDetail("path", root)
}
