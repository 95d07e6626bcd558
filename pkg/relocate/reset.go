package relocate

import (
	"errors"
	"io/fs"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/logging"
)

// ResetDataLocation undoes a relocation: the link is removed and the data
// moved back into the container. When the external data is gone an empty
// directory is created instead. It returns false when the container was
// not relocated.
func (r *Relocator) ResetDataLocation(containerRoot string) (bool, error) {
	logger := logging.GetLogger("relocate").With().Str("container", containerRoot).Logger()

	if !r.IsUsingSymlink(containerRoot) {
		return false, nil
	}
	if err := access.Require(r.Access); err != nil {
		return false, err
	}
	unlock, err := r.locks().TryLock(containerRoot)
	if err != nil {
		return false, err
	}
	defer unlock()
	if err := r.guard(); err != nil {
		return false, err
	}

	sourcePath := r.SourcePath(containerRoot)
	target, err := r.linkTarget(sourcePath)
	if err != nil {
		return false, unexpected(err, "cannot read link", sourcePath, "")
	}

	if err := r.FS.Remove(sourcePath); err != nil {
		return false, unexpected(err, "cannot remove link", sourcePath, target)
	}

	_, statErr := r.FS.Stat(target)
	if errors.Is(statErr, fs.ErrNotExist) {
		if err := r.FS.MkdirAll(sourcePath, 0755); err != nil {
			return false, unexpected(err, "cannot recreate data folder", sourcePath, target)
		}
		logger.Warn().Str("target", target).Msg("relocated data missing, recreated empty data folder")
		return true, nil
	}

	if err := r.move(target, sourcePath); err != nil {
		if linkErr := r.FS.Symlink(target, sourcePath); linkErr != nil {
			logger.Error().Err(linkErr).Msg("could not restore link after failed reset")
		}
		return false, err
	}
	logger.Info().Str("from", target).Msg("data moved back into container")
	return true, nil
}
