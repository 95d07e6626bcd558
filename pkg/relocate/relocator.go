package relocate

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/config"
	fnerrors "github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/lockset"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// Mover moves a file or directory tree to a path that does not exist yet
type Mover interface {
	Move(src, dst string) error
}

// Relocator performs the move-and-link transformation
type Relocator struct {
	FS     types.FS
	Mover  Mover
	Access types.AccessChecker
	Locks  *lockset.Registry
	// Guard refuses changes while the game runs. Optional.
	Guard types.WriteGuard

	// SymlinkSubpath is the relocatable unit below the container root.
	// Empty means the container root itself.
	SymlinkSubpath string
	// Policy is config.PolicyReplace or config.PolicyBackup
	Policy string
	// StrictTarget requires the target folder to be empty or hold only
	// the relocated folder.
	StrictTarget bool
	// GameDir is used to compute the displayed data location
	GameDir string

	Now func() time.Time
}

// New creates a Relocator on the OS filesystem from configuration
func New(cfg *config.Config, checker types.AccessChecker, locks *lockset.Registry) *Relocator {
	return &Relocator{
		FS:             filesystem.NewOS(),
		Mover:          filesystem.NewMover(),
		Access:         checker,
		Locks:          locks,
		SymlinkSubpath: cfg.Relocation.SymlinkSubpath,
		Policy:         cfg.Relocation.PopulatedTarget,
		StrictTarget:   cfg.Relocation.StrictTarget,
		GameDir:        cfg.App.GameDir,
	}
}

// SourcePath returns the path inside the container that gets relocated
func (r *Relocator) SourcePath(containerRoot string) string {
	if r.SymlinkSubpath == "" {
		return filepath.Clean(containerRoot)
	}
	return filepath.Join(containerRoot, r.SymlinkSubpath)
}

// SwitchDataFolder relocates the container's data into targetDir.
//
// Preconditions are checked in order: the container root and the target
// folder must be directories (NOT_FOUND), elevated access must be
// available (PERMISSION) and no other operation may hold the container
// (BUSY). Nothing is changed on disk before the target has been validated
// and the write guard agreed.
func (r *Relocator) SwitchDataFolder(containerRoot, targetDir string) (*types.RelocationOutcome, error) {
	logger := logging.GetLogger("relocate").With().
		Str("container", containerRoot).
		Str("target_dir", targetDir).
		Logger()
	done := logging.LogOperationStart(logger, "switch data folder")
	defer done()

	if err := r.requireDir(containerRoot, "container root"); err != nil {
		return nil, err
	}
	if err := r.requireDir(targetDir, "target folder"); err != nil {
		return nil, err
	}
	if err := access.Require(r.Access); err != nil {
		return nil, err
	}
	unlock, err := r.locks().TryLock(containerRoot)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sourcePath := r.SourcePath(containerRoot)
	srcInfo, err := r.FS.Lstat(sourcePath)
	if err != nil {
		return nil, fnerrors.Wrapf(err, fnerrors.ErrNotFound, "data folder not found: %s", sourcePath).
			WithDetail("path", sourcePath)
	}

	targetDirAbs, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fnerrors.Wrap(err, fnerrors.ErrInvalidInput, "invalid target folder")
	}
	targetPath := filepath.Join(targetDirAbs, filepath.Base(sourcePath))
	outcome := &types.RelocationOutcome{CurrentPath: sourcePath, TargetPath: targetPath}

	isLink := srcInfo.Mode()&fs.ModeSymlink != 0
	realSource := r.realPath(sourcePath)
	realTarget := r.realPath(targetPath)
	if realSource == realTarget {
		if !isLink {
			return nil, fnerrors.New(fnerrors.ErrValidation, "target folder already holds the data folder").
				WithDetails(map[string]interface{}{"source": sourcePath, "target": targetDirAbs})
		}
		logger.Info().Msg("data already linked to target")
		outcome.Status = types.AlreadyLinked
		return outcome, nil
	}

	if err := r.validateTarget(sourcePath, realSource, targetDirAbs, realTarget); err != nil {
		return nil, err
	}
	state, err := r.inspectTarget(sourcePath, targetPath)
	if err != nil {
		return nil, err
	}
	if err := r.guard(); err != nil {
		return nil, err
	}
	if state == targetDangling {
		if err := r.FS.Remove(targetPath); err != nil {
			return nil, unexpected(err, "cannot remove dangling link at target", sourcePath, targetPath)
		}
		logger.Warn().Str("target", targetPath).Msg("removed dangling link at target")
		state = targetAbsent
	}

	if isLink {
		if err := r.relink(sourcePath, targetPath, state); err != nil {
			return nil, err
		}
		logger.Info().Str("target", targetPath).Msg("relinked data folder")
		outcome.Status = types.Relinked
		return outcome, nil
	}

	if state == targetAbsent {
		if err := r.moveAndLink(sourcePath, targetPath); err != nil {
			return nil, err
		}
		logger.Info().Str("target", targetPath).Msg("moved data folder and linked it")
		outcome.Status = types.MovedAndLinked
		return outcome, nil
	}

	// The target already holds the data and is authoritative.
	if r.Policy == config.PolicyBackup {
		backup, err := r.backupAndLink(sourcePath, targetPath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("backup", backup).Msg("backed up data folder and linked existing target")
		outcome.Status = types.BackedUpAndLinked
		outcome.BackupPath = backup
		return outcome, nil
	}

	if err := r.FS.RemoveAll(sourcePath); err != nil {
		return nil, unexpected(err, "failed to remove data folder before linking", sourcePath, targetPath)
	}
	if err := r.FS.Symlink(targetPath, sourcePath); err != nil {
		return nil, unexpected(err, "data folder removed but link could not be created", sourcePath, targetPath)
	}
	logger.Info().Str("target", targetPath).Msg("replaced data folder with link to existing target")
	outcome.Status = types.ReplacedAndLinked
	return outcome, nil
}

func (r *Relocator) requireDir(path, what string) error {
	if path == "" {
		return fnerrors.Newf(fnerrors.ErrNotFound, "%s not found", what)
	}
	info, err := r.FS.Stat(path)
	if err != nil || !info.IsDir() {
		return fnerrors.Newf(fnerrors.ErrNotFound, "%s not found: %s", what, path).WithDetail("path", path)
	}
	return nil
}

func (r *Relocator) validateTarget(sourcePath, realSource, targetDirAbs, realTarget string) error {
	realTargetDir := r.realPath(targetDirAbs)
	if isWithin(realTargetDir, realSource) || isWithin(realSource, realTarget) {
		return fnerrors.New(fnerrors.ErrValidation, "target cannot be inside source").
			WithDetails(map[string]interface{}{"source": realSource, "target": realTargetDir})
	}

	if !r.StrictTarget {
		return nil
	}
	entries, err := r.FS.ReadDir(targetDirAbs)
	if err != nil {
		return unexpected(err, "cannot list target folder", sourcePath, targetDirAbs)
	}
	name := filepath.Base(sourcePath)
	if len(entries) > 1 || (len(entries) == 1 && entries[0].Name() != name) {
		return fnerrors.Newf(fnerrors.ErrValidation, "target folder must be empty or contain only %q", name).
			WithDetail("target", targetDirAbs)
	}
	return nil
}

type targetState int

const (
	targetAbsent targetState = iota
	// targetDangling is a symlink whose destination is gone
	targetDangling
	targetDir
)

// inspectTarget classifies the relocation target. Only a directory, or a
// link resolving to one, counts as existing data. Anything else that is
// not a dangling link is rejected.
func (r *Relocator) inspectTarget(sourcePath, targetPath string) (targetState, error) {
	linfo, err := r.FS.Lstat(targetPath)
	if errors.Is(err, fs.ErrNotExist) {
		return targetAbsent, nil
	}
	if err != nil {
		return targetAbsent, unexpected(err, "cannot inspect target", sourcePath, targetPath)
	}

	info, err := r.FS.Stat(targetPath)
	switch {
	case err == nil && info.IsDir():
		return targetDir, nil
	case errors.Is(err, fs.ErrNotExist) && linfo.Mode()&fs.ModeSymlink != 0:
		return targetDangling, nil
	case err != nil:
		return targetAbsent, unexpected(err, "cannot inspect target", sourcePath, targetPath)
	}
	return targetAbsent, fnerrors.Newf(fnerrors.ErrValidation, "target %s exists and is not a directory", targetPath).
		WithDetails(map[string]interface{}{"source": sourcePath, "target": targetPath})
}

// relink points an existing link at targetPath, carrying the data over
// from the old link target when the new location is still empty.
func (r *Relocator) relink(sourcePath, targetPath string, state targetState) error {
	oldTarget, err := r.linkTarget(sourcePath)
	if err != nil {
		return unexpected(err, "cannot read existing link", sourcePath, targetPath)
	}

	oldInfo, oldErr := r.FS.Stat(oldTarget)
	oldIsDir := oldErr == nil && oldInfo.IsDir()
	switch {
	case oldIsDir && state == targetAbsent:
		if err := r.move(oldTarget, targetPath); err != nil {
			return err
		}
	case state == targetAbsent:
		if err := r.FS.MkdirAll(targetPath, 0755); err != nil {
			return unexpected(err, "cannot create target", sourcePath, targetPath)
		}
	}

	if err := r.FS.Remove(sourcePath); err != nil {
		return unexpected(err, "cannot remove existing link", sourcePath, targetPath)
	}
	if err := r.FS.Symlink(targetPath, sourcePath); err != nil {
		return unexpected(err, "old link removed but new link could not be created", sourcePath, targetPath)
	}
	return nil
}

func (r *Relocator) moveAndLink(sourcePath, targetPath string) error {
	if err := r.move(sourcePath, targetPath); err != nil {
		return err
	}
	linkErr := r.FS.Symlink(targetPath, sourcePath)
	if linkErr == nil {
		return nil
	}

	if err := r.Mover.Move(targetPath, sourcePath); err != nil {
		return unexpected(linkErr, "link could not be created and the move could not be rolled back", sourcePath, targetPath).
			WithDetail("rollback_error", err.Error())
	}
	return unexpected(linkErr, "link could not be created, data moved back", sourcePath, targetPath)
}

func (r *Relocator) backupAndLink(sourcePath, targetPath string) (string, error) {
	backup, err := r.backupPath(sourcePath)
	if err != nil {
		return "", unexpected(err, "cannot choose a backup name", sourcePath, targetPath)
	}
	if err := r.FS.Rename(sourcePath, backup); err != nil {
		return "", unexpected(err, "failed to back up data folder", sourcePath, targetPath)
	}
	if linkErr := r.FS.Symlink(targetPath, sourcePath); linkErr != nil {
		if err := r.FS.Rename(backup, sourcePath); err != nil {
			return "", unexpected(linkErr, "link could not be created and the backup could not be restored", sourcePath, targetPath).
				WithDetail("backup", backup)
		}
		return "", unexpected(linkErr, "link could not be created, backup restored", sourcePath, targetPath)
	}
	return backup, nil
}

func (r *Relocator) backupPath(sourcePath string) (string, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	base := fmt.Sprintf("%s.backup-%s", sourcePath, now().Format("20060102-150405"))
	candidate := base
	for i := 1; i < 100; i++ {
		if _, err := r.FS.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("too many backups named %s", base)
}

func (r *Relocator) move(src, dst string) error {
	if err := r.Mover.Move(src, dst); err != nil {
		var partial *filesystem.PartialMoveError
		if errors.As(err, &partial) {
			return unexpected(err, "data copied but the original could not be removed", src, dst).
				WithDetail("partial", true)
		}
		return unexpected(err, "failed to move data", src, dst)
	}
	return nil
}

// linkTarget reads a symlink and makes a relative target absolute
func (r *Relocator) linkTarget(link string) (string, error) {
	target, err := r.FS.Readlink(link)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	return filepath.Clean(target), nil
}

// realPath resolves every symlink in p. When p does not exist its parent
// is resolved instead, walking up until something exists.
func (r *Relocator) realPath(p string) string {
	p = filepath.Clean(p)
	if resolved, err := r.FS.EvalSymlinks(p); err == nil {
		return resolved
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return filepath.Join(r.realPath(parent), filepath.Base(p))
}

func (r *Relocator) guard() error {
	if r.Guard == nil {
		return nil
	}
	return r.Guard.AllowWrite()
}

func (r *Relocator) locks() *lockset.Registry {
	if r.Locks == nil {
		return lockset.Default()
	}
	return r.Locks
}

// isWithin reports whether path equals base or lies below it
func isWithin(path, base string) bool {
	if path == base {
		return true
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func unexpected(err error, msg, source, target string) *fnerrors.AssistError {
	return fnerrors.Wrap(err, fnerrors.ErrUnexpectedOS, msg).
		WithDetails(map[string]interface{}{"source": source, "target": target})
}
