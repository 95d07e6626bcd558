package relocate

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/fnassist/pkg/types"
)

// IsUsingSymlink reports whether the container's data has been relocated
func (r *Relocator) IsUsingSymlink(containerRoot string) bool {
	if containerRoot == "" {
		return false
	}
	info, err := r.FS.Lstat(r.SourcePath(containerRoot))
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// RelocatedTo returns the link target of a relocated container, or ""
func (r *Relocator) RelocatedTo(containerRoot string) string {
	if !r.IsUsingSymlink(containerRoot) {
		return ""
	}
	target, err := r.linkTarget(r.SourcePath(containerRoot))
	if err != nil {
		return ""
	}
	return target
}

// DataDisplayPath returns where the game data directory actually lives,
// following the relocation link when there is one.
func (r *Relocator) DataDisplayPath(containerRoot string) string {
	container := types.Container{RootPath: containerRoot, GameDir: r.GameDir}
	gameData := container.GameDataPath()

	target := r.RelocatedTo(containerRoot)
	if target == "" {
		return gameData
	}

	rel, err := filepath.Rel(r.SourcePath(containerRoot), gameData)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// the link does not cover the game data directory
		return r.realPath(gameData)
	}
	if rel == "." {
		return target
	}
	return filepath.Join(target, rel)
}
