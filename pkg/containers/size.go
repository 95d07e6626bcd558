package containers

import (
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/types"
)

// ComputeDirectorySize sums the sizes of regular files under path.
// Symlinks are not followed. Entries that disappear or cannot be read
// while walking are left out; a missing path has size zero.
func ComputeDirectorySize(fsys types.FS, path string) int64 {
	info, err := fsys.Lstat(path)
	if err != nil {
		return 0
	}
	if info.Mode().IsRegular() {
		return info.Size()
	}
	if !info.IsDir() {
		return 0
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return 0
	}
	var total int64
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		switch {
		case entry.IsDir():
			total += ComputeDirectorySize(fsys, child)
		case entry.Type().IsRegular():
			info, err := entry.Info()
			if err != nil {
				continue
			}
			total += info.Size()
		}
	}
	return total
}
