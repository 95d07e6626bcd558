package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

// WriteMetadata writes a container metadata plist (XML format) into
// containerRoot. extra keys are merged into the top-level dictionary.
func WriteMetadata(t testing.TB, fsys types.FS, containerRoot, bundleID string, extra map[string]interface{}) {
	t.Helper()

	doc := map[string]interface{}{
		"MCMMetadataContentClass": 2,
		"MCMMetadataUUID":         "00000000-0000-0000-0000-000000000000",
	}
	if bundleID != "" {
		doc["MCMMetadataIdentifier"] = bundleID
	}
	for k, v := range extra {
		doc[k] = v
	}

	data, err := plist.Marshal(doc, plist.XMLFormat)
	require.NoError(t, err)
	require.NoError(t, fsys.MkdirAll(containerRoot, 0755))
	require.NoError(t, fsys.WriteFile(paths.MetadataPath(containerRoot), data, 0644))
}

// ContainerSpec describes a fixture container
type ContainerSpec struct {
	Name     string
	BundleID string
	// Metadata writes a metadata plist even when BundleID is empty
	Metadata bool
	// GameDir creates Data/Documents/<GameDir> when set
	GameDir string
	// Files are written relative to the container root
	Files map[string]string
}

// NewContainer creates a container directory under root and returns its path
func NewContainer(t testing.TB, fsys types.FS, root string, spec ContainerSpec) string {
	t.Helper()

	dir := filepath.Join(root, spec.Name)
	require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "Data"), 0755))
	if spec.BundleID != "" || spec.Metadata {
		WriteMetadata(t, fsys, dir, spec.BundleID, nil)
	}
	if spec.GameDir != "" {
		require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "Data", "Documents", spec.GameDir), 0755))
	}
	for rel, content := range spec.Files {
		p := filepath.Join(dir, rel)
		require.NoError(t, fsys.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, fsys.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

// WriteTree writes files under root on the OS filesystem. Keys ending in
// "/" create empty directories.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// Snapshot returns a description of everything under root: file contents,
// "<dir>" for directories and "-> target" for symlinks. Symlinks are not
// followed. A missing root yields nil.
func Snapshot(t testing.TB, root string) map[string]string {
	t.Helper()

	if _, err := os.Lstat(root); os.IsNotExist(err) {
		return nil
	}

	out := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			out[rel] = "-> " + target
		case d.IsDir():
			out[rel] = "<dir>"
		default:
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			out[rel] = string(data)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

// RealPath resolves symlinks in p, failing the test on error. macOS temp
// dirs live behind /var -> /private/var, so comparisons need this.
func RealPath(t testing.TB, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return resolved
}
