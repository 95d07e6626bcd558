package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

func TestCreateFileAndSymlink(t *testing.T) {
	dir := t.TempDir()

	path := CreateFile(t, dir, "sub/dir/file.txt", "nested")
	AssertFileContent(t, path, "nested")

	link := filepath.Join(dir, "links", "file")
	CreateSymlink(t, path, link)
	AssertSymlink(t, link, path)
	assert.Equal(t, "nested", ReadFile(t, link))

	AssertNoFile(t, filepath.Join(dir, "missing"))
}

func TestNewContainer(t *testing.T) {
	root := t.TempDir()
	fsys := filesystem.NewOS()

	dir := NewContainer(t, fsys, root, ContainerSpec{
		Name:     "C1",
		BundleID: "com.epicgames.fortnite",
		GameDir:  "FortniteGame",
		Files:    map[string]string{"Data/Documents/note.txt": "hi"},
	})

	assert.Equal(t, filepath.Join(root, "C1"), dir)
	assert.DirExists(t, filepath.Join(dir, "Data", "Documents", "FortniteGame"))
	AssertFileContent(t, filepath.Join(dir, "Data", "Documents", "note.txt"), "hi")

	data, err := os.ReadFile(paths.MetadataPath(dir))
	require.NoError(t, err)
	var meta map[string]interface{}
	_, err = plist.Unmarshal(data, &meta)
	require.NoError(t, err)
	assert.Equal(t, "com.epicgames.fortnite", meta["MCMMetadataIdentifier"])
}

func TestWriteTreeAndSnapshot(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"a/b.txt": "b",
		"empty/":  "",
	})
	CreateSymlink(t, "a", filepath.Join(root, "link"))

	assert.Equal(t, map[string]string{
		".":       "<dir>",
		"a":       "<dir>",
		"a/b.txt": "b",
		"empty":   "<dir>",
		"link":    "-> a",
	}, Snapshot(t, root))

	assert.Nil(t, Snapshot(t, filepath.Join(root, "missing")))
}
