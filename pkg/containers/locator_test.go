package containers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/containers"
	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/arthur-debert/fnassist/pkg/testutil"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/Users/tester/Library/Containers"

func rootPaths(cs []types.Container) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.RootPath
	}
	return out
}

func newLocator(fsys types.FS) *containers.Locator {
	return containers.NewLocator(fsys, root, "fortnite", "FortniteGame")
}

func TestFindContainers_MetadataMatchWinsOverFallback(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "A", BundleID: "com.epicgames.fortnite"})
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "B", BundleID: "com.other.app", GameDir: "FortniteGame"})

	found := newLocator(fsys).FindContainers()

	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(root, "A"), found[0].RootPath)
	assert.Equal(t, "com.epicgames.fortnite", found[0].BundleIdentifier)
}

func TestFindContainers_IgnoresNonMatching(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "match", BundleID: "com.epicgames.FortniteGame"})
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "other", BundleID: "com.apple.Notes"})
	require.NoError(t, fsys.WriteFile(filepath.Join(root, "stray-file"), []byte("x"), 0644))

	found := newLocator(fsys).FindContainers()

	assert.Equal(t, []string{filepath.Join(root, "match")}, rootPaths(found))
}

func TestFindContainers_FallbackWhenNoMetadataMatch(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "B", BundleID: "com.other.app", GameDir: "FortniteGame"})
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "C", GameDir: "FortniteGame"})
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "D", BundleID: "com.apple.Notes"})

	found := newLocator(fsys).FindContainers()

	assert.Equal(t, []string{filepath.Join(root, "B"), filepath.Join(root, "C")}, rootPaths(found))
}

func TestFindContainers_MatchesAnyMetadataValue(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	dir := filepath.Join(root, "E")
	testutil.WriteMetadata(t, fsys, dir, "", map[string]interface{}{
		"MCMMetadataInfo": map[string]interface{}{
			"com.apple.MobileInstallation.BundleName": []interface{}{"FortniteClient"},
		},
	})

	found := newLocator(fsys).FindContainers()

	assert.Equal(t, []string{dir}, rootPaths(found))
	assert.Empty(t, found[0].BundleIdentifier)
}

func TestFindContainers_MalformedMetadataDoesNotAbortScan(t *testing.T) {
	fsys := filesystem.NewMemoryFS()
	broken := filepath.Join(root, "broken")
	require.NoError(t, fsys.MkdirAll(broken, 0755))
	require.NoError(t, fsys.WriteFile(paths.MetadataPath(broken), []byte("bplist00\x00\x01broken"), 0644))
	testutil.NewContainer(t, fsys, root, testutil.ContainerSpec{Name: "good", BundleID: "com.epicgames.fortnite"})

	found := newLocator(fsys).FindContainers()

	assert.Equal(t, []string{filepath.Join(root, "good")}, rootPaths(found))
}

func TestFindContainers_UnreadableMetadataIsSkipped(t *testing.T) {
	mem := filesystem.NewMemoryFS()
	locked := testutil.NewContainer(t, mem, root, testutil.ContainerSpec{Name: "locked", BundleID: "com.epicgames.fortnite"})
	testutil.NewContainer(t, mem, root, testutil.ContainerSpec{Name: "open", BundleID: "com.epicgames.fortnite"})
	fsys := testutil.NewErrorFS(mem).WithError(paths.MetadataPath(locked), os.ErrPermission)

	found := newLocator(fsys).FindContainers()

	assert.Equal(t, []string{filepath.Join(root, "open")}, rootPaths(found))
}

func TestFindContainers_RootErrors(t *testing.T) {
	t.Run("missing_root", func(t *testing.T) {
		assert.Empty(t, newLocator(filesystem.NewMemoryFS()).FindContainers())
	})

	t.Run("unreadable_root", func(t *testing.T) {
		mem := filesystem.NewMemoryFS()
		testutil.NewContainer(t, mem, root, testutil.ContainerSpec{Name: "A", BundleID: "com.epicgames.fortnite"})
		fsys := testutil.NewErrorFS(mem).WithError(root, os.ErrPermission)
		assert.Empty(t, newLocator(fsys).FindContainers())
	})
}

func TestFindContainers_DanglingGameDataLinkCounts(t *testing.T) {
	tmp := t.TempDir()
	container := filepath.Join(tmp, "X")
	require.NoError(t, os.MkdirAll(filepath.Join(container, "Data", "Documents"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "gone"), filepath.Join(container, "Data", "Documents", "FortniteGame")))

	found := containers.NewLocator(filesystem.NewOS(), tmp, "fortnite", "FortniteGame").FindContainers()

	assert.Equal(t, []string{container}, rootPaths(found))
}

func TestDedupe(t *testing.T) {
	in := []types.Container{
		{RootPath: "/c/B"},
		{RootPath: "/c/A/"},
		{RootPath: "/c/A", BundleIdentifier: "com.epicgames.fortnite"},
		{RootPath: "/c/B", BundleIdentifier: "x"},
	}

	out := containers.Dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "/c/A", out[0].RootPath)
	assert.Equal(t, "com.epicgames.fortnite", out[0].BundleIdentifier)
	assert.Equal(t, "/c/B", out[1].RootPath)
	assert.Equal(t, "x", out[1].BundleIdentifier)
}
