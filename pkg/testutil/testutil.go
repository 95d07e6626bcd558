package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateFile creates a file with the given content below dir, creating
// parent directories as needed.
func CreateFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// CreateSymlink creates a symbolic link pointing to target
func CreateSymlink(t testing.TB, target, link string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0755))
	require.NoError(t, os.Symlink(target, link))
}

// ReadFile returns the content of path
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// AssertFileContent checks that path is readable and holds expected.
// Symlinks along the way are followed.
func AssertFileContent(t testing.TB, path, expected string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if assert.NoError(t, err, "reading %s", path) {
		assert.Equal(t, expected, string(data), "content of %s", path)
	}
}

// AssertSymlink checks that link is a symbolic link to expectedTarget
func AssertSymlink(t testing.TB, link, expectedTarget string) {
	t.Helper()

	info, err := os.Lstat(link)
	require.NoError(t, err, "lstat %s", link)
	require.True(t, info.Mode()&os.ModeSymlink != 0, "%s is not a symlink", link)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, expectedTarget, target, "target of %s", link)
}

// AssertNoFile checks that nothing exists at path, not even a dangling link
func AssertNoFile(t testing.TB, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "%s exists but should not", path)
}

// Chmod changes the permissions of path and restores 0755 on cleanup so
// temp directories can be removed.
func Chmod(t testing.TB, path string, mode os.FileMode) {
	t.Helper()

	require.NoError(t, os.Chmod(path, mode))
	t.Cleanup(func() { _ = os.Chmod(path, 0755) })
}

// RequireNonRoot skips tests that rely on permission errors, which root
// never gets.
func RequireNonRoot(t testing.TB) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("test relies on permission errors and cannot run as root")
	}
}
