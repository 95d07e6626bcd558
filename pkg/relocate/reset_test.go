package relocate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetDataLocation(t *testing.T) {
	f := setup(t)
	original := testutil.Snapshot(t, f.source)

	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	require.True(t, f.r.IsUsingSymlink(f.container))

	reset, err := f.r.ResetDataLocation(f.container)
	require.NoError(t, err)
	assert.True(t, reset)

	info, err := os.Lstat(f.source)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.False(t, f.r.IsUsingSymlink(f.container))
	assert.Equal(t, original, testutil.Snapshot(t, f.source))
	_, err = os.Lstat(filepath.Join(f.target, "FortniteGame"))
	assert.True(t, os.IsNotExist(err))

	again, err := f.r.ResetDataLocation(f.container)
	require.NoError(t, err)
	assert.False(t, again, "nothing to reset")
}

func TestResetDataLocation_MissingExternalData(t *testing.T) {
	f := setup(t)
	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(f.target, "FortniteGame")))

	reset, err := f.r.ResetDataLocation(f.container)
	require.NoError(t, err)
	assert.True(t, reset)

	entries, err := os.ReadDir(f.source)
	require.NoError(t, err)
	assert.Empty(t, entries, "an empty data folder is recreated")
}

func TestResetDataLocation_NeedsAccess(t *testing.T) {
	f := setup(t)
	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)

	f.r.Access = access.Static(false)
	_, err = f.r.ResetDataLocation(f.container)
	assertCode(t, err, errors.ErrPermission)
	assert.True(t, f.r.IsUsingSymlink(f.container))
}

func TestResetDataLocation_GameRunning(t *testing.T) {
	f := setup(t)
	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)

	f.r.Guard = &stubGuard{err: errors.New(errors.ErrBusy, "the game is running")}
	_, err = f.r.ResetDataLocation(f.container)
	assertCode(t, err, errors.ErrBusy)
	assert.True(t, f.r.IsUsingSymlink(f.container))
}

func TestDataDisplayPath(t *testing.T) {
	f := setup(t)
	assert.Equal(t, f.source, f.r.DataDisplayPath(f.container))
	assert.Empty(t, f.r.RelocatedTo(f.container))

	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.target, "FortniteGame"), f.r.DataDisplayPath(f.container))
	assert.Equal(t, filepath.Join(f.target, "FortniteGame"), f.r.RelocatedTo(f.container))
	assert.False(t, f.r.IsUsingSymlink(""))
}
