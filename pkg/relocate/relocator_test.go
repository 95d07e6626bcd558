// Test Type: Integration Test
// Description: Relocation against real temporary directories, since
// symlink semantics matter.

package relocate_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/config"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/lockset"
	"github.com/arthur-debert/fnassist/pkg/relocate"
	"github.com/arthur-debert/fnassist/pkg/testutil"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gameSubpath = "Data/Documents/FortniteGame"

type fixture struct {
	tmp       string
	container string
	source    string
	target    string
	r         *relocate.Relocator
}

func setup(t *testing.T) fixture {
	t.Helper()
	tmp := t.TempDir()
	f := fixture{
		tmp:       tmp,
		container: filepath.Join(tmp, "Containers", "ABCD"),
		target:    filepath.Join(tmp, "External"),
	}
	f.source = filepath.Join(f.container, filepath.FromSlash(gameSubpath))
	testutil.WriteTree(t, f.container, map[string]string{
		"Data/Documents/FortniteGame/Saved/Config/GameUserSettings.ini": "[settings]",
		"Data/Documents/FortniteGame/PersistentDownloadDir/pak01.pak":   "0123456789",
	})
	require.NoError(t, os.MkdirAll(f.target, 0755))
	f.r = &relocate.Relocator{
		FS:             filesystem.NewOS(),
		Mover:          filesystem.NewMover(),
		Access:         access.Static(true),
		Locks:          lockset.New(),
		SymlinkSubpath: filepath.FromSlash(gameSubpath),
		Policy:         config.PolicyReplace,
		GameDir:        "FortniteGame",
	}
	return f
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, code), "want %s, got %v", code, err)
}

func assertIsLinkTo(t *testing.T, link, want string) {
	t.Helper()
	info, err := os.Lstat(link)
	require.NoError(t, err)
	require.True(t, info.Mode()&os.ModeSymlink != 0, "%s should be a symlink", link)
	assert.Equal(t, testutil.RealPath(t, want), testutil.RealPath(t, link))
}

func TestSwitchDataFolder_MoveThenIdempotent(t *testing.T) {
	f := setup(t)
	before := testutil.Snapshot(t, f.source)

	outcome, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.MovedAndLinked, outcome.Status)
	assert.Equal(t, f.source, outcome.CurrentPath)
	assert.Equal(t, filepath.Join(f.target, "FortniteGame"), outcome.TargetPath)

	assertIsLinkTo(t, f.source, filepath.Join(f.target, "FortniteGame"))
	assert.Equal(t, before, testutil.Snapshot(t, filepath.Join(f.target, "FortniteGame")), "no data lost in the move")

	again, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.AlreadyLinked, again.Status)
	assert.False(t, again.Changed())
	assertIsLinkTo(t, f.source, filepath.Join(f.target, "FortniteGame"))
}

func TestSwitchDataFolder_Preconditions(t *testing.T) {
	t.Run("missing_container_root", func(t *testing.T) {
		f := setup(t)
		before := testutil.Snapshot(t, f.tmp)

		_, err := f.r.SwitchDataFolder(filepath.Join(f.tmp, "nope"), filepath.Join(f.tmp, "also-nope"))
		assertCode(t, err, errors.ErrNotFound)
		assert.Contains(t, err.Error(), "container root")
		assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
	})

	t.Run("missing_target_folder", func(t *testing.T) {
		f := setup(t)
		_, err := f.r.SwitchDataFolder(f.container, filepath.Join(f.tmp, "nope"))
		assertCode(t, err, errors.ErrNotFound)
		assert.Contains(t, err.Error(), "target folder")
	})

	t.Run("target_is_a_file", func(t *testing.T) {
		f := setup(t)
		file := filepath.Join(f.tmp, "file")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		_, err := f.r.SwitchDataFolder(f.container, file)
		assertCode(t, err, errors.ErrNotFound)
	})

	t.Run("no_access", func(t *testing.T) {
		f := setup(t)
		f.r.Access = access.Static(false)
		before := testutil.Snapshot(t, f.tmp)

		_, err := f.r.SwitchDataFolder(f.container, f.target)
		assertCode(t, err, errors.ErrPermission)
		assert.NotEmpty(t, access.GuidanceFor(err))
		assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
	})

	t.Run("busy", func(t *testing.T) {
		f := setup(t)
		unlock, err := f.r.Locks.TryLock(f.container)
		require.NoError(t, err)
		defer unlock()

		_, err = f.r.SwitchDataFolder(f.container, f.target)
		assertCode(t, err, errors.ErrBusy)
	})

	t.Run("missing_source", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, os.RemoveAll(f.source))
		_, err := f.r.SwitchDataFolder(f.container, f.target)
		assertCode(t, err, errors.ErrNotFound)
	})
}

func TestSwitchDataFolder_TargetInsideSourceIsRejected(t *testing.T) {
	tests := []struct {
		name      string
		targetDir func(f fixture) string
	}{
		{"source_itself", func(f fixture) string { return f.source }},
		{"below_source", func(f fixture) string { return filepath.Join(f.source, "Saved") }},
		{"deep_below_source", func(f fixture) string { return filepath.Join(f.source, "Saved", "Config") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			before := testutil.Snapshot(t, f.tmp)

			_, err := f.r.SwitchDataFolder(f.container, tt.targetDir(f))
			assertCode(t, err, errors.ErrValidation)
			assert.Equal(t, before, testutil.Snapshot(t, f.tmp), "validation failures must not touch the disk")
		})
	}
}

func TestSwitchDataFolder_TargetInsideRelocatedSourceIsRejected(t *testing.T) {
	f := setup(t)
	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	before := testutil.Snapshot(t, f.tmp)

	// through the link, and through the real location
	_, err = f.r.SwitchDataFolder(f.container, filepath.Join(f.source, "Saved"))
	assertCode(t, err, errors.ErrValidation)
	_, err = f.r.SwitchDataFolder(f.container, filepath.Join(f.target, "FortniteGame", "Saved"))
	assertCode(t, err, errors.ErrValidation)

	assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
}

func TestSwitchDataFolder_TargetAncestorOfSourceIsRejected(t *testing.T) {
	tmp := t.TempDir()
	// a container directory that happens to share the relocated folder's name
	container := filepath.Join(tmp, "FortniteGame")
	testutil.WriteTree(t, container, map[string]string{"Data/Documents/FortniteGame/a": "a"})
	r := &relocate.Relocator{
		FS:             filesystem.NewOS(),
		Mover:          filesystem.NewMover(),
		Access:         access.Static(true),
		Locks:          lockset.New(),
		SymlinkSubpath: filepath.FromSlash(gameSubpath),
	}
	before := testutil.Snapshot(t, tmp)

	_, err := r.SwitchDataFolder(container, tmp)
	assertCode(t, err, errors.ErrValidation)
	assert.Equal(t, before, testutil.Snapshot(t, tmp))
}

func TestSwitchDataFolder_PopulatedTargetReplace(t *testing.T) {
	f := setup(t)
	testutil.WriteTree(t, f.target, map[string]string{"FortniteGame/Saved/existing.sav": "keep me"})
	existing := testutil.Snapshot(t, filepath.Join(f.target, "FortniteGame"))

	outcome, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.ReplacedAndLinked, outcome.Status)
	assert.Empty(t, outcome.BackupPath)

	assert.Equal(t, existing, testutil.Snapshot(t, filepath.Join(f.target, "FortniteGame")), "target must not be overwritten")
	assertIsLinkTo(t, f.source, filepath.Join(f.target, "FortniteGame"))
	_, err = os.Stat(filepath.Join(f.source, "PersistentDownloadDir"))
	assert.True(t, os.IsNotExist(err), "old source content is gone")
}

func TestSwitchDataFolder_PopulatedTargetBackup(t *testing.T) {
	f := setup(t)
	f.r.Policy = config.PolicyBackup
	f.r.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	testutil.WriteTree(t, f.target, map[string]string{"FortniteGame/Saved/existing.sav": "keep me"})
	original := testutil.Snapshot(t, f.source)

	outcome, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.BackedUpAndLinked, outcome.Status)
	assert.Equal(t, f.source+".backup-20260102-030405", outcome.BackupPath)

	assert.Equal(t, original, testutil.Snapshot(t, outcome.BackupPath))
	assertIsLinkTo(t, f.source, filepath.Join(f.target, "FortniteGame"))
}

func TestSwitchDataFolder_BackupNameCollision(t *testing.T) {
	f := setup(t)
	f.r.Policy = config.PolicyBackup
	f.r.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	testutil.WriteTree(t, f.target, map[string]string{"FortniteGame/": ""})
	require.NoError(t, os.Mkdir(f.source+".backup-20260102-030405", 0755))

	outcome, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, f.source+".backup-20260102-030405-1", outcome.BackupPath)
}

func TestSwitchDataFolder_Relink(t *testing.T) {
	f := setup(t)
	second := filepath.Join(f.tmp, "Second")
	require.NoError(t, os.MkdirAll(second, 0755))
	original := testutil.Snapshot(t, f.source)

	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)

	outcome, err := f.r.SwitchDataFolder(f.container, second)
	require.NoError(t, err)
	assert.Equal(t, types.Relinked, outcome.Status)

	assertIsLinkTo(t, f.source, filepath.Join(second, "FortniteGame"))
	assert.Equal(t, original, testutil.Snapshot(t, filepath.Join(second, "FortniteGame")), "data follows the link")
	_, err = os.Lstat(filepath.Join(f.target, "FortniteGame"))
	assert.True(t, os.IsNotExist(err))
}

func TestSwitchDataFolder_RelinkKeepsPopulatedTarget(t *testing.T) {
	f := setup(t)
	second := filepath.Join(f.tmp, "Second")
	testutil.WriteTree(t, second, map[string]string{"FortniteGame/other.sav": "other"})

	_, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	first := testutil.Snapshot(t, filepath.Join(f.target, "FortniteGame"))

	outcome, err := f.r.SwitchDataFolder(f.container, second)
	require.NoError(t, err)
	assert.Equal(t, types.Relinked, outcome.Status)
	assert.Equal(t, map[string]string{".": "<dir>", "other.sav": "other"}, testutil.Snapshot(t, filepath.Join(second, "FortniteGame")))
	assert.Equal(t, first, testutil.Snapshot(t, filepath.Join(f.target, "FortniteGame")), "old data is left in place")
}

func TestSwitchDataFolder_RelativeAndDanglingLinks(t *testing.T) {
	t.Run("relative_link", func(t *testing.T) {
		f := setup(t)
		moved := filepath.Join(f.container, "Data", "Documents", "moved")
		require.NoError(t, os.Rename(f.source, moved))
		require.NoError(t, os.Symlink("moved", f.source))

		outcome, err := f.r.SwitchDataFolder(f.container, f.target)
		require.NoError(t, err)
		assert.Equal(t, types.Relinked, outcome.Status)
		_, err = os.Stat(filepath.Join(f.target, "FortniteGame", "PersistentDownloadDir", "pak01.pak"))
		assert.NoError(t, err)
		_, err = os.Lstat(moved)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("dangling_link", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, os.RemoveAll(f.source))
		require.NoError(t, os.Symlink(filepath.Join(f.tmp, "unplugged", "FortniteGame"), f.source))

		outcome, err := f.r.SwitchDataFolder(f.container, f.target)
		require.NoError(t, err)
		assert.Equal(t, types.Relinked, outcome.Status)
		assertIsLinkTo(t, f.source, filepath.Join(f.target, "FortniteGame"))
	})
}

func TestSwitchDataFolder_StrictTarget(t *testing.T) {
	t.Run("unrelated_content_rejected", func(t *testing.T) {
		f := setup(t)
		f.r.StrictTarget = true
		testutil.WriteTree(t, f.target, map[string]string{"photos/cat.jpg": "meow"})
		before := testutil.Snapshot(t, f.tmp)

		_, err := f.r.SwitchDataFolder(f.container, f.target)
		assertCode(t, err, errors.ErrValidation)
		assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
	})

	t.Run("only_game_folder_accepted", func(t *testing.T) {
		f := setup(t)
		f.r.StrictTarget = true
		testutil.WriteTree(t, f.target, map[string]string{"FortniteGame/": ""})

		outcome, err := f.r.SwitchDataFolder(f.container, f.target)
		require.NoError(t, err)
		assert.Equal(t, types.ReplacedAndLinked, outcome.Status)
	})
}

func TestSwitchDataFolder_DataSubpath(t *testing.T) {
	f := setup(t)
	f.r.SymlinkSubpath = "Data"

	outcome, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.MovedAndLinked, outcome.Status)
	assertIsLinkTo(t, filepath.Join(f.container, "Data"), filepath.Join(f.target, "Data"))
	assert.Equal(t, filepath.Join(f.target, "Data", "Documents", "FortniteGame"), f.r.DataDisplayPath(f.container))
}

func TestSwitchDataFolder_LinkFailureRollsBack(t *testing.T) {
	f := setup(t)
	original := testutil.Snapshot(t, f.source)
	f.r.FS = symlinkFailFS{FS: filesystem.NewOS(), path: f.source}

	_, err := f.r.SwitchDataFolder(f.container, f.target)
	assertCode(t, err, errors.ErrUnexpectedOS)
	details := errors.GetErrorDetails(err)
	assert.Equal(t, f.source, details["source"])

	assert.Equal(t, original, testutil.Snapshot(t, f.source), "data moved back after the failed link")
	_, err = os.Lstat(filepath.Join(f.target, "FortniteGame"))
	assert.True(t, os.IsNotExist(err))
}

type symlinkFailFS struct {
	types.FS
	path string
}

func (s symlinkFailFS) Symlink(oldname, newname string) error {
	if newname == s.path {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return s.FS.Symlink(oldname, newname)
}

func TestSwitchDataFolder_TargetShapes(t *testing.T) {
	t.Run("dangling_link_is_replaced_by_the_data", func(t *testing.T) {
		f := setup(t)
		original := testutil.Snapshot(t, f.source)
		targetPath := filepath.Join(f.target, "FortniteGame")
		require.NoError(t, os.Symlink(filepath.Join(f.tmp, "unplugged"), targetPath))

		outcome, err := f.r.SwitchDataFolder(f.container, f.target)
		require.NoError(t, err)
		assert.Equal(t, types.MovedAndLinked, outcome.Status)
		assertIsLinkTo(t, f.source, targetPath)
		info, err := os.Lstat(targetPath)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), "the dangling link was replaced by the moved folder")
		assert.Equal(t, original, testutil.Snapshot(t, targetPath))
	})

	t.Run("regular_file_is_rejected", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, os.WriteFile(filepath.Join(f.target, "FortniteGame"), []byte("not a folder"), 0644))
		before := testutil.Snapshot(t, f.tmp)

		_, err := f.r.SwitchDataFolder(f.container, f.target)
		assertCode(t, err, errors.ErrValidation)
		assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
		testutil.AssertFileContent(t, filepath.Join(f.source, "Saved", "Config", "GameUserSettings.ini"), "[settings]")
	})

	t.Run("link_to_file_is_rejected", func(t *testing.T) {
		f := setup(t)
		file := filepath.Join(f.tmp, "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		require.NoError(t, os.Symlink(file, filepath.Join(f.target, "FortniteGame")))

		_, err := f.r.SwitchDataFolder(f.container, f.target)
		assertCode(t, err, errors.ErrValidation)
		testutil.AssertFileContent(t, filepath.Join(f.source, "Saved", "Config", "GameUserSettings.ini"), "[settings]")
	})

	t.Run("relink_onto_dangling_link_carries_the_data", func(t *testing.T) {
		f := setup(t)
		original := testutil.Snapshot(t, f.source)
		_, err := f.r.SwitchDataFolder(f.container, f.target)
		require.NoError(t, err)

		second := filepath.Join(f.tmp, "Second")
		require.NoError(t, os.MkdirAll(second, 0755))
		require.NoError(t, os.Symlink(filepath.Join(f.tmp, "unplugged"), filepath.Join(second, "FortniteGame")))

		outcome, err := f.r.SwitchDataFolder(f.container, second)
		require.NoError(t, err)
		assert.Equal(t, types.Relinked, outcome.Status)
		assertIsLinkTo(t, f.source, filepath.Join(second, "FortniteGame"))
		assert.Equal(t, original, testutil.Snapshot(t, filepath.Join(second, "FortniteGame")))
	})

	t.Run("relink_onto_file_is_rejected", func(t *testing.T) {
		f := setup(t)
		_, err := f.r.SwitchDataFolder(f.container, f.target)
		require.NoError(t, err)

		second := filepath.Join(f.tmp, "Second")
		testutil.WriteTree(t, second, map[string]string{"FortniteGame": "file"})
		before := testutil.Snapshot(t, f.tmp)

		_, err = f.r.SwitchDataFolder(f.container, second)
		assertCode(t, err, errors.ErrValidation)
		assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
		assertIsLinkTo(t, f.source, filepath.Join(f.target, "FortniteGame"))
	})
}

func TestSwitchDataFolder_TargetIsSourceParent(t *testing.T) {
	f := setup(t)
	before := testutil.Snapshot(t, f.tmp)

	_, err := f.r.SwitchDataFolder(f.container, filepath.Dir(f.source))
	assertCode(t, err, errors.ErrValidation)
	assert.Equal(t, before, testutil.Snapshot(t, f.tmp))
}

type stubGuard struct {
	err   error
	calls int
}

func (g *stubGuard) AllowWrite() error {
	g.calls++
	return g.err
}

func TestSwitchDataFolder_GameRunning(t *testing.T) {
	f := setup(t)
	g := &stubGuard{err: errors.New(errors.ErrBusy, "the game is running")}
	f.r.Guard = g
	before := testutil.Snapshot(t, f.tmp)

	_, err := f.r.SwitchDataFolder(f.container, f.target)
	assertCode(t, err, errors.ErrBusy)
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, before, testutil.Snapshot(t, f.tmp))

	g.err = nil
	outcome, err := f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.MovedAndLinked, outcome.Status)

	// nothing to change, nothing to ask
	_, err = f.r.SwitchDataFolder(f.container, f.target)
	require.NoError(t, err)
	assert.Equal(t, 2, g.calls)
}
