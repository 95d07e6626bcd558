package archive_test

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/archive"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name    string
	content string
}

// entries ending in "/" are directories
func writeZip(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		require.NoError(t, err)
		if !strings.HasSuffix(e.name, "/") {
			_, err = fw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
}

func writeTarGz(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.content)), Typeflag: tar.TypeReg}
		switch {
		case strings.HasSuffix(e.name, "/"):
			hdr.Typeflag, hdr.Mode, hdr.Size = tar.TypeDir, 0755, 0
		case strings.HasPrefix(e.content, "-> "):
			hdr.Typeflag, hdr.Linkname, hdr.Size = tar.TypeSymlink, strings.TrimPrefix(e.content, "-> "), 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

type progressLog struct {
	calls [][2]int64
}

func (p *progressLog) record(done, total int64) {
	p.calls = append(p.calls, [2]int64{done, total})
}

var assets = []entry{
	{"PersistentDownloadDir/", ""},
	{"PersistentDownloadDir/InstalledBundles/", ""},
	{"PersistentDownloadDir/InstalledBundles/pak1.pak", "one"},
	{"PersistentDownloadDir/InstalledBundles/pak2.pak", "two"},
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"assets.zip":    "",
		"assets.TAR.GZ": "",
		"assets.tgz":    "",
		"assets.rar":    "",
		"folder/":       "",
	})

	tests := []struct {
		name string
		kind archive.Kind
		code errors.ErrorCode
	}{
		{"assets.zip", archive.KindZip, ""},
		{"assets.TAR.GZ", archive.KindTarGz, ""},
		{"assets.tgz", archive.KindTarGz, ""},
		{"folder", archive.KindFolder, ""},
		{"assets.rar", "", errors.ErrInvalidInput},
		{"missing.zip", "", errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := archive.Detect(filepath.Join(dir, tt.name))
			if tt.code != "" {
				assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestImportZip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "assets.zip")
	writeZip(t, src, assets)
	target := t.TempDir()

	var log progressLog
	n, err := archive.ImportZip(context.Background(), src, target, log.record)
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.Equal(t, map[string]string{
		".":                                      "<dir>",
		"PersistentDownloadDir":                  "<dir>",
		"PersistentDownloadDir/InstalledBundles": "<dir>",
		"PersistentDownloadDir/InstalledBundles/pak1.pak": "one",
		"PersistentDownloadDir/InstalledBundles/pak2.pak": "two",
	}, testutil.Snapshot(t, target))
	assert.Equal(t, [][2]int64{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, log.calls)
}

func TestImportZip_RejectsEscapingEntries(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "evil.zip")
	writeZip(t, src, []entry{{"../outside.txt", "gotcha"}})
	target := filepath.Join(base, "target")
	require.NoError(t, os.MkdirAll(target, 0755))

	_, err := archive.ImportZip(context.Background(), src, target, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), "got %v", err)
	_, statErr := os.Stat(filepath.Join(base, "outside.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportZip_Cancelled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "assets.zip")
	writeZip(t, src, assets)

	ctx, cancel := context.WithCancel(context.Background())
	n, err := archive.ImportZip(ctx, src, t.TempDir(), func(done, total int64) {
		if done == 2 {
			cancel()
		}
	})

	assert.True(t, errors.IsErrorCode(err, errors.ErrDownloadCancelled))
	assert.Equal(t, 2, n)
}

func TestImportZip_NotAZip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(src, []byte("not a zip"), 0644))

	_, err := archive.ImportZip(context.Background(), src, t.TempDir(), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestImportTarGz(t *testing.T) {
	src := filepath.Join(t.TempDir(), "assets.tar.gz")
	writeTarGz(t, src, append(assets, entry{"PersistentDownloadDir/link", "-> /etc/passwd"}))
	target := t.TempDir()

	var log progressLog
	n, err := archive.ImportTarGz(context.Background(), src, target, log.record)
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	snap := testutil.Snapshot(t, target)
	assert.Equal(t, "one", snap["PersistentDownloadDir/InstalledBundles/pak1.pak"])
	assert.Equal(t, "two", snap["PersistentDownloadDir/InstalledBundles/pak2.pak"])
	assert.NotContains(t, snap, "PersistentDownloadDir/link")
	assert.Equal(t, [2]int64{4, 4}, log.calls[len(log.calls)-1])
}

func TestImportTarGz_RejectsEscapingEntries(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "evil.tgz")
	writeTarGz(t, src, []entry{{"../../outside.txt", "gotcha"}})
	target := filepath.Join(base, "target")
	require.NoError(t, os.MkdirAll(target, 0755))

	_, err := archive.ImportTarGz(context.Background(), src, target, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), "got %v", err)
}

func TestImportTarGz_NotGzip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "plain.tar.gz")
	require.NoError(t, os.WriteFile(src, []byte("plain text"), 0644))

	_, err := archive.ImportTarGz(context.Background(), src, t.TempDir(), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestImportFolder_MovesIntoPlace(t *testing.T) {
	src := filepath.Join(t.TempDir(), "downloaded")
	testutil.WriteTree(t, src, map[string]string{
		"InstalledBundles/pak1.pak": "one",
		"InstalledBundles/pak2.pak": "two",
	})
	target := t.TempDir()

	var log progressLog
	n, err := archive.ImportFolder(context.Background(), src, target, log.record)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, [][2]int64{{2, 2}}, log.calls)
	assert.Equal(t, map[string]string{
		".":                         "<dir>",
		"InstalledBundles":          "<dir>",
		"InstalledBundles/pak1.pak": "one",
		"InstalledBundles/pak2.pak": "two",
	}, testutil.Snapshot(t, filepath.Join(target, archive.PersistentDir)))
	assert.Nil(t, testutil.Snapshot(t, src))
}

func TestImportFolder_MergesIntoExisting(t *testing.T) {
	src := filepath.Join(t.TempDir(), "downloaded")
	testutil.WriteTree(t, src, map[string]string{
		"InstalledBundles/pak1.pak": "new one",
		"InstalledBundles/pak3.pak": "three",
	})
	target := t.TempDir()
	testutil.WriteTree(t, target, map[string]string{
		"PersistentDownloadDir/InstalledBundles/pak1.pak": "old one",
		"PersistentDownloadDir/InstalledBundles/pak2.pak": "two",
	})

	var log progressLog
	n, err := archive.ImportFolder(context.Background(), src, target, log.record)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	snap := testutil.Snapshot(t, filepath.Join(target, archive.PersistentDir, "InstalledBundles"))
	assert.Equal(t, "new one", snap["pak1.pak"])
	assert.Equal(t, "two", snap["pak2.pak"])
	assert.Equal(t, "three", snap["pak3.pak"])
	assert.Nil(t, testutil.Snapshot(t, src))

	require.Len(t, log.calls, 2)
	assert.Equal(t, [2]int64{2, 2}, log.calls[1])
}

func TestImport_DispatchesOnKind(t *testing.T) {
	base := t.TempDir()
	zipPath := filepath.Join(base, "assets.zip")
	writeZip(t, zipPath, assets)
	folder := filepath.Join(base, "folder")
	testutil.WriteTree(t, folder, map[string]string{"a.pak": "a"})
	target := filepath.Join(base, "Data", "Documents", "FortniteGame")

	res, err := archive.Import(context.Background(), zipPath, target, nil)
	require.NoError(t, err)
	assert.Equal(t, archive.KindZip, res.Kind)
	assert.Equal(t, 4, res.Files)

	res, err = archive.Import(context.Background(), folder, target, nil)
	require.NoError(t, err)
	assert.Equal(t, archive.KindFolder, res.Kind)
	assert.Equal(t, 1, res.Files)

	var names []string
	for rel := range testutil.Snapshot(t, filepath.Join(target, archive.PersistentDir)) {
		names = append(names, rel)
	}
	sort.Strings(names)
	assert.Contains(t, names, "a.pak")
	assert.Contains(t, names, "InstalledBundles/pak1.pak")
}
