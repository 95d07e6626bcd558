package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("HOME", "/Users/tester")
	t.Setenv(paths.EnvContainersDir, "")
	t.Setenv(paths.EnvApplicationsDir, "")

	p, err := paths.New()
	require.NoError(t, err)

	assert.Equal(t, "/Users/tester", p.Home())
	assert.Equal(t, filepath.Join("/Users/tester", "Library", "Containers"), p.ContainersRoot())
	assert.Equal(t, "/Applications", p.ApplicationsDir())
	assert.Equal(t, filepath.Join("/Users/tester", "Library", "Application Support", "com.apple.TCC"), p.ProtectedProbeDir())
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", "/Users/tester")
	t.Setenv(paths.EnvContainersDir, "/tmp/containers")
	t.Setenv(paths.EnvApplicationsDir, "/tmp/apps")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	p, err := paths.New()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/containers", p.ContainersRoot())
	assert.Equal(t, "/tmp/apps", p.ApplicationsDir())
	assert.Equal(t, "/tmp/config/fnassist", p.ConfigDir())
	assert.Equal(t, "/tmp/cache/fnassist/feeds.db", p.CacheDBPath())
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/Users/tester")
	p, err := paths.New()
	require.NoError(t, err)

	assert.Equal(t, "/Users/tester", p.ExpandHome("~"))
	assert.Equal(t, "/Users/tester/Games", p.ExpandHome("~/Games"))
	assert.Equal(t, "/Volumes/Ext", p.ExpandHome("/Volumes/Ext"))
	assert.Equal(t, "~other", p.ExpandHome("~other"))
}

func TestMetadataPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/c/ABC", ".com.apple.containermanagerd.metadata.plist"),
		paths.MetadataPath("/c/ABC"))
}
