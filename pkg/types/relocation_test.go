package types_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelocationStatus_String(t *testing.T) {
	assert.Equal(t, "already_linked", types.AlreadyLinked.String())
	assert.Equal(t, "relinked", types.Relinked.String())
	assert.Equal(t, "moved_and_linked", types.MovedAndLinked.String())
	assert.Equal(t, "backed_up_and_linked", types.BackedUpAndLinked.String())
	assert.Equal(t, "replaced_and_linked", types.ReplacedAndLinked.String())
	assert.Equal(t, "unknown(42)", types.RelocationStatus(42).String())
}

func TestRelocationOutcome_JSON(t *testing.T) {
	outcome := types.RelocationOutcome{
		Status:      types.MovedAndLinked,
		CurrentPath: "/c/Data/Documents/FortniteGame",
		TargetPath:  "/Volumes/Ext/FortniteGame",
	}

	data, err := json.Marshal(outcome)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "moved_and_linked",
		"current_path": "/c/Data/Documents/FortniteGame",
		"target_path": "/Volumes/Ext/FortniteGame"
	}`, string(data))
	assert.True(t, outcome.Changed())
	assert.False(t, types.RelocationOutcome{Status: types.AlreadyLinked}.Changed())
}

func TestContainer_DerivedPaths(t *testing.T) {
	c := types.Container{RootPath: "/Users/me/Library/Containers/ABC"}

	assert.Equal(t, filepath.Join("/Users/me/Library/Containers/ABC", "Data"), c.DataPath())
	assert.Equal(t, filepath.Join("/Users/me/Library/Containers/ABC", "Data", "Documents", "FortniteGame"), c.GameDataPath())
	assert.Equal(t, "ABC", c.Name())

	c.GameDir = "OtherGame"
	c.BundleIdentifier = "com.epicgames.fortnite"
	assert.Equal(t, filepath.Join("/Users/me/Library/Containers/ABC", "Data", "Documents", "OtherGame"), c.GameDataPath())
	assert.Equal(t, "com.epicgames.fortnite", c.Name())
}
