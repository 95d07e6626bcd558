package types

import (
	"path/filepath"
)

// DefaultGameDir is the name of the game data directory inside Data/Documents
const DefaultGameDir = "FortniteGame"

// Container is one sandboxed installation of the game on disk.
// Its identity is RootPath.
type Container struct {
	RootPath         string `json:"root_path" yaml:"root_path"`
	BundleIdentifier string `json:"bundle_identifier,omitempty" yaml:"bundle_identifier,omitempty"`
	// SizeBytes is only filled when computed on demand.
	SizeBytes int64 `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	// GameDir overrides DefaultGameDir when set.
	GameDir string `json:"-" yaml:"-"`
}

// DataPath returns RootPath/Data
func (c Container) DataPath() string {
	return filepath.Join(c.RootPath, "Data")
}

// GameDataPath returns the game data directory, three levels below the root
func (c Container) GameDataPath() string {
	gameDir := c.GameDir
	if gameDir == "" {
		gameDir = DefaultGameDir
	}
	return filepath.Join(c.DataPath(), "Documents", gameDir)
}

// Name returns a short human label for the container
func (c Container) Name() string {
	if c.BundleIdentifier != "" {
		return c.BundleIdentifier
	}
	return filepath.Base(c.RootPath)
}
