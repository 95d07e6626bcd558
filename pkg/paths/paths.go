package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/fnassist/pkg/errors"
)

// Environment variable names
const (
	// EnvContainersDir overrides the sandbox containers root
	EnvContainersDir = "FNASSIST_CONTAINERS_DIR"

	// EnvApplicationsDir overrides the applications directory
	EnvApplicationsDir = "FNASSIST_APPLICATIONS_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names. These mirror what macOS itself uses and are not configurable.
const (
	// AppDirName is the directory name for fnassist's own files
	AppDirName = "fnassist"

	// ContainerMetadataFile is the per-container metadata property list
	ContainerMetadataFile = ".com.apple.containermanagerd.metadata.plist"

	// CacheDBName is the feed metadata cache database
	CacheDBName = "feeds.db"

	// DownloadDirName is the folder created under the user's Downloads
	DownloadDirName = "FnMacAssistant"
)

// Paths holds resolved locations. Build it with New and pass it down; no
// package keeps paths in globals.
type Paths struct {
	home           string
	containersRoot string
	applications   string
}

// New resolves locations from the environment
func New() (*Paths, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot determine home directory")
		}
	}

	p := &Paths{
		home:           home,
		containersRoot: filepath.Join(home, "Library", "Containers"),
		applications:   "/Applications",
	}
	if dir := os.Getenv(EnvContainersDir); dir != "" {
		p.containersRoot = dir
	}
	if dir := os.Getenv(EnvApplicationsDir); dir != "" {
		p.applications = dir
	}
	return p, nil
}

// Home returns the user's home directory
func (p *Paths) Home() string {
	return p.home
}

// ContainersRoot returns the sandbox containers root (~/Library/Containers)
func (p *Paths) ContainersRoot() string {
	return p.containersRoot
}

// ApplicationsDir returns the directory holding installed app bundles
func (p *Paths) ApplicationsDir() string {
	return p.applications
}

// ProtectedProbeDir returns the TCC directory that can only be listed with Full Disk Access
func (p *Paths) ProtectedProbeDir() string {
	return filepath.Join(p.home, "Library", "Application Support", "com.apple.TCC")
}

// MetadataPath returns the metadata plist path of a container
func MetadataPath(containerRoot string) string {
	return filepath.Join(containerRoot, ContainerMetadataFile)
}

// DownloadsDir returns the folder downloads are written to
func (p *Paths) DownloadsDir() string {
	base := xdg.UserDirs.Download
	if base == "" {
		base = filepath.Join(p.home, "Downloads")
	}
	return filepath.Join(base, DownloadDirName)
}

// ConfigDir returns fnassist's XDG config directory
func (p *Paths) ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// CacheDir returns fnassist's XDG cache directory
func (p *Paths) CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.CacheHome, AppDirName)
}

// CacheDBPath returns the feed cache database path
func (p *Paths) CacheDBPath() string {
	return filepath.Join(p.CacheDir(), CacheDBName)
}

// ExpandHome expands a leading ~ to the home directory
func (p *Paths) ExpandHome(path string) string {
	if path == "~" {
		return p.home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(p.home, path[2:])
	}
	return path
}
