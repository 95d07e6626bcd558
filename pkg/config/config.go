package config

import (
	"time"
)

// Config is the fully resolved fnassist configuration
type Config struct {
	App        App        `koanf:"app"`
	Relocation Relocation `koanf:"relocation"`
	Selector   Selector   `koanf:"selector"`
	Bundle     Bundle     `koanf:"bundle"`
	Feeds      Feeds      `koanf:"feeds"`
	Downloads  Downloads  `koanf:"downloads"`
	Guard      Guard      `koanf:"guard"`
}

// App identifies the target application
type App struct {
	NameToken string `koanf:"name_token"`
	GameDir   string `koanf:"game_dir"`
}

// Relocation configures the data relocator
type Relocation struct {
	SymlinkSubpath  string `koanf:"symlink_subpath"`
	PopulatedTarget string `koanf:"populated_target"`
	StrictTarget    bool   `koanf:"strict_target"`
}

// Selector configures container disambiguation
type Selector struct {
	AlwaysDisambiguate bool `koanf:"always_disambiguate"`
}

// Bundle names the installed application bundle variants
type Bundle struct {
	ApplicationsDir string   `koanf:"applications_dir"`
	Canonical       string   `koanf:"canonical"`
	Alternates      []string `koanf:"alternates"`
	InnerBundle     string   `koanf:"inner_bundle"`
}

// Feeds holds the remote metadata endpoints
type Feeds struct {
	ReleasesURL  string        `koanf:"releases_url"`
	ListingURL   string        `koanf:"listing_url"`
	ArchiveURL   string        `koanf:"archive_url"`
	ProvisionURL string        `koanf:"provision_url"`
	Timeout      time.Duration `koanf:"timeout"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	UserAgent    string        `koanf:"user_agent"`
}

// Downloads configures the downloader
type Downloads struct {
	Dir       string `koanf:"dir"`
	ChunkSize int    `koanf:"chunk_size"`
}

// Guard configures the running-game check before container writes
type Guard struct {
	Enabled     bool          `koanf:"enabled"`
	QuitTimeout time.Duration `koanf:"quit_timeout"`
}

// Populated target policies
const (
	PolicyReplace = "replace"
	PolicyBackup  = "backup"
)
