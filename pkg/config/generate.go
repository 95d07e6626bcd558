package config

import (
	"github.com/pelletier/go-toml/v2"
)

// GenerateTOML renders a configuration as a TOML document that
// LoadConfiguration reads back to the same values.
func GenerateTOML(cfg *Config) ([]byte, error) {
	return toml.Marshal(ToMap(cfg))
}

// ToMap returns cfg keyed like the config file. Durations are written as
// strings so they decode through the duration hook.
func ToMap(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"app": map[string]interface{}{
			"name_token": cfg.App.NameToken,
			"game_dir":   cfg.App.GameDir,
		},
		"relocation": map[string]interface{}{
			"symlink_subpath":  cfg.Relocation.SymlinkSubpath,
			"populated_target": cfg.Relocation.PopulatedTarget,
			"strict_target":    cfg.Relocation.StrictTarget,
		},
		"selector": map[string]interface{}{
			"always_disambiguate": cfg.Selector.AlwaysDisambiguate,
		},
		"bundle": map[string]interface{}{
			"applications_dir": cfg.Bundle.ApplicationsDir,
			"canonical":        cfg.Bundle.Canonical,
			"alternates":       cfg.Bundle.Alternates,
			"inner_bundle":     cfg.Bundle.InnerBundle,
		},
		"feeds": map[string]interface{}{
			"releases_url":  cfg.Feeds.ReleasesURL,
			"listing_url":   cfg.Feeds.ListingURL,
			"archive_url":   cfg.Feeds.ArchiveURL,
			"provision_url": cfg.Feeds.ProvisionURL,
			"timeout":       cfg.Feeds.Timeout.String(),
			"cache_ttl":     cfg.Feeds.CacheTTL.String(),
			"user_agent":    cfg.Feeds.UserAgent,
		},
		"downloads": map[string]interface{}{
			"dir":        cfg.Downloads.Dir,
			"chunk_size": cfg.Downloads.ChunkSize,
		},
		"guard": map[string]interface{}{
			"enabled":      cfg.Guard.Enabled,
			"quit_timeout": cfg.Guard.QuitTimeout.String(),
		},
	}
}
