package config

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "FNASSIST_"

// LoadOptions controls where configuration comes from
type LoadOptions struct {
	// ConfigDir holds config.toml or config.yaml. Empty skips user files.
	ConfigDir string
	// Overrides are dotted keys applied last, typically from flags.
	Overrides map[string]interface{}
}

// LoadConfiguration layers defaults, user files, environment and overrides
func LoadConfiguration(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config files, TOML before YAML
	if opts.ConfigDir != "" {
		for _, candidate := range []struct {
			name   string
			parser koanf.Parser
		}{
			{"config.toml", toml.Parser()},
			{"config.yaml", yaml.Parser()},
			{"config.yml", yaml.Parser()},
		} {
			p := filepath.Join(opts.ConfigDir, candidate.name)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := k.Load(file.Provider(p), candidate.parser); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", p)
			}
		}
	}

	// 3. Environment, FNASSIST_RELOCATION_SYMLINK_SUBPATH -> relocation.symlink_subpath
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps FNASSIST_SECTION_SOME_KEY to section.some_key. Sections are
// single words, so only the first underscore separates levels.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found || rest == "" {
		return ""
	}
	return section + "." + rest
}

func validate(cfg *Config) error {
	sub := cfg.Relocation.SymlinkSubpath
	if sub != "" {
		clean := path.Clean(filepath.ToSlash(sub))
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return errors.Newf(errors.ErrInvalidInput, "relocation.symlink_subpath must stay inside the container: %q", sub).
				WithDetail("symlink_subpath", sub)
		}
		if clean == "." {
			clean = ""
		}
		cfg.Relocation.SymlinkSubpath = filepath.FromSlash(clean)
	}

	switch cfg.Relocation.PopulatedTarget {
	case PolicyReplace, PolicyBackup:
	case "":
		cfg.Relocation.PopulatedTarget = PolicyReplace
	default:
		return errors.Newf(errors.ErrInvalidInput, "relocation.populated_target must be %q or %q, got %q",
			PolicyReplace, PolicyBackup, cfg.Relocation.PopulatedTarget)
	}

	if strings.TrimSpace(cfg.App.NameToken) == "" {
		return errors.New(errors.ErrInvalidInput, "app.name_token must not be empty")
	}
	if cfg.Bundle.Canonical == "" {
		return errors.New(errors.ErrInvalidInput, "bundle.canonical must not be empty")
	}
	if cfg.Feeds.Timeout <= 0 {
		return errors.Newf(errors.ErrInvalidInput, "feeds.timeout must be positive, got %s", cfg.Feeds.Timeout)
	}
	if cfg.Downloads.ChunkSize <= 0 {
		return errors.Newf(errors.ErrInvalidInput, "downloads.chunk_size must be positive, got %d", cfg.Downloads.ChunkSize)
	}
	if cfg.Guard.QuitTimeout < 0 {
		return errors.Newf(errors.ErrInvalidInput, "guard.quit_timeout must not be negative, got %s", cfg.Guard.QuitTimeout)
	}
	return nil
}
