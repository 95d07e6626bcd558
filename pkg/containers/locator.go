package containers

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/arthur-debert/fnassist/pkg/types"
	"howett.net/plist"
)

// MetadataIdentifierKey holds the bundle identifier in container metadata
const MetadataIdentifierKey = "MCMMetadataIdentifier"

// Finder discovers candidate containers. The CLI uses a Locator; tests
// inject fixed sets.
type Finder interface {
	FindContainers() []types.Container
}

// Locator scans a containers root for the game's containers
type Locator struct {
	FS        types.FS
	Root      string
	NameToken string
	GameDir   string
}

// NewLocator creates a locator for root matching nameToken
func NewLocator(fsys types.FS, root, nameToken, gameDir string) *Locator {
	return &Locator{FS: fsys, Root: root, NameToken: nameToken, GameDir: gameDir}
}

// FindContainers returns the containers that belong to the game.
//
// Containers whose metadata mentions the name token win. Only when there
// are none, containers that merely hold Data/Documents/<GameDir> are used.
// The result is deduplicated and sorted by path.
func (l *Locator) FindContainers() []types.Container {
	logger := logging.GetLogger("containers.locator")

	entries, err := l.FS.ReadDir(l.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("root", l.Root).Msg("containers root does not exist")
		} else {
			logger.Warn().Err(err).Str("root", l.Root).Msg("cannot list containers root")
		}
		return nil
	}

	token := strings.ToLower(l.NameToken)
	var matched, fallback []types.Container

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		root := filepath.Join(l.Root, entry.Name())
		container := types.Container{RootPath: root, GameDir: l.GameDir}

		meta, err := l.readMetadata(root)
		switch {
		case err == nil:
			container.BundleIdentifier = identifierOf(meta)
			if metadataMatches(meta, container.BundleIdentifier, token) {
				logger.Debug().Str("container", root).Str("bundle_id", container.BundleIdentifier).Msg("metadata match")
				matched = append(matched, container)
			}
		case errors.Is(err, fs.ErrNotExist):
			// no metadata, only the fallback check applies
		default:
			logger.Warn().Err(err).Str("container", root).Msg("skipping unreadable container metadata")
		}

		if _, err := l.FS.Lstat(container.GameDataPath()); err == nil {
			fallback = append(fallback, container)
		}
	}

	if len(matched) > 0 {
		return Dedupe(matched)
	}
	if len(fallback) > 0 {
		logger.Info().Int("count", len(fallback)).Msg("no metadata match, using containers holding game data")
	}
	return Dedupe(fallback)
}

func (l *Locator) readMetadata(root string) (map[string]interface{}, error) {
	data, err := l.FS.ReadFile(paths.MetadataPath(root))
	if err != nil {
		return nil, err
	}
	var meta map[string]interface{}
	if _, err := plist.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", paths.ContainerMetadataFile, err)
	}
	return meta, nil
}

func identifierOf(meta map[string]interface{}) string {
	id, _ := meta[MetadataIdentifierKey].(string)
	return id
}

// metadataMatches checks the identifier first, then every decoded value,
// since the metadata schema varies between macOS versions.
func metadataMatches(meta map[string]interface{}, identifier, token string) bool {
	if token == "" {
		return false
	}
	if strings.Contains(strings.ToLower(identifier), token) {
		return true
	}
	for _, v := range meta {
		if strings.Contains(strings.ToLower(stringify(v)), token) {
			return true
		}
	}
	return false
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(val))
		for _, k := range keys {
			parts = append(parts, k+"="+stringify(val[k]))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = stringify(item)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

// Dedupe drops containers sharing a cleaned root path and sorts the rest
// by path. A later duplicate only contributes a missing bundle identifier.
func Dedupe(in []types.Container) []types.Container {
	seen := make(map[string]int, len(in))
	out := make([]types.Container, 0, len(in))
	for _, c := range in {
		c.RootPath = filepath.Clean(c.RootPath)
		if i, ok := seen[c.RootPath]; ok {
			if out[i].BundleIdentifier == "" {
				out[i].BundleIdentifier = c.BundleIdentifier
			}
			continue
		}
		seen[c.RootPath] = len(out)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RootPath < out[j].RootPath })
	return out
}

// StaticFinder always returns the same containers
type StaticFinder []types.Container

// FindContainers implements Finder
func (s StaticFinder) FindContainers() []types.Container {
	return Dedupe(s)
}
