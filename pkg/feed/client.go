package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/fnassist/pkg/config"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Release is the subset of a GitHub release fnassist reads
type Release struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	HTMLURL    string `json:"html_url"`
	Body       string `json:"body"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
}

// UpdateInfo is the result of an update check
type UpdateInfo struct {
	Available      bool   `json:"available" yaml:"available"`
	CurrentVersion string `json:"current_version" yaml:"current_version"`
	LatestVersion  string `json:"latest_version" yaml:"latest_version"`
	ReleaseURL     string `json:"release_url,omitempty" yaml:"release_url,omitempty"`
}

// Item is one downloadable bundle from the listing
type Item struct {
	Name        string `json:"name" yaml:"name"`
	DownloadURL string `json:"download_url" yaml:"download_url"`
	Size        int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

type gist struct {
	Files map[string]struct {
		RawURL string `json:"raw_url"`
	} `json:"files"`
}

// Client fetches feed documents
type Client struct {
	HTTP      *http.Client
	Cache     *Cache
	TTL       time.Duration
	UserAgent string

	ReleasesURL string
	ListingURL  string
	ArchiveURL  string

	Now func() time.Time
}

// NewClient creates a client from configuration. cache may be nil.
func NewClient(cfg config.Feeds, cache *Cache) *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: cfg.Timeout},
		Cache:       cache,
		TTL:         cfg.CacheTTL,
		UserAgent:   cfg.UserAgent,
		ReleasesURL: cfg.ReleasesURL,
		ListingURL:  cfg.ListingURL,
		ArchiveURL:  cfg.ArchiveURL,
	}
}

// LatestRelease reads the release feed
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	var release Release
	if err := c.getJSON(ctx, c.ReleasesURL, &release); err != nil {
		return nil, err
	}
	if release.TagName == "" {
		return nil, errors.New(errors.ErrNetwork, "release feed has no tag_name")
	}
	return &release, nil
}

// CheckForUpdate compares the latest release with current
func (c *Client) CheckForUpdate(ctx context.Context, current string) (*UpdateInfo, error) {
	release, err := c.LatestRelease(ctx)
	if err != nil {
		return nil, err
	}
	latest := strings.TrimLeft(release.TagName, "vV")
	return &UpdateInfo{
		Available:      IsNewer(latest, current),
		CurrentVersion: current,
		LatestVersion:  latest,
		ReleaseURL:     release.HTMLURL,
	}, nil
}

// Listing returns the downloadable bundles. The listing URL may serve the
// item array itself or a gist whose list.json file holds it. Items without
// a name or URL are dropped; missing sizes are asked for with HEAD.
func (c *Client) Listing(ctx context.Context) ([]Item, error) {
	body, err := c.get(ctx, c.ListingURL)
	if err != nil {
		return nil, err
	}

	var raw []Item
	if err := json.Unmarshal(body, &raw); err != nil {
		rawURL, gistErr := gistFile(body, "list.json")
		if gistErr != nil {
			return nil, gistErr
		}
		if err := c.getJSON(ctx, rawURL, &raw); err != nil {
			return nil, err
		}
	}

	items := make([]Item, 0, len(raw))
	for _, item := range raw {
		if item.Name == "" || item.DownloadURL == "" {
			continue
		}
		if item.Size <= 0 {
			item.Size = c.headSize(ctx, item.DownloadURL)
		}
		items = append(items, item)
	}
	return items, nil
}

// ArchiveInfo returns the first archive descriptor, or nil when the feed
// has none
func (c *Client) ArchiveInfo(ctx context.Context) (map[string]interface{}, error) {
	body, err := c.get(ctx, c.ArchiveURL)
	if err != nil {
		return nil, err
	}
	rawURL, err := gistFile(body, "archive.json")
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entries []map[string]interface{}
	if err := c.getJSON(ctx, rawURL, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// FindItem picks the item whose name best matches query. Exact
// case-insensitive matches win, then the closest fuzzy match.
func FindItem(items []Item, query string) (*Item, error) {
	if len(items) == 0 {
		return nil, errors.New(errors.ErrNotFound, "the listing is empty")
	}
	if query == "" {
		return &items[0], nil
	}

	names := make([]string, len(items))
	for i, item := range items {
		if strings.EqualFold(item.Name, query) {
			return &items[i], nil
		}
		names[i] = item.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no download matches %q", query)
	}
	sort.Sort(ranks)
	return &items[ranks[0].OriginalIndex], nil
}

func gistFile(body []byte, name string) (string, error) {
	var doc gist
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", errors.Wrap(err, errors.ErrNetwork, "unexpected feed document")
	}
	file, ok := doc.Files[name]
	if !ok || file.RawURL == "" {
		return "", errors.Newf(errors.ErrNotFound, "feed has no %s", name)
	}
	return file.RawURL, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, errors.ErrNetwork, "cannot decode %s", url)
	}
	return nil
}

// get fetches url through the cache
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	logger := logging.GetLogger("feed").With().Str("url", url).Logger()

	var cached *CacheEntry
	if c.Cache != nil {
		entry, err := c.Cache.Get(url)
		if err != nil {
			logger.Warn().Err(err).Msg("cache read failed")
		}
		cached = entry
	}
	if cached != nil && c.now().Sub(cached.FetchedAt) < c.TTL {
		logger.Debug().Msg("serving fresh cache entry")
		return cached.Body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid feed URL %q", url)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if cached != nil && cached.ETag != "" {
		req.Header.Set("If-None-Match", cached.ETag)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return c.fallback(cached, errors.Wrapf(err, errors.ErrNetwork, "failed to fetch %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		if err := c.Cache.Touch(url); err != nil {
			logger.Warn().Err(err).Msg("cache touch failed")
		}
		logger.Debug().Msg("not modified")
		return cached.Body, nil
	}
	if resp.StatusCode != http.StatusOK {
		return c.fallback(cached, errors.Newf(errors.ErrNetwork, "%s returned HTTP %d", url, resp.StatusCode).
			WithDetail("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fallback(cached, errors.Wrapf(err, errors.ErrNetwork, "failed to read %s", url))
	}
	if c.Cache != nil {
		if err := c.Cache.Put(url, body, resp.Header.Get("ETag")); err != nil {
			logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return body, nil
}

func (c *Client) fallback(cached *CacheEntry, err error) ([]byte, error) {
	if cached == nil {
		return nil, err
	}
	logger := logging.GetLogger("feed")
	logger.Warn().Err(err).
		Time("fetched_at", cached.FetchedAt).
		Msg("network failed, serving expired cache entry")
	return cached.Body, nil
}

// headSize asks the server for a content length; 0 when unknown
func (c *Client) headSize(ctx context.Context, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.client().Do(req)
	if err != nil {
		logger := logging.GetLogger("feed")
		logger.Debug().Err(err).Str("url", url).Msg("size lookup failed")
		return 0
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.ContentLength < 0 {
		return 0
	}
	return resp.ContentLength
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
