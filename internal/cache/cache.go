// Package cache stores the results of registry version lookups between runs.
package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/files"
	"github.com/ailevelup-ai/heal-mcp/internal/perms"
)

// FileName is the name of the cache file within the cache directory.
const FileName = "versions.toml"

// Cache manages cached latest versions, keyed by '<ecosystem>::<name>'.
// NewCache should be used to create instances of Cache.
type Cache struct {
	// dir is the directory where the cache file is stored.
	dir string

	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// enabled determines if caching is enabled.
	enabled bool

	// refresh ignores existing entries when true.
	refresh bool

	now func() time.Time

	// entries is loaded lazily on first use.
	entries map[string]Entry
	loaded  bool

	// logger is used for logging cache operations.
	logger hclog.Logger
}

// Entry is a single cached lookup.
type Entry struct {
	Version   string    `toml:"version"`
	FetchedAt time.Time `toml:"fetched_at"`
}

type document struct {
	Versions map[string]Entry `toml:"versions"`
}

// NewCache creates a new cache instance for version lookups.
func NewCache(logger hclog.Logger, opts ...Option) (*Cache, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	// Only create cache directory if caching is enabled.
	if options.enabled {
		if err := files.EnsureAtLeastRegularDir(options.dir); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &Cache{
		dir:     options.dir,
		logger:  logger.Named("cache"),
		enabled: options.enabled,
		refresh: options.refreshCache,
		ttl:     options.ttl,
		now:     options.now,
	}, nil
}

// Key returns the cache key for a package.
func Key(ecosystem string, name string) string {
	return ecosystem + "::" + name
}

// Path returns the location of the cache file.
func (c *Cache) Path() string {
	return filepath.Join(c.dir, FileName)
}

// Get returns the cached version for key, if present and not expired.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	if c.refresh {
		c.logger.Debug("Cache refresh requested", "key", key)
		return "", false
	}

	c.load()

	e, ok := c.entries[key]
	if !ok {
		c.logger.Debug("Cache miss", "key", key)
		return "", false
	}

	if c.isExpired(e) {
		c.logger.Debug("Cache expired", "key", key, "fetched_at", e.FetchedAt)
		return "", false
	}

	c.logger.Debug("Using cached version", "key", key, "version", e.Version)
	return e.Version, true
}

// Put stores version for key and persists the cache file.
func (c *Cache) Put(key string, version string) error {
	if !c.enabled {
		return nil
	}

	c.load()
	c.entries[key] = Entry{Version: version, FetchedAt: c.now().UTC()}

	return c.save()
}

// load reads the cache file once. A missing or corrupt file starts an empty cache.
func (c *Cache) load() {
	if c.loaded {
		return
	}
	c.loaded = true
	c.entries = map[string]Entry{}

	var doc document
	_, err := toml.DecodeFile(c.Path(), &doc)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return
	case err != nil:
		c.logger.Warn("Ignoring unreadable cache file", "path", c.Path(), "error", err)
		return
	}

	for k, v := range doc.Versions {
		c.entries[k] = v
	}
}

func (c *Cache) save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(document{Versions: c.entries}); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	// Create temporary file first.
	tmpFile, err := os.CreateTemp(c.dir, "tmp-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath) // Clean up on any error.
	}()

	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmpFile.Chmod(perms.RegularFile); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to set cache file permissions: %w", err)
	}
	_ = tmpFile.Close()

	// Atomically rename to final location.
	if err := os.Rename(tmpPath, c.Path()); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	c.logger.Debug("Saved cache", "path", c.Path(), "entries", len(c.entries))
	return nil
}

// isExpired checks if an entry is older than the TTL.
func (c *Cache) isExpired(e Entry) bool {
	return c.now().Sub(e.FetchedAt) > c.ttl
}
