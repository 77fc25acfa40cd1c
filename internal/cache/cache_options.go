package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/ailevelup-ai/heal-mcp/internal/files"
)

// DefaultTTL is how long a looked up version is trusted before it is fetched again.
const DefaultTTL = time.Hour

// Option defines a functional option for configuring Cache.
type Option func(*Options) error

// Options contains optional configuration for the cache.
type Options struct {
	// dir is the directory where the cache file is stored.
	dir string

	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// enabled determines if caching is enabled.
	enabled bool

	// refreshCache ignores existing entries when true, while still storing new ones.
	refreshCache bool

	// now returns the current time.
	now func() time.Time
}

// NewOptions returns Options with defaults, updated by any supplied options in order.
func NewOptions(opts ...Option) (Options, error) {
	dir, err := files.UserSpecificCacheDir()
	if err != nil {
		return Options{}, err
	}

	o := Options{
		dir:     dir,
		ttl:     DefaultTTL,
		enabled: true,
		now:     time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithDirectory sets the cache directory.
func WithDirectory(dir string) Option {
	return func(o *Options) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return fmt.Errorf("cache directory cannot be empty")
		}
		o.dir = dir
		return nil
	}
}

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("TTL must be positive, got %v", ttl)
		}
		o.ttl = ttl
		return nil
	}
}

// WithCaching configures whether caching is enabled.
func WithCaching(enabled bool) Option {
	return func(o *Options) error {
		o.enabled = enabled
		return nil
	}
}

// WithRefreshCache forces cache refresh.
func WithRefreshCache(refreshCache bool) Option {
	return func(o *Options) error {
		o.refreshCache = refreshCache
		return nil
	}
}

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.now = now
		return nil
	}
}
