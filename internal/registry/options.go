package registry

import (
	"fmt"
	"io"
	"time"
)

// DefaultTimeout bounds each registry client invocation.
const DefaultTimeout = 10 * time.Second

// Option configures a Fetcher.
type Option func(*Options) error

// Options contains optional configuration for a Fetcher.
type Options struct {
	// Timeout bounds each lookup.
	Timeout time.Duration

	// Cache stores successful lookups, nil disables caching.
	Cache Cache

	// Diagnostics receives a line for each failed lookup, nil discards them.
	Diagnostics io.Writer
}

// NewOptions returns Options with defaults, updated by any supplied options in order.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		Timeout:     DefaultTimeout,
		Diagnostics: io.Discard,
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

// WithTimeout sets the per-lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		o.Timeout = d
		return nil
	}
}

// WithCache sets the cache used to store lookups.
func WithCache(c Cache) Option {
	return func(o *Options) error {
		o.Cache = c
		return nil
	}
}

// WithDiagnostics sets where failed lookups are reported.
func WithDiagnostics(w io.Writer) Option {
	return func(o *Options) error {
		if w == nil {
			w = io.Discard
		}
		o.Diagnostics = w
		return nil
	}
}
