// Package registry looks up the latest published version of npm and PyPI packages.
package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/cache"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
)

const registryName = "registry"

// Source fetches the latest version of packages in a single ecosystem.
type Source interface {
	Ecosystem() packages.Ecosystem
	Latest(ctx context.Context, name string) (string, error)
}

// Cache stores previous lookups.
type Cache interface {
	Get(key string) (string, bool)
	Put(key string, version string) error
}

// VersionLookup resolves the latest version of a package.
type VersionLookup interface {
	Latest(ctx context.Context, pkg packages.Package) (string, bool)
}

var (
	_ VersionLookup = (*Fetcher)(nil)
	_ Cache         = (*cache.Cache)(nil)
)

// Fetcher dispatches lookups to the Source for each package's ecosystem.
// Lookups never fail: any problem is reported to the diagnostics writer and yields no version.
type Fetcher struct {
	logger  hclog.Logger
	sources map[packages.Ecosystem]Source
	opts    Options
}

// NewFetcher creates a Fetcher over the supplied sources.
func NewFetcher(logger hclog.Logger, sources []Source, opt ...Option) (*Fetcher, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	m := make(map[packages.Ecosystem]Source, len(sources))
	for _, s := range sources {
		eco := s.Ecosystem()
		if _, exists := m[eco]; exists {
			return nil, fmt.Errorf("duplicate source for ecosystem: %s", eco)
		}
		m[eco] = s
	}

	return &Fetcher{
		logger:  logger.Named(registryName),
		sources: m,
		opts:    opts,
	}, nil
}

// Latest returns the latest published version of pkg, or false when it cannot be determined.
func (f *Fetcher) Latest(ctx context.Context, pkg packages.Package) (string, bool) {
	if !pkg.Remote() {
		return "", false
	}

	src, ok := f.sources[pkg.Ecosystem]
	if !ok {
		f.logger.Debug("No source for ecosystem", "ecosystem", pkg.Ecosystem, "package", pkg.Name)
		return "", false
	}

	key := cache.Key(string(pkg.Ecosystem), pkg.Name)
	if f.opts.Cache != nil {
		if v, ok := f.opts.Cache.Get(key); ok {
			return v, true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	f.logger.Debug("Looking up latest version", "ecosystem", pkg.Ecosystem, "package", pkg.Name)

	v, err := src.Latest(ctx, pkg.Name)
	if err != nil {
		f.logger.Warn("Version lookup failed", "ecosystem", pkg.Ecosystem, "package", pkg.Name, "error", err)
		_, _ = fmt.Fprintf(f.opts.Diagnostics, "  Error checking %s package %s: %v\n", pkg.Ecosystem, pkg.Name, err)
		return "", false
	}

	if f.opts.Cache != nil {
		if err := f.opts.Cache.Put(key, v); err != nil {
			f.logger.Warn("Failed to cache version", "key", key, "error", err)
		}
	}

	return v, true
}
