// Package migrate copies, moves and syncs MCP server entries between platform configuration files.
//
// Only the root servers mapping of each file takes part in a migration; project scoped servers stay where they are.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/files"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

// ErrSameLocation is returned when the source and destination of a migration are the same file.
var ErrSameLocation = errors.New("source and destination are the same configuration")

// ErrSyncDeclined is returned when the operator does not confirm a sync.
var ErrSyncDeclined = errors.New("sync declined")

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Backups snapshots a file before it is rewritten.
type Backups interface {
	Create(path string) (string, error)
}

// Listing is the set of servers configured for one platform.
type Listing struct {
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Label    string            `json:"label" yaml:"label"`
	Path     string            `json:"path" yaml:"path"`
	Servers  []string          `json:"servers" yaml:"servers"`

	// Err is set when the file exists but could not be read.
	Err error `json:"-" yaml:"-"`
}

// Migrator moves server entries between configuration files.
type Migrator struct {
	logger    hclog.Logger
	backups   Backups
	confirmer Confirmer
	out       io.Writer
}

// NewMigrator returns a Migrator which reports progress to out.
func NewMigrator(logger hclog.Logger, backups Backups, confirmer Confirmer, out io.Writer) *Migrator {
	return &Migrator{
		logger:    logger.Named("migrate"),
		backups:   backups,
		confirmer: confirmer,
		out:       out,
	}
}

// Servers returns the sorted names in the root servers mapping of the file at loc.
// A missing file has no servers.
func (m *Migrator) Servers(loc platform.Location) ([]string, error) {
	doc, err := config.Load(loc.Path, loc.Layout)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw, ok := doc.Root()[config.ServersKey]
	if !ok {
		return nil, nil
	}

	return config.ServerSet{Raw: raw}.Names(), nil
}

// ListAll returns the servers of every location that has any, or that could not be read.
func (m *Migrator) ListAll(locs platform.Locations) []Listing {
	var listings []Listing
	for _, loc := range locs {
		names, err := m.Servers(loc)
		if err == nil && len(names) == 0 {
			continue
		}
		listings = append(listings, Listing{
			Platform: loc.Platform,
			Label:    loc.Label,
			Path:     loc.Path,
			Servers:  names,
			Err:      err,
		})
	}
	return listings
}

// Copy adds the server called name from src to dst, leaving src unchanged.
// When dst already has a server of that name the operator must confirm the overwrite.
func (m *Migrator) Copy(ctx context.Context, src platform.Location, dst platform.Location, name string) error {
	if src.Path == dst.Path {
		return ErrSameLocation
	}

	entry, err := m.sourceEntry(src, name)
	if err != nil {
		return err
	}

	doc, servers, err := m.destination(dst)
	if err != nil {
		return err
	}

	if _, exists := servers[name]; exists {
		_, _ = term.Warning.Fprintf(m.out, "\nServer '%s' already exists in %s\n", name, dst.Platform)
		ok, err := m.confirmer.Confirm(ctx, "Overwrite existing server?")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: '%s' in %s", healerrors.ErrOverwriteDeclined, name, dst.Platform)
		}
	}

	servers[name] = config.Clone(entry)

	if err := m.persist(doc); err != nil {
		return err
	}

	m.logger.Info("Copied server", "server", name, "from", src.Path, "to", dst.Path)
	_, _ = term.Success.Fprintf(m.out, "\n✓ Successfully migrated '%s' from %s to %s\n", name, src.Platform, dst.Platform)

	return nil
}

// Move copies the server called name from src to dst, then removes it from src.
// The source is only changed once the destination has been written.
func (m *Migrator) Move(ctx context.Context, src platform.Location, dst platform.Location, name string) error {
	if err := m.Copy(ctx, src, dst, name); err != nil {
		return err
	}

	doc, err := config.Load(src.Path, src.Layout)
	if err != nil {
		return err
	}

	servers, ok := doc.Servers()
	if !ok {
		return nil
	}
	if _, ok := servers[name]; !ok {
		return nil
	}
	delete(servers, name)

	if err := m.persist(doc); err != nil {
		return fmt.Errorf("copied to %s but failed to remove from %s: %w", dst.Platform, src.Platform, err)
	}

	m.logger.Info("Removed server", "server", name, "path", src.Path)
	_, _ = term.Success.Fprintf(m.out, "✓ Removed from %s\n", src.Platform)

	return nil
}

// SyncAll copies every server in src to dst after a single confirmation, overwriting same-named entries.
// Returns the number of servers written.
func (m *Migrator) SyncAll(ctx context.Context, src platform.Location, dst platform.Location) (int, error) {
	if src.Path == dst.Path {
		return 0, ErrSameLocation
	}

	srcDoc, err := config.Load(src.Path, src.Layout)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%w in %s", healerrors.ErrNoServers, src.Platform)
	}
	if err != nil {
		return 0, err
	}

	srcServers, ok := srcDoc.Servers()
	if !ok || len(srcServers) == 0 {
		return 0, fmt.Errorf("%w in %s", healerrors.ErrNoServers, src.Platform)
	}

	doc, servers, err := m.destination(dst)
	if err != nil {
		return 0, err
	}

	_, _ = term.Bold.Fprintf(m.out, "\nThis will sync %d servers from %s to %s\n", len(srcServers), src.Platform, dst.Platform)
	_, _ = term.Warning.Fprintf(m.out, "Servers in destination: %d\n", len(servers))

	ok, err = m.confirmer.Confirm(ctx, "Continue?")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrSyncDeclined
	}

	names := config.ServerSet{Raw: srcServers}.Names()
	for _, name := range names {
		servers[name] = config.Clone(srcServers[name])
		_, _ = fmt.Fprintf(m.out, "  %s %s\n", term.Success.Sprint("✓"), name)
	}

	if err := m.persist(doc); err != nil {
		return 0, err
	}

	m.logger.Info("Synced servers", "count", len(names), "from", src.Path, "to", dst.Path)
	_, _ = term.Success.Fprintln(m.out, "\n✓ Successfully synced all servers")

	return len(names), nil
}

func (m *Migrator) sourceEntry(src platform.Location, name string) (any, error) {
	doc, err := config.Load(src.Path, src.Layout)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: '%s' in %s", healerrors.ErrServerNotFound, name, src.Platform)
	}
	if err != nil {
		return nil, err
	}

	servers, _ := doc.Servers()
	entry, ok := servers[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' in %s", healerrors.ErrServerNotFound, name, src.Platform)
	}

	return entry, nil
}

// destination loads dst for writing, starting a new document when the file does not exist yet.
// A file which exists but cannot be parsed is an error, so it is never replaced by an empty document.
func (m *Migrator) destination(dst platform.Location) (*config.Document, map[string]any, error) {
	doc, err := config.Load(dst.Path, dst.Layout)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		doc = config.New(dst.Path, dst.Layout)
	case err != nil:
		return nil, nil, fmt.Errorf("destination %s is not usable: %w", dst.Platform, err)
	}

	servers, err := doc.EnsureServers()
	if err != nil {
		return nil, nil, err
	}

	return doc, servers, nil
}

// persist backs up the existing file (if any) and then writes doc.
func (m *Migrator) persist(doc *config.Document) error {
	if files.Exists(doc.Path()) {
		if _, err := m.backups.Create(doc.Path()); err != nil {
			return fmt.Errorf("backup failed, nothing was changed: %w", err)
		}
	}

	return doc.Save()
}
