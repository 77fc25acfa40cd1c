// Package update rewrites the package arguments of known MCP servers to the versions named in a catalogue.
package update

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

// Backups snapshots a file before it is rewritten.
type Backups interface {
	Create(path string) (string, error)
}

// Change is one rewritten launch argument.
type Change struct {
	Server string `json:"server" yaml:"server"`
	Scope  string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Old    string `json:"old" yaml:"old"`
	New    string `json:"new" yaml:"new"`
}

// Result is the outcome of updating one configuration file.
type Result struct {
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Path     string            `json:"path" yaml:"path"`
	Changes  []Change          `json:"changes" yaml:"changes"`

	// Written is false for dry runs and when there was nothing to change.
	Written bool `json:"written" yaml:"written"`
}

// Updater applies a Catalogue to configuration files.
type Updater struct {
	logger    hclog.Logger
	backups   Backups
	catalogue Catalogue
	out       io.Writer
	dryRun    bool
}

// NewUpdater returns an Updater for the catalogue, reporting progress to out.
func NewUpdater(logger hclog.Logger, backups Backups, catalogue Catalogue, out io.Writer, opt ...Option) (*Updater, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Updater{
		logger:    logger.Named("update"),
		backups:   backups,
		catalogue: catalogue,
		out:       out,
		dryRun:    opts.DryRun,
	}, nil
}

// Update rewrites the catalogue's servers in the file at loc, backing it up first.
// Every servers mapping in the file is considered, including project scoped ones.
func (u *Updater) Update(loc platform.Location) (Result, error) {
	res := Result{Platform: loc.Platform, Path: loc.Path}

	entries := u.catalogue[loc.Platform]
	if len(entries) == 0 {
		return res, nil
	}

	doc, err := config.Load(loc.Path, loc.Layout)
	if err != nil {
		return res, err
	}

	for _, set := range doc.ServerSets() {
		servers, ok := set.Entries()
		if !ok {
			continue
		}
		for _, name := range set.Names() {
			r, ok := entries[name]
			if !ok {
				continue
			}
			if c, ok := rewrite(servers[name], r.New); ok {
				c.Server, c.Scope = name, set.Scope
				res.Changes = append(res.Changes, c)
				u.report(c)
			}
		}
	}

	if len(res.Changes) == 0 || u.dryRun {
		return res, nil
	}

	if _, err := u.backups.Create(loc.Path); err != nil {
		return res, fmt.Errorf("backup failed, nothing was changed: %w", err)
	}
	if err := doc.Save(); err != nil {
		return res, err
	}

	res.Written = true
	u.logger.Info("Updated servers", "path", loc.Path, "count", len(res.Changes))
	_, _ = term.Success.Fprintf(u.out, "✓ Updated %s\n", loc.Path)

	return res, nil
}

// UpdateAll runs Update for each location, skipping files that do not exist.
// Failures are reported and joined, so one broken file does not stop the others.
func (u *Updater) UpdateAll(locs platform.Locations) ([]Result, error) {
	var results []Result
	var errs []error

	for _, loc := range locs {
		_, _ = term.Heading.Fprintf(u.out, "%s\n", strings.ToUpper(loc.Label))

		res, err := u.Update(loc)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			_, _ = term.Warning.Fprintf(u.out, "⚠ Config not found: %s\n\n", loc.Path)
			continue
		case err != nil:
			_, _ = term.Failure.Fprintf(u.out, "✗ Failed to update %s: %s\n\n", loc.Path, err)
			errs = append(errs, fmt.Errorf("%s: %w", loc.Platform, err))
			continue
		}

		if len(res.Changes) == 0 {
			_, _ = fmt.Fprintln(u.out, "  Nothing to update")
		}
		_, _ = fmt.Fprintln(u.out)
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

func (u *Updater) report(c Change) {
	_, _ = fmt.Fprintf(u.out, "  %s %s\n", term.Info.Sprint("→"), term.Bold.Sprint(c.Server))
	_, _ = fmt.Fprintf(u.out, "    %s\n", c.Old)
	_, _ = term.Success.Fprintf(u.out, "    → %s\n", c.New)
}

// rewrite replaces the first package argument of an 'npx' or 'uvx' entry with replacement.
// A package argument is the first non-flag argument containing '@' or '/'.
// Entries already on the replacement are left alone.
func rewrite(raw any, replacement string) (Change, bool) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return Change{}, false
	}

	command, _ := entry["command"].(string)
	if !slices.Contains([]string{string(packages.NPX), string(packages.UVX)}, command) {
		return Change{}, false
	}

	args, ok := entry["args"].([]any)
	if !ok {
		return Change{}, false
	}

	for i, a := range args {
		s, ok := a.(string)
		if !ok || packages.IsFlag(s) {
			continue
		}
		if !strings.ContainsAny(s, "@/") {
			continue
		}
		if s == replacement {
			return Change{}, false
		}
		args[i] = replacement
		return Change{Old: s, New: replacement}, true
	}

	return Change{}, false
}
