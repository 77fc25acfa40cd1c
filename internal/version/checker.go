package version

import (
	"context"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/schollz/progressbar/v3"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

// Status is the outcome of checking one server.
type Status string

const (
	// StatusLatestTag means the server is unpinned or asks for '@latest', so it always runs the newest release.
	StatusLatestTag Status = "latest-tag"

	StatusUpToDate Status = Status(UpToDate)
	StatusOutdated Status = Status(Outdated)
	StatusAhead    Status = Status(Ahead)
	StatusUnknown  Status = Status(Unknown)

	// StatusCheckFailed means the registry lookup produced no version.
	StatusCheckFailed Status = "check-failed"

	// StatusLocal means the server does not launch a registry package.
	StatusLocal Status = "local"
)

// Lookup resolves the latest published version of a package.
type Lookup interface {
	Latest(ctx context.Context, pkg packages.Package) (string, bool)
}

// ServerReport is the version state of one server.
type ServerReport struct {
	Server    string             `json:"server" yaml:"server"`
	Scope     string             `json:"scope,omitempty" yaml:"scope,omitempty"`
	Command   string             `json:"command" yaml:"command"`
	Package   string             `json:"package,omitempty" yaml:"package,omitempty"`
	Ecosystem packages.Ecosystem `json:"ecosystem,omitempty" yaml:"ecosystem,omitempty"`
	Current   string             `json:"current,omitempty" yaml:"current,omitempty"`
	Latest    string             `json:"latest,omitempty" yaml:"latest,omitempty"`
	Status    Status             `json:"status" yaml:"status"`
}

// UpdateAvailable reports whether a newer release than the pinned version exists.
func (r ServerReport) UpdateAvailable() bool {
	return r.Status == StatusOutdated
}

// Report is the version state of every server in one configuration file.
type Report struct {
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Label    string            `json:"label" yaml:"label"`
	Path     string            `json:"path" yaml:"path"`
	Servers  []ServerReport    `json:"servers" yaml:"servers"`
}

// Checker compares the packages launched by configured servers with their latest published versions.
type Checker struct {
	logger   hclog.Logger
	lookup   Lookup
	progress io.Writer
}

// NewChecker returns a Checker. When progress is non-nil a progress bar of registry lookups is drawn to it.
func NewChecker(logger hclog.Logger, lookup Lookup, progress io.Writer) *Checker {
	return &Checker{
		logger:   logger.Named("versions"),
		lookup:   lookup,
		progress: progress,
	}
}

// Check loads the file at loc and checks each of its servers.
func (c *Checker) Check(ctx context.Context, loc platform.Location) (Report, error) {
	doc, err := config.Load(loc.Path, loc.Layout)
	if err != nil {
		return Report{}, err
	}

	return c.CheckDocument(ctx, loc, doc), nil
}

// CheckDocument checks every server entry in doc, in document order (root mapping first, then projects).
// Entries which are not objects are left to validation and skipped here.
func (c *Checker) CheckDocument(ctx context.Context, loc platform.Location, doc *config.Document) Report {
	type pending struct {
		scope string
		entry config.ServerEntry
		pkg   packages.Package
	}

	var todo []pending
	remote := 0
	for _, set := range doc.ServerSets() {
		servers, ok := set.Entries()
		if !ok {
			continue
		}
		for _, name := range set.Names() {
			entry, ok := config.EntryFrom(name, servers[name])
			if !ok {
				continue
			}
			pkg := packages.Identify(entry.Command, entry.Args)
			if pkg.Remote() {
				remote++
			}
			todo = append(todo, pending{scope: set.Scope, entry: entry, pkg: pkg})
		}
	}

	bar := c.newBar(remote, loc)

	report := Report{Platform: loc.Platform, Label: loc.Label, Path: loc.Path}
	for _, p := range todo {
		r := c.checkServer(ctx, p.entry, p.pkg)
		r.Scope = p.scope
		report.Servers = append(report.Servers, r)

		if bar != nil && p.pkg.Remote() {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return report
}

func (c *Checker) checkServer(ctx context.Context, entry config.ServerEntry, pkg packages.Package) ServerReport {
	r := ServerReport{
		Server:  entry.Name,
		Command: entry.Command,
		Status:  StatusLocal,
	}

	if !pkg.Remote() {
		return r
	}

	r.Package = pkg.Name
	r.Ecosystem = pkg.Ecosystem
	r.Current = packages.LatestTag
	if pkg.Pinned() {
		r.Current = pkg.Version
	}

	latest, ok := c.lookup.Latest(ctx, pkg)
	if !ok {
		r.Status = StatusCheckFailed
		return r
	}
	r.Latest = latest

	if !pkg.Pinned() {
		r.Status = StatusLatestTag
		return r
	}

	r.Status = Status(Compare(pkg.Version, latest))
	c.logger.Debug("Checked server", "server", entry.Name, "package", pkg.Name, "current", pkg.Version, "latest", latest, "status", r.Status)

	return r
}

func (c *Checker) newBar(total int, loc platform.Location) *progressbar.ProgressBar {
	if c.progress == nil || total == 0 {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Checking "+loc.Label),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Summary counts servers by outcome.
type Summary struct {
	UpToDate    int `json:"upToDate" yaml:"upToDate"`
	Outdated    int `json:"outdated" yaml:"outdated"`
	Local       int `json:"local" yaml:"local"`
	CheckFailed int `json:"checkFailed" yaml:"checkFailed"`
	Other       int `json:"other" yaml:"other"`
}

// Summarize counts the servers of reports. Servers on the latest tag count as up to date.
func Summarize(reports []Report) Summary {
	var s Summary
	for _, rep := range reports {
		for _, r := range rep.Servers {
			switch r.Status {
			case StatusUpToDate, StatusLatestTag:
				s.UpToDate++
			case StatusOutdated:
				s.Outdated++
			case StatusLocal:
				s.Local++
			case StatusCheckFailed:
				s.CheckFailed++
			default:
				s.Other++
			}
		}
	}
	return s
}
