// Package options configures the dependencies heal-mcp commands are built with.
package options

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/backup"
	"github.com/ailevelup-ai/heal-mcp/internal/flags"
	"github.com/ailevelup-ai/heal-mcp/internal/health"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
	"github.com/ailevelup-ai/heal-mcp/internal/version"
)

type CmdOption func(*CmdOptions) error

// CmdOptions holds what commands need from their environment.
// Resolvers run when a command executes, after flags have been parsed.
type CmdOptions struct {
	// Locations resolves the configuration files commands operate on.
	Locations func() (platform.Locations, error)

	// BackupDir resolves the directory snapshots are written to.
	BackupDir func() (string, error)

	Runner   shell.Runner
	LookPath shell.LookPathFunc
	Clock    func() time.Time

	// VersionLookup overrides the registry lookup used by 'versions', nil builds one from Runner.
	VersionLookup version.Lookup

	// Prober overrides how 'health --probe' launches servers, nil launches them over stdio.
	Prober health.Prober
}

func defaultOptions() CmdOptions {
	return CmdOptions{
		Locations: DefaultLocations,
		BackupDir: flags.ResolveBackupDir,
		Runner:    shell.ExecRunner{},
		LookPath:  exec.LookPath,
		Clock:     time.Now,
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

// DefaultLocations returns the known configuration files under the resolved home directory
// and the current working directory.
func DefaultLocations() (platform.Locations, error) {
	home, err := flags.ResolveHome()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	return platform.DefaultLocations(home, cwd), nil
}

// Backups returns a backup manager rooted at the resolved backup directory.
func (o CmdOptions) Backups(logger hclog.Logger) (*backup.Manager, error) {
	dir, err := o.BackupDir()
	if err != nil {
		return nil, err
	}

	return backup.NewManager(logger, dir, backup.WithClock(o.Clock))
}

// WithLocations fixes the configuration files commands operate on.
func WithLocations(locs platform.Locations) CmdOption {
	return func(o *CmdOptions) error {
		o.Locations = func() (platform.Locations, error) {
			return locs, nil
		}
		return nil
	}
}

// WithBackupDir fixes the directory snapshots are written to.
func WithBackupDir(dir string) CmdOption {
	return func(o *CmdOptions) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return fmt.Errorf("backup directory cannot be empty")
		}
		o.BackupDir = func() (string, error) {
			return dir, nil
		}
		return nil
	}
}

func WithRunner(r shell.Runner) CmdOption {
	return func(o *CmdOptions) error {
		if r == nil {
			return fmt.Errorf("runner cannot be nil")
		}
		o.Runner = r
		return nil
	}
}

func WithLookPath(fn shell.LookPathFunc) CmdOption {
	return func(o *CmdOptions) error {
		if fn == nil {
			return fmt.Errorf("look path function cannot be nil")
		}
		o.LookPath = fn
		return nil
	}
}

func WithClock(now func() time.Time) CmdOption {
	return func(o *CmdOptions) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = now
		return nil
	}
}

func WithVersionLookup(l version.Lookup) CmdOption {
	return func(o *CmdOptions) error {
		o.VersionLookup = l
		return nil
	}
}

func WithProber(p health.Prober) CmdOption {
	return func(o *CmdOptions) error {
		o.Prober = p
		return nil
	}
}
