package cmd

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/migrate"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/printer"
	"github.com/ailevelup-ai/heal-mcp/internal/prompt"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

const (
	migrateView = iota
	migrateCopy
	migrateMove
	migrateSync
)

type MigrateCmd struct {
	*internalcmd.BaseCmd
	opts    cmdopts.CmdOptions
	printer output.Printer[migrate.Listing]
}

func NewMigrateCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &MigrateCmd{
		BaseCmd: baseCmd,
		opts:    opts,
		printer: &printer.ListingPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copies, moves or syncs MCP servers between platforms",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	return cobraCmd, nil
}

func (c *MigrateCmd) longDescription() string {
	return `Shows the servers configured for Claude Desktop, Claude Code and Cursor, and copies, moves
or syncs them between those platforms. Overwriting an existing server needs confirmation, and every
file is backed up before it is changed.`
}

// migrateSession holds what one interactive session works with.
type migrateSession struct {
	migrator *migrate.Migrator
	prompter *prompt.Prompter
	locs     platform.Locations
	out      io.Writer
}

func (c *MigrateCmd) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	logger := c.NamedLogger("migrate")

	locs, err := c.opts.Locations()
	if err != nil {
		return err
	}

	manager, err := c.opts.Backups(logger)
	if err != nil {
		return err
	}

	p := c.Prompter(cmd)
	s := &migrateSession{
		migrator: migrate.NewMigrator(logger, manager, p, out),
		prompter: p,
		locs:     locs.Global(),
		out:      out,
	}

	_, _ = term.Heading.Fprintf(out, "\n%s\n", strings.Repeat("=", 80))
	_, _ = term.Heading.Fprintln(out, "🔄 MCP Server Migration Helper")
	_, _ = term.Heading.Fprintf(out, "%s\n", strings.Repeat("=", 80))

	return cancelled(out, c.menu(cmd.Context(), s))
}

func (c *MigrateCmd) menu(ctx context.Context, s *migrateSession) error {
	options := []string{
		"View all servers",
		"Copy a server to another platform",
		"Move a server to another platform",
		"Sync all servers between platforms",
	}

	for {
		idx, err := s.prompter.Choose(ctx, "What would you like to do?", options, "Exit")
		if err != nil {
			return err
		}

		switch idx {
		case -1:
			_, _ = term.Success.Fprintf(s.out, "\nGoodbye!\n\n")
			return nil
		case migrateView:
			err = c.view(s)
		case migrateCopy, migrateMove:
			err = c.transfer(ctx, s, idx == migrateMove)
		case migrateSync:
			err = c.sync(ctx, s)
		}

		if err = report(s.out, err); err != nil {
			return err
		}
	}
}

func (c *MigrateCmd) view(s *migrateSession) error {
	handler := output.NewTextHandler[migrate.Listing](s.out, c.printer)
	c.printer.SetHeader(func(w io.Writer, count int) {
		if count == 0 {
			_, _ = term.Warning.Fprintln(w, "\nNo MCP servers found in any configuration")
		}
	})

	return handler.HandleResults(s.migrator.ListAll(s.locs)...)
}

func (c *MigrateCmd) transfer(ctx context.Context, s *migrateSession, move bool) error {
	src, ok, err := s.selectLocation(ctx, "Select source platform:", nil)
	if err != nil || !ok {
		return err
	}

	servers, err := s.migrator.Servers(src)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		_, _ = term.Warning.Fprintf(s.out, "No servers found in %s\n", src.Platform)
		return nil
	}

	idx, err := s.prompter.Choose(ctx, "Select server:", servers, "Cancel")
	if err != nil || idx < 0 {
		return err
	}

	dst, ok, err := s.selectLocation(ctx, "Select destination platform:", &src)
	if err != nil || !ok {
		return err
	}

	if move {
		return s.migrator.Move(ctx, src, dst, servers[idx])
	}
	return s.migrator.Copy(ctx, src, dst, servers[idx])
}

func (c *MigrateCmd) sync(ctx context.Context, s *migrateSession) error {
	src, ok, err := s.selectLocation(ctx, "Select source platform:", nil)
	if err != nil || !ok {
		return err
	}

	dst, ok, err := s.selectLocation(ctx, "Select destination platform:", &src)
	if err != nil || !ok {
		return err
	}

	_, err = s.migrator.SyncAll(ctx, src, dst)
	return err
}

// selectLocation asks for a platform, leaving out exclude when set. False means the operator cancelled.
func (s *migrateSession) selectLocation(ctx context.Context, title string, exclude *platform.Location) (platform.Location, bool, error) {
	var candidates platform.Locations
	for _, loc := range s.locs {
		if exclude != nil && loc.Path == exclude.Path {
			continue
		}
		candidates = append(candidates, loc)
	}

	options := make([]string, len(candidates))
	for i, loc := range candidates {
		options[i] = string(loc.Platform)
	}

	idx, err := s.prompter.Choose(ctx, title, options, "Cancel")
	if err != nil || idx < 0 {
		return platform.Location{}, false, err
	}

	return candidates[idx], true, nil
}

// report prints an operation's failure so the menu can carry on.
// Only cancellation of the session is returned.
func report(out io.Writer, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, healerrors.ErrCancelled):
		return err
	case errors.Is(err, healerrors.ErrOverwriteDeclined), errors.Is(err, migrate.ErrSyncDeclined):
		_, _ = term.Warning.Fprintln(out, "Operation cancelled")
	default:
		_, _ = term.Failure.Fprintf(out, "✗ %s\n", err)
	}
	return nil
}
