package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/cmd/backups"
	"github.com/ailevelup-ai/heal-mcp/internal/backup"
	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/prompt"
	"github.com/ailevelup-ai/heal-mcp/internal/repair"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

type RepairCmd struct {
	*internalcmd.BaseCmd
	Platform string
	opts     cmdopts.CmdOptions
}

func NewRepairCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RepairCmd{
		BaseCmd: baseCmd,
		opts:    opts,
	}

	cobraCmd := &cobra.Command{
		Use:   "repair",
		Short: "Interactively finds and fixes problems in MCP configurations",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	cobraCmd.Flags().StringVar(
		&c.Platform,
		"platform",
		"",
		"Repair this platform's configuration directly instead of showing the menu (e.g. cursor)",
	)

	return cobraCmd, nil
}

func (c *RepairCmd) longDescription() string {
	return `Scans a configuration for missing commands, npx servers without '-y' and empty environment
variables, and offers a fix for each one. Every fix is confirmed first, and the file is backed up
before it is changed. Backups can be restored from the same menu.`
}

func (c *RepairCmd) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	logger := c.NamedLogger("repair")

	locs, err := c.opts.Locations()
	if err != nil {
		return err
	}
	locs = locs.Global()

	manager, err := c.opts.Backups(logger)
	if err != nil {
		return err
	}

	p := c.Prompter(cmd)
	engine := repair.NewEngine(logger, manager, p, out)

	_, _ = term.Heading.Fprintf(out, "\n%s\n", strings.Repeat("=", 80))
	_, _ = term.Heading.Fprintln(out, "🔧 Interactive MCP Server Repair Tool")
	_, _ = term.Heading.Fprintf(out, "%s\n", strings.Repeat("=", 80))

	if c.Platform != "" {
		loc, err := lookupLocation(locs, c.Platform)
		if err != nil {
			return err
		}
		return cancelled(out, repairLocation(cmd.Context(), engine, loc, out))
	}

	return cancelled(out, c.menu(cmd.Context(), p, engine, manager, locs, out))
}

func (c *RepairCmd) menu(
	ctx context.Context,
	p *prompt.Prompter,
	engine *repair.Engine,
	manager *backup.Manager,
	locs platform.Locations,
	out io.Writer,
) error {
	options := make([]string, 0, len(locs)+1)
	for _, loc := range locs {
		options = append(options, fmt.Sprintf("Repair %s configuration", loc.Label))
	}
	restoreIdx := len(options)
	options = append(options, "View/Restore backups")

	var errs []error
	for {
		idx, err := p.Choose(ctx, "What would you like to do?", options, "Exit")
		if err != nil {
			return errors.Join(append(errs, cancelled(out, err))...)
		}

		switch {
		case idx < 0:
			_, _ = term.Success.Fprintf(out, "\nGoodbye!\n\n")
			return errors.Join(errs...)
		case idx == restoreIdx:
			err = backups.Restore(ctx, p, manager, out)
		default:
			err = repairLocation(ctx, engine, locs[idx], out)
		}

		if errors.Is(err, healerrors.ErrCancelled) {
			return errors.Join(append(errs, cancelled(out, err))...)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
}

// repairLocation runs a repair session for loc, reporting a missing file instead of failing.
func repairLocation(ctx context.Context, engine *repair.Engine, loc platform.Location, out io.Writer) error {
	err := engine.Run(ctx, loc)
	if errors.Is(err, fs.ErrNotExist) {
		_, _ = term.Failure.Fprintf(out, "Configuration file not found: %s\n", loc.Path)
		return nil
	}
	return err
}

// lookupLocation finds the location for a platform name given on the command line.
func lookupLocation(locs platform.Locations, name string) (platform.Location, error) {
	p, err := platform.Parse(name)
	if err != nil {
		return platform.Location{}, err
	}

	loc, ok := locs.Lookup(p)
	if !ok {
		return platform.Location{}, fmt.Errorf("%w: %s", healerrors.ErrUnknownPlatform, name)
	}

	return loc, nil
}

// cancelled reports an operator cancellation, which is not a failure.
func cancelled(out io.Writer, err error) error {
	if errors.Is(err, healerrors.ErrCancelled) {
		_, _ = term.Warning.Fprintf(out, "\n\nOperation cancelled by user\n\n")
		return nil
	}
	return err
}
