package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/flags"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
	"github.com/ailevelup-ai/heal-mcp/internal/update"
)

type UpdateCmd struct {
	*internalcmd.BaseCmd
	Catalogue string
	DryRun    bool
	opts      cmdopts.CmdOptions
}

func NewUpdateCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &UpdateCmd{
		BaseCmd: baseCmd,
		opts:    opts,
	}

	cobraCmd := &cobra.Command{
		Use:   "update",
		Short: "Updates known MCP servers to the package versions in the update catalogue",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	cobraCmd.Flags().StringVar(
		&c.Catalogue,
		"catalogue",
		strings.TrimSpace(os.Getenv(flags.EnvVarUpdateCatalogue)),
		fmt.Sprintf("Path to a TOML update catalogue used instead of the built-in one (env: %s)", flags.EnvVarUpdateCatalogue),
	)

	cobraCmd.Flags().BoolVar(
		&c.DryRun,
		"dry-run",
		false,
		"Show the changes without writing them",
	)

	return cobraCmd, nil
}

func (c *UpdateCmd) longDescription() string {
	return `Rewrites the package argument of each MCP server listed in the update catalogue, for the
Claude Desktop, Claude Code and Cursor (global) configurations. Each file is backed up before it is changed.

A catalogue maps platform and server name to the replacement package argument:

  [claude-desktop.github]
  new = "@modelcontextprotocol/server-github@0.6.2"`
}

func (c *UpdateCmd) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	logger := c.NamedLogger("update")

	catalogue, err := c.catalogue()
	if err != nil {
		return err
	}

	locs, err := c.opts.Locations()
	if err != nil {
		return err
	}

	backups, err := c.opts.Backups(logger)
	if err != nil {
		return err
	}

	updater, err := update.NewUpdater(logger, backups, catalogue, out, update.WithDryRun(c.DryRun))
	if err != nil {
		return err
	}

	_, _ = term.Heading.Fprintln(out, "🔄 MCP Server Updater")
	term.Rule(out, "=")
	if c.DryRun {
		_, _ = term.Warning.Fprintln(out, "Dry run: no files will be changed")
	}
	_, _ = fmt.Fprintln(out)

	results, err := updater.UpdateAll(locs.Global())

	changed := 0
	for _, r := range results {
		changed += len(r.Changes)
	}

	term.Rule(out, "=")
	switch {
	case changed == 0:
		_, _ = term.Success.Fprintln(out, "✓ All servers already match the catalogue")
	case c.DryRun:
		_, _ = term.Warning.Fprintf(out, "%d server%s would be updated\n", changed, term.Plural(changed))
	default:
		_, _ = term.Success.Fprintf(out, "✓ Updated %d server%s\n", changed, term.Plural(changed))
		_, _ = fmt.Fprintf(out, "\nBackups saved to: %s\n", backups.Root())
		_, _ = term.Bold.Fprintln(out, "\nNext steps:")
		_, _ = fmt.Fprintln(out, "  1. Restart Claude Desktop, Claude Code and Cursor")
		_, _ = fmt.Fprintf(out, "  2. Run: %s\n", term.Accent.Sprint("heal-mcp versions"))
	}

	return err
}

func (c *UpdateCmd) catalogue() (update.Catalogue, error) {
	if c.Catalogue == "" {
		return update.DefaultCatalogue()
	}
	return update.LoadCatalogue(c.Catalogue)
}
