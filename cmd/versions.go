package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/internal/cache"
	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/printer"
	"github.com/ailevelup-ai/heal-mcp/internal/registry"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
	"github.com/ailevelup-ai/heal-mcp/internal/version"
)

type VersionsCmd struct {
	*internalcmd.BaseCmd
	Format       internalcmd.OutputFormat
	Timeout      time.Duration
	CacheTTL     time.Duration
	NoCache      bool
	RefreshCache bool
	NoProgress   bool
	opts         cmdopts.CmdOptions
	printer      output.Printer[version.Report]
}

func NewVersionsCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &VersionsCmd{
		BaseCmd: baseCmd,
		Format:  internalcmd.FormatText,
		opts:    opts,
		printer: &printer.VersionsPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "versions",
		Short: "Checks configured MCP servers for newer package versions",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	cobraCmd.Flags().DurationVar(
		&c.Timeout,
		"timeout",
		registry.DefaultTimeout,
		"Time allowed for each registry lookup",
	)

	cobraCmd.Flags().DurationVar(
		&c.CacheTTL,
		"cache-ttl",
		cache.DefaultTTL,
		"How long a looked up version is reused",
	)

	cobraCmd.Flags().BoolVar(
		&c.NoCache,
		"no-cache",
		false,
		"Disable the version lookup cache",
	)

	cobraCmd.Flags().BoolVar(
		&c.RefreshCache,
		"refresh-cache",
		false,
		"Ignore cached versions and look every package up again",
	)

	cobraCmd.Flags().BoolVar(
		&c.NoProgress,
		"no-progress",
		false,
		"Do not draw a progress bar while looking up versions",
	)

	return cobraCmd, nil
}

func (c *VersionsCmd) longDescription() string {
	return `Identifies the npm or PyPI package each MCP server launches and compares the pinned version
with the latest published one, using 'npm view' and 'pip index versions'.

Claude Desktop, Claude Code and Cursor (global) configurations are checked.`
}

func (c *VersionsCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.printer)
	if err != nil {
		return err
	}

	locs, err := c.opts.Locations()
	if err != nil {
		return handler.HandleError(err)
	}

	lookup, err := c.lookup(cmd.ErrOrStderr())
	if err != nil {
		return handler.HandleError(err)
	}

	var progress io.Writer
	if !c.NoProgress {
		progress = cmd.ErrOrStderr()
	}
	checker := version.NewChecker(c.NamedLogger("versions"), lookup, progress)

	diag := cmd.ErrOrStderr()
	var reports []version.Report
	for _, loc := range locs.Global() {
		rep, err := checker.Check(cmd.Context(), loc)
		var syntaxErr *config.SyntaxError
		switch {
		case err == nil:
			reports = append(reports, rep)
		case errors.Is(err, fs.ErrNotExist):
			_, _ = term.Warning.Fprintf(diag, "⚠️  Config file not found: %s\n", loc.Path)
		case errors.As(err, &syntaxErr):
			_, _ = term.Failure.Fprintf(diag, "❌ Invalid JSON in config: %s (%s)\n", loc.Path, syntaxErr)
		default:
			_, _ = term.Failure.Fprintf(diag, "❌ Error checking %s: %s\n", loc.Label, err)
		}
	}

	c.printer.SetHeader(func(w io.Writer, count int) {
		_, _ = term.Heading.Fprintln(w, "🔍 MCP Server Version Checker")
		term.Rule(w, "=")
		if count == 0 {
			_, _ = term.Warning.Fprintf(w, "\n⚠️  No MCP configurations found\n\n")
		}
	})
	c.printer.SetFooter(func(w io.Writer, count int) {
		if count > 0 {
			printer.PrintVersionSummary(w, reports)
		}
	})

	return handler.HandleResults(reports...)
}

// lookup returns the injected version lookup, or one backed by the package registries and the version cache.
func (c *VersionsCmd) lookup(diagnostics io.Writer) (version.Lookup, error) {
	if c.opts.VersionLookup != nil {
		return c.opts.VersionLookup, nil
	}

	logger := c.NamedLogger("versions")

	versionCache, err := cache.NewCache(
		logger,
		cache.WithCaching(!c.NoCache),
		cache.WithRefreshCache(c.RefreshCache),
		cache.WithTTL(c.CacheTTL),
	)
	if err != nil {
		return nil, err
	}

	sources := []registry.Source{
		registry.NewNPM(c.opts.Runner),
		registry.NewPyPI(c.opts.Runner),
	}

	fetcher, err := registry.NewFetcher(
		logger,
		sources,
		registry.WithTimeout(c.Timeout),
		registry.WithCache(versionCache),
		registry.WithDiagnostics(diagnostics),
	)
	if err != nil {
		return nil, err
	}

	return fetcher, nil
}
