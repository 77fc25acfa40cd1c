package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/health"
	"github.com/ailevelup-ai/heal-mcp/internal/printer"
)

type HealthCmd struct {
	*internalcmd.BaseCmd
	Format  internalcmd.OutputFormat
	Probe   bool
	Timeout time.Duration
	opts    cmdopts.CmdOptions
	printer output.Printer[health.Report]
}

func NewHealthCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &HealthCmd{
		BaseCmd: baseCmd,
		Format:  internalcmd.FormatText,
		opts:    opts,
		printer: &printer.HealthPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "health",
		Short: "Shows a health dashboard of every configured MCP server",
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

	cobraCmd.Flags().BoolVar(
		&c.Probe,
		"probe",
		false,
		"Launch each server and check it answers 'initialize' and 'tools/list'",
	)

	cobraCmd.Flags().DurationVar(
		&c.Timeout,
		"timeout",
		health.DefaultProbeTimeout,
		"Time allowed for each probed server to answer",
	)

	return cobraCmd, nil
}

func (c *HealthCmd) longDescription() string {
	return `Checks the system runtimes MCP servers depend on (node, python3, npx, uvx), then reports
each configured server as healthy, warning or failed.

With --probe every server whose command exists is launched over stdio and asked for its tools.`
}

func (c *HealthCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.printer)
	if err != nil {
		return err
	}

	locs, err := c.opts.Locations()
	if err != nil {
		return handler.HandleError(err)
	}

	logger := c.NamedLogger("health")

	var prober health.Prober
	if c.Probe {
		prober = c.opts.Prober
		if prober == nil {
			prober = health.NewStdioProber(logger, c.Timeout, nil)
		}
	}

	dashboard := health.NewDashboard(logger, c.opts.Runner, c.opts.LookPath, prober)
	report := dashboard.Build(cmd.Context(), locs.Global())

	return handler.HandleResult(report)
}
