package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/deps"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

type DepsCmd struct {
	*internalcmd.BaseCmd
	CheckOnly bool
	opts      cmdopts.CmdOptions
}

func NewDepsCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DepsCmd{
		BaseCmd: baseCmd,
		opts:    opts,
	}

	cobraCmd := &cobra.Command{
		Use:   "deps",
		Short: "Checks for and installs the runtimes MCP servers depend on",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	cobraCmd.Flags().BoolVar(
		&c.CheckOnly,
		"check-only",
		false,
		"Report dependencies without offering to install anything",
	)

	return cobraCmd, nil
}

func (c *DepsCmd) longDescription() string {
	return `Checks Node.js (node, npm, npx), Python (python3, pip3, uv, uvx) and Homebrew.

Missing Node.js tools are installed with Homebrew when it is available, otherwise manual
installation instructions are shown. Python 3 and uv are offered as optional extras.
Nothing is installed without confirmation.`
}

func (c *DepsCmd) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	_, _ = term.Heading.Fprintln(out, "MCP Dependency Installer")
	term.Rule(out, "=")
	_, _ = fmt.Fprintln(out)

	installer := deps.NewInstaller(c.NamedLogger("deps"), c.opts.Runner, c.Prompter(cmd), out)

	if c.CheckOnly {
		report := installer.Check(cmd.Context())
		if missing := report.MissingRequired(); len(missing) > 0 {
			return fmt.Errorf("%w: %s", healerrors.ErrMissingDependencies, strings.Join(missing, ", "))
		}
		return nil
	}

	ok, err := installer.Run(cmd.Context())
	if err != nil {
		return cancelled(out, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", healerrors.ErrMissingDependencies, strings.Join(installer.Report().MissingRequired(), ", "))
	}

	return nil
}
