package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/printer"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
	"github.com/ailevelup-ai/heal-mcp/internal/validate"
)

type ValidateCmd struct {
	*internalcmd.BaseCmd
	Format    internalcmd.OutputFormat
	locations func() (platform.Locations, error)
	lookPath  shell.LookPathFunc
	printer   output.Printer[validate.Result]
}

func NewValidateCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ValidateCmd{
		BaseCmd:   baseCmd,
		Format:    internalcmd.FormatText,
		locations: opts.Locations,
		lookPath:  opts.LookPath,
		printer:   &printer.ValidationPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validates every MCP configuration file that exists",
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

	return cobraCmd, nil
}

func (c *ValidateCmd) longDescription() string {
	return `Checks the JSON syntax and structure of every MCP configuration file that exists,
and warns about common mistakes such as npx without '-y' or commands missing from PATH.

Exits with a non-zero status when no configuration is found or any configuration has issues.`
}

func (c *ValidateCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.printer)
	if err != nil {
		return err
	}

	locs, err := c.locations()
	if err != nil {
		return handler.HandleError(err)
	}

	validator, err := validate.NewValidator(c.NamedLogger("validate"), validate.WithLookPath(c.lookPath))
	if err != nil {
		return handler.HandleError(err)
	}

	existing := locs.Existing()
	if len(existing) == 0 {
		if c.Format == internalcmd.FormatText {
			printNoConfigs(cmd.OutOrStdout(), locs)
		} else if err := handler.HandleError(healerrors.ErrNoConfigs); err != nil {
			return err
		}
		return healerrors.ErrNoConfigs
	}

	results := make([]validate.Result, 0, len(existing))
	for _, loc := range existing {
		results = append(results, validator.File(loc))
	}
	failed := validate.Failed(results)

	c.printer.SetHeader(func(w io.Writer, _ int) {
		_, _ = term.Heading.Fprintln(w, "MCP Configuration Validator")
		term.Rule(w, "=")
	})
	c.printer.SetFooter(func(w io.Writer, _ int) {
		_, _ = fmt.Fprintln(w)
		term.Rule(w, "=")
		if len(failed) == 0 {
			_, _ = term.Success.Fprintln(w, "✓ All configurations are valid!")
			return
		}
		_, _ = term.Failure.Fprintln(w, "✗ Some configurations have issues")
		_, _ = fmt.Fprintln(w, "\nFix the issues above and run 'heal-mcp validate' again.")
	})

	if err := handler.HandleResults(results...); err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w (%d of %d)", healerrors.ErrInvalidConfigs, len(failed), len(results))
	}

	return nil
}

func printNoConfigs(w io.Writer, locs platform.Locations) {
	_, _ = term.Warning.Fprintln(w, "No MCP configuration files found.")
	_, _ = fmt.Fprintln(w, "\nSearched locations:")
	for _, loc := range locs {
		_, _ = fmt.Fprintf(w, "  • %s\n", loc.Path)
	}
}
