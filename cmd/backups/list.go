package backups

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/internal/backup"
	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/output"
	"github.com/ailevelup-ai/heal-mcp/internal/printer"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

type ListCmd struct {
	*internalcmd.BaseCmd
	Format  internalcmd.OutputFormat
	opts    cmdopts.CmdOptions
	printer output.Printer[backup.Snapshot]
}

func NewListCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ListCmd{
		BaseCmd: baseCmd,
		Format:  internalcmd.FormatText,
		opts:    opts,
		printer: &printer.SnapshotPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists stored backups, newest first",
		Long:  "Lists the configuration snapshots stored in the backup directory, newest first",
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

func (c *ListCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.printer)
	if err != nil {
		return err
	}

	manager, err := c.opts.Backups(c.NamedLogger("backups"))
	if err != nil {
		return handler.HandleError(err)
	}

	snapshots, err := manager.List()
	if err != nil {
		return handler.HandleError(err)
	}

	c.printer.SetHeader(func(w io.Writer, count int) {
		if count == 0 {
			_, _ = term.Warning.Fprintf(w, "No backups found in %s\n", manager.Root())
			return
		}
		_, _ = term.Bold.Fprintf(w, "Available backups (%s):\n", manager.Root())
	})

	return handler.HandleResults(snapshots...)
}
