package backups

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/internal/backup"
	internalcmd "github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

// Prompter asks the operator to pick a backup and confirm the restore.
type Prompter interface {
	Choose(ctx context.Context, title string, options []string, cancelLabel string) (int, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

type RestoreCmd struct {
	*internalcmd.BaseCmd
	opts cmdopts.CmdOptions
}

func NewRestoreCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RestoreCmd{
		BaseCmd: baseCmd,
		opts:    opts,
	}

	cobraCmd := &cobra.Command{
		Use:   "restore",
		Short: "Restores a configuration file from a backup",
		Long: "Shows the stored backups, newest first, and restores the chosen one over its original file. " +
			"The current file is backed up before it is replaced.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	return cobraCmd, nil
}

func (c *RestoreCmd) run(cmd *cobra.Command, _ []string) error {
	manager, err := c.opts.Backups(c.NamedLogger("backups"))
	if err != nil {
		return err
	}

	err = Restore(cmd.Context(), c.Prompter(cmd), manager, cmd.OutOrStdout())
	if errors.Is(err, healerrors.ErrCancelled) {
		_, _ = term.Warning.Fprintln(cmd.OutOrStdout(), "\nOperation cancelled")
		return nil
	}

	return err
}

// Restore lets the operator choose one of the manager's snapshots and restores it after confirmation.
// Choosing cancel, or declining, restores nothing and returns nil.
func Restore(ctx context.Context, p Prompter, manager *backup.Manager, out io.Writer) error {
	snapshots, err := manager.List()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		_, _ = term.Warning.Fprintln(out, "\nNo backups found")
		return nil
	}

	options := make([]string, len(snapshots))
	for i, s := range snapshots {
		options[i] = fmt.Sprintf("%s - %s", s.Platform, s.BackupTime)
	}

	idx, err := p.Choose(ctx, "Available backups:", options, "Cancel")
	if err != nil || idx < 0 {
		return err
	}
	s := snapshots[idx]

	ok, err := p.Confirm(ctx, fmt.Sprintf("Restore %s backup from %s?", s.Platform, s.BackupTime))
	if err != nil || !ok {
		return err
	}

	current, err := manager.Restore(s.Dir, s.Platform)
	if err != nil {
		_, _ = term.Failure.Fprintf(out, "✗ Failed to restore backup: %s\n", err)
		return err
	}

	_, _ = term.Success.Fprintf(out, "✓ Backup restored to %s\n", s.OriginalPath)
	if current != "" {
		_, _ = fmt.Fprintf(out, "  Previous version saved to %s\n", current)
	}

	return nil
}
