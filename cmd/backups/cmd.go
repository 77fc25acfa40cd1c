package backups

import (
	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/internal/cmd"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
)

func NewCmd(baseCmd *cmd.BaseCmd, opt ...options.CmdOption) (*cobra.Command, error) {
	cobraCmd := &cobra.Command{
		Use:   "backups",
		Short: "Manages the snapshots taken before configuration files are changed",
		Long: "Manages the snapshots heal-mcp takes before it changes a configuration file, " +
			"dealing with listing and restoring them",
	}

	// Sub-commands for: heal-mcp backups
	fns := []func(baseCmd *cmd.BaseCmd, opt ...options.CmdOption) (*cobra.Command, error){
		NewListCmd,    // list
		NewRestoreCmd, // restore
	}

	for _, fn := range fns {
		tempCmd, err := fn(baseCmd, opt...)
		if err != nil {
			return nil, err
		}
		cobraCmd.AddCommand(tempCmd)
	}

	return cobraCmd, nil
}
