package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/internal/prompt"
)

// BaseCmd carries what every heal-mcp command shares.
type BaseCmd struct {
	Logger hclog.Logger
}

// Prompter returns a Prompter reading answers from the command's input and asking on its output.
func (c *BaseCmd) Prompter(cmd *cobra.Command) *prompt.Prompter {
	return prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
}

// NamedLogger returns a sub-logger for a command, falling back to a null logger when none was configured.
func (c *BaseCmd) NamedLogger(name string) hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger.Named(name)
}
