package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ailevelup-ai/heal-mcp/cmd/backups"
	"github.com/ailevelup-ai/heal-mcp/internal/cmd"
	cmdopts "github.com/ailevelup-ai/heal-mcp/internal/cmd/options"
	"github.com/ailevelup-ai/heal-mcp/internal/flags"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

var appVersion = "dev" // Set at build time using -ldflags

type RootCmd struct {
	*cmd.BaseCmd

	logFile *os.File
}

// Execute runs the root command, cancelling its context on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	baseCmd := &cmd.BaseCmd{Logger: hclog.NewNullLogger()}
	rootCmd, err := NewRootCmd(baseCmd)
	if err != nil {
		return err
	}

	return rootCmd.ExecuteContext(ctx)
}

// NewRootCmd builds the heal-mcp command tree.
func NewRootCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	c := &RootCmd{BaseCmd: baseCmd}

	rootCmd := &cobra.Command{
		Use:               "heal-mcp <command> [args]",
		Short:             "Inspects, validates, repairs and migrates MCP server configurations.",
		Long:              c.longDescription(),
		SilenceUsage:      true,
		Version:           appVersion,
		PersistentPreRunE: c.configure,
		PersistentPostRun: func(*cobra.Command, []string) {
			c.closeLog()
		},
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewValidateCmd,
		NewVersionsCmd,
		NewHealthCmd,
		NewUpdateCmd,
		NewRepairCmd,
		NewMigrateCmd,
		NewDepsCmd,
		backups.NewCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(baseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `'heal-mcp' finds the MCP configuration files used by Claude Desktop, Claude Code and Cursor,
checks them for mistakes and outdated servers, and helps repair or move server entries between them.

Every file is backed up before it is changed.`
}

// configure applies the global flags once they have been parsed.
func (c *RootCmd) configure(*cobra.Command, []string) error {
	if flags.NoColor {
		term.DisableColor()
	}

	logger, err := c.configureLogger()
	if err != nil {
		return err
	}
	c.Logger = logger

	return nil
}

// configureLogger builds the root logger from the log flags, which default to their environment variables.
func (c *RootCmd) configureLogger() (hclog.Logger, error) {
	logPath := strings.TrimSpace(flags.LogPath)

	// If no log path is set, don't log anywhere.
	var logOutput io.Writer = io.Discard

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		c.logFile = f
		logOutput = f
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "heal-mcp",
		Level:  hclog.LevelFromString(getLogLevel(flags.LogLevel)),
		Output: logOutput,
	})

	return logger, nil
}

func (c *RootCmd) closeLog() {
	if c.logFile != nil {
		_ = c.logFile.Close()
		c.logFile = nil
	}
}

func getLogLevel(lvl string) string {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	switch lvl {
	case "trace", "debug", "info", "warn", "error", "off":
		return lvl
	default:
		return flags.DefaultLogLevel
	}
}
