package flags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarHome      = "HEAL_MCP_HOME"
	EnvVarBackupDir = "HEAL_MCP_BACKUP_DIR"
	EnvVarLogPath   = "HEAL_MCP_LOG_PATH"
	EnvVarLogLevel  = "HEAL_MCP_LOG_LEVEL"

	// EnvVarUpdateCatalogue names a TOML file which replaces the built-in update catalogue.
	EnvVarUpdateCatalogue = "HEAL_MCP_UPDATE_CATALOGUE"

	// Defaults
	DefaultLogPath  = ""
	DefaultLogLevel = "info"

	// Flag names
	FlagNameHome      = "home"
	FlagNameBackupDir = "backup-dir"
	FlagNameLogPath   = "log-path"
	FlagNameLogLevel  = "log-level"
	FlagNameNoColor   = "no-color"
)

var (
	HomeDir   string
	BackupDir string
	LogPath   string
	LogLevel  string
	NoColor   bool
)

// InitFlags registers the global flags on the given flag set, seeding each value from its environment variable.
func InitFlags(fs *pflag.FlagSet) {
	initHome(fs)
	initBackupDir(fs)
	initLogger(fs)
	fs.BoolVar(&NoColor, FlagNameNoColor, NoColor, "disable colorized output")
}

// ResolveHome returns the home directory that configuration paths are derived from.
// An explicit value (flag or env var) wins over the current user's home directory.
func ResolveHome() (string, error) {
	if h := strings.TrimSpace(HomeDir); h != "" {
		return h, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return home, nil
}

// ResolveBackupDir returns the directory snapshots are written to.
// When unset it is derived from the resolved home directory.
func ResolveBackupDir() (string, error) {
	if d := strings.TrimSpace(BackupDir); d != "" {
		return d, nil
	}

	home, err := ResolveHome()
	if err != nil {
		return "", err
	}

	return DefaultBackupDir(home), nil
}

// DefaultBackupDir returns the backup root under the given home directory.
func DefaultBackupDir(home string) string {
	return filepath.Join(home, ".claude", "skills", "heal_mcp", "backups")
}

func initHome(fs *pflag.FlagSet) {
	if HomeDir == "" {
		HomeDir = strings.TrimSpace(os.Getenv(EnvVarHome))
	}
	fs.StringVar(&HomeDir, FlagNameHome, HomeDir, "home directory used to locate configuration files (defaults to the current user's)")
}

func initBackupDir(fs *pflag.FlagSet) {
	if BackupDir == "" {
		BackupDir = strings.TrimSpace(os.Getenv(EnvVarBackupDir))
	}
	fs.StringVar(&BackupDir, FlagNameBackupDir, BackupDir, "directory for configuration snapshots (defaults to <home>/.claude/skills/heal_mcp/backups)")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogPath)); env != "" {
			LogPath = env
		} else {
			LogPath = DefaultLogPath
		}
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogLevel)); env != "" {
			LogLevel = strings.ToLower(env)
		} else {
			LogLevel = DefaultLogLevel
		}
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for heal-mcp logs")
}
