package packages

// Launcher is a command used to run an MCP server package.
type Launcher string

const (
	// NPX represents the 'npx' Node package runner (Node Package Execute) for NodeJS packages.
	NPX Launcher = "npx"

	// UVX represents the 'uvx' UV runner for Python packages.
	UVX Launcher = "uvx"

	// NPMRun is the 'npm' package manager, used to run local package scripts.
	NPMRun Launcher = "npm"

	// PNPM is the 'pnpm' package manager, used to run local package scripts.
	PNPM Launcher = "pnpm"

	Node Launcher = "node"

	Python Launcher = "python"

	Python3 Launcher = "python3"

	Docker Launcher = "docker"

	// Cmd is the Windows command interpreter, used to wrap 'npx' as 'cmd /c npx ...'.
	Cmd Launcher = "cmd"
)

// KnownLaunchers are commands which are expected to be resolved from PATH at launch time,
// so validation does not treat them as missing.
func KnownLaunchers() []Launcher {
	return []Launcher{NPX, UVX, Node, Python, Python3, Docker, Cmd}
}

// IsKnownLauncher reports whether command is one of KnownLaunchers.
func IsKnownLauncher(command string) bool {
	for _, l := range KnownLaunchers() {
		if string(l) == command {
			return true
		}
	}
	return false
}

// IsFlag reports whether a launch argument is a flag rather than a positional token.
func IsFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

// HasYesFlag reports whether args already carry npx's skip-confirmation flag.
func HasYesFlag(args []string) bool {
	for _, a := range args {
		if a == "-y" || a == "--yes" {
			return true
		}
	}
	return false
}
