package deps

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/shell"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Installer checks dependencies and offers to install the missing ones.
type Installer struct {
	logger    hclog.Logger
	runner    shell.Runner
	confirmer Confirmer
	out       io.Writer
	report    Report
}

// NewInstaller returns an Installer which runs commands with runner and writes progress to out.
func NewInstaller(logger hclog.Logger, runner shell.Runner, confirmer Confirmer, out io.Writer) *Installer {
	return &Installer{
		logger:    logger.Named("deps"),
		runner:    runner,
		confirmer: confirmer,
		out:       out,
	}
}

// Report returns the most recent findings.
func (i *Installer) Report() Report {
	return i.report
}

// Check checks every tool and prints the findings.
func (i *Installer) Check(ctx context.Context) Report {
	_, _ = term.Heading.Fprintln(i.out, "Checking system dependencies...")
	_, _ = fmt.Fprintln(i.out)

	i.report = Check(ctx, i.runner, Tools())
	PrintReport(i.out, i.report)

	return i.report
}

// Run checks dependencies, offers to install missing required tools, then optional ones.
// Returns false when required tools are still missing.
func (i *Installer) Run(ctx context.Context) (bool, error) {
	i.Check(ctx)

	ok, err := i.InstallRequired(ctx)
	if err != nil || !ok {
		if err == nil {
			_, _ = term.Warning.Fprintln(i.out, "\nPlease install the missing dependencies and run this command again.")
		}
		return false, err
	}

	if err := i.OfferOptional(ctx); err != nil {
		return true, err
	}

	_, _ = term.Success.Fprintln(i.out, "\nSetup complete!")
	_, _ = fmt.Fprintln(i.out, "\nNext steps:")
	_, _ = fmt.Fprintln(i.out, "  1. Restart your terminal to ensure PATH is updated")
	_, _ = fmt.Fprintf(i.out, "  2. Verify installation: %s\n", term.Accent.Sprint("node --version && npm --version"))
	_, _ = fmt.Fprintln(i.out, "  3. Configure your MCP servers")
	_, _ = fmt.Fprintf(i.out, "  4. Run health check: %s\n", term.Accent.Sprint("heal-mcp health"))

	return true, nil
}

// InstallRequired offers to install Node.js through Homebrew when any required tool is missing.
// Without Homebrew it prints manual instructions instead.
func (i *Installer) InstallRequired(ctx context.Context) (bool, error) {
	missing := i.report.MissingRequired()
	if len(missing) == 0 {
		_, _ = term.Success.Fprintln(i.out, "All critical dependencies are installed!")
		return true, nil
	}

	_, _ = term.Failure.Fprintln(i.out, "\nMissing critical dependencies:")
	for _, name := range missing {
		_, _ = fmt.Fprintf(i.out, "  • %s\n", name)
	}

	if !i.report.Found(ToolBrew) {
		_, _ = term.Warning.Fprintln(i.out, "\nHomebrew not detected.")
		_, _ = fmt.Fprintln(i.out, "For the best experience, install Homebrew first:")
		_, _ = fmt.Fprintf(i.out, "  %s\n", term.Accent.Sprint(homebrewInstall))

		ok, err := i.confirmer.Confirm(ctx, "Would you like installation instructions?")
		if err != nil {
			return false, err
		}
		if ok {
			PrintManualInstructions(i.out)
		}
		return false, nil
	}

	_, _ = term.Success.Fprintln(i.out, "\nHomebrew detected!")
	ok, err := i.confirmer.Confirm(ctx, "Install Node.js via Homebrew?")
	if err != nil || !ok {
		return false, err
	}

	if !i.install(ctx, "Node.js", ToolBrew, "install", "node") {
		return false, nil
	}

	i.recheck(ctx, ToolNode, ToolNPM, ToolNPX)
	_, _ = term.Bold.Fprintln(i.out, "\nVerifying installation:")
	PrintReport(i.out, i.report.InGroup(NodeJS))

	return len(i.report.MissingRequired()) == 0, nil
}

// OfferOptional offers to install Python 3 (through Homebrew) and uv (through pip3).
func (i *Installer) OfferOptional(ctx context.Context) error {
	_, _ = term.Bold.Fprintln(i.out, "\nOptional Dependencies:")

	if !i.report.Found(ToolPython3) {
		ok, err := i.confirmer.Confirm(ctx, "Install Python 3 (for Python-based MCP servers)?")
		if err != nil {
			return err
		}
		if ok {
			if !i.report.Found(ToolBrew) {
				_, _ = term.Warning.Fprintln(i.out, "Homebrew required. Install it first.")
			} else if i.install(ctx, "Python 3", ToolBrew, "install", "python3") {
				i.recheck(ctx, ToolPython3, ToolPip3)
			}
		}
	}

	if !i.report.Found(ToolUV) && i.report.Found(ToolPython3) {
		ok, err := i.confirmer.Confirm(ctx, "Install uv (fast Python package manager for MCP servers)?")
		if err != nil {
			return err
		}
		if ok && i.install(ctx, "uv", ToolPip3, "install", "uv") {
			i.recheck(ctx, ToolUV, ToolUVX)
		}
	}

	return nil
}

// install streams an installer command to the output, reporting whether it succeeded.
func (i *Installer) install(ctx context.Context, label string, name string, args ...string) bool {
	_, _ = term.Accent.Fprintf(i.out, "\nInstalling %s...\n", label)

	if err := i.runner.Stream(ctx, i.out, name, args...); err != nil {
		i.logger.Error("Install failed", "tool", label, "error", err)
		_, _ = term.Failure.Fprintf(i.out, "✗ Installation failed: %s\n", err)
		return false
	}

	i.logger.Info("Installed", "tool", label)
	_, _ = term.Success.Fprintf(i.out, "✓ %s installed successfully!\n", label)

	return true
}

func (i *Installer) recheck(ctx context.Context, names ...string) {
	for idx, f := range i.report {
		for _, n := range names {
			if f.Name == n {
				i.report[idx].Version = version(ctx, i.runner, n)
			}
		}
	}
}

const homebrewInstall = `/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`

// PrintReport writes each finding grouped by ecosystem.
func PrintReport(w io.Writer, report Report) {
	for _, g := range Groups() {
		found := report.InGroup(g)
		if len(found) == 0 {
			continue
		}

		_, _ = term.Bold.Fprintf(w, "%s:\n", g)
		for _, f := range found {
			switch {
			case f.Found():
				_, _ = fmt.Fprintf(w, "  %s %s %s\n", term.Success.Sprint("✓"), term.PadRight(f.Label, 12), f.Version)
			case f.Required:
				_, _ = fmt.Fprintf(w, "  %s %s Missing\n", term.Failure.Sprint("✗"), term.PadRight(f.Label, 12))
			default:
				_, _ = fmt.Fprintf(w, "  %s %s Optional\n", term.Warning.Sprint("○"), term.PadRight(f.Label, 12))
			}
		}
		_, _ = fmt.Fprintln(w)
	}
}

// PrintManualInstructions writes the ways Node.js can be installed by hand.
func PrintManualInstructions(w io.Writer) {
	_, _ = term.Bold.Fprintln(w, "\nManual Installation Instructions:")

	_, _ = term.Bold.Fprintln(w, "\nOption 1: Using Homebrew (Recommended)")
	_, _ = fmt.Fprintln(w, "  1. Install Homebrew:")
	_, _ = fmt.Fprintf(w, "     %s\n", term.Accent.Sprint(homebrewInstall))
	_, _ = fmt.Fprintln(w, "  2. Install Node.js:")
	_, _ = fmt.Fprintf(w, "     %s\n", term.Accent.Sprint("brew install node"))

	_, _ = term.Bold.Fprintln(w, "\nOption 2: Using Official Installer")
	_, _ = fmt.Fprintln(w, "  1. Visit: https://nodejs.org/")
	_, _ = fmt.Fprintln(w, "  2. Download the LTS version")
	_, _ = fmt.Fprintln(w, "  3. Run the installer")

	_, _ = term.Bold.Fprintln(w, "\nOption 3: Using nvm (Node Version Manager)")
	_, _ = fmt.Fprintln(w, "  1. Install nvm:")
	_, _ = fmt.Fprintf(w, "     %s\n", term.Accent.Sprint("curl -o- https://raw.githubusercontent.com/nvm-sh/nvm/v0.39.0/install.sh | bash"))
	_, _ = fmt.Fprintln(w, "  2. Install Node.js:")
	_, _ = fmt.Fprintf(w, "     %s\n", term.Accent.Sprint("nvm install --lts"))
}
