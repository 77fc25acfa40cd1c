package registry

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

// pipVersionPattern matches the version in 'pip index versions' output, e.g. 'mcp-server-git (1.2.0)'.
var pipVersionPattern = regexp.MustCompile(`\(([0-9.]+)\)`)

var (
	_ Source = (*NPM)(nil)
	_ Source = (*PyPI)(nil)
)

// NPM looks up packages with the npm client.
type NPM struct {
	runner shell.Runner
}

// NewNPM returns an npm Source which runs the client with runner.
func NewNPM(runner shell.Runner) *NPM {
	return &NPM{runner: runner}
}

// Ecosystem implements Source.
func (n *NPM) Ecosystem() packages.Ecosystem {
	return packages.NPM
}

// Latest implements Source by running 'npm view <name> version'.
func (n *NPM) Latest(ctx context.Context, name string) (string, error) {
	res, err := n.runner.Output(ctx, "npm", "view", name, "version")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("npm exited with status %d: %s", res.ExitCode, shell.FirstLine(res.Stderr))
	}

	v := strings.TrimSpace(res.Stdout)
	if v == "" {
		return "", fmt.Errorf("npm returned no version")
	}

	return v, nil
}

// PyPI looks up packages with the pip client.
type PyPI struct {
	runner shell.Runner
}

// NewPyPI returns a PyPI Source which runs the client with runner.
func NewPyPI(runner shell.Runner) *PyPI {
	return &PyPI{runner: runner}
}

// Ecosystem implements Source.
func (p *PyPI) Ecosystem() packages.Ecosystem {
	return packages.PyPI
}

// Latest implements Source by running 'pip index versions <name>' and reading the first line.
func (p *PyPI) Latest(ctx context.Context, name string) (string, error) {
	res, err := p.runner.Output(ctx, "pip", "index", "versions", name)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("pip exited with status %d: %s", res.ExitCode, shell.FirstLine(res.Stderr))
	}

	m := pipVersionPattern.FindStringSubmatch(shell.FirstLine(res.Stdout))
	if m == nil {
		return "", fmt.Errorf("no version found in pip output")
	}

	return m[1], nil
}
