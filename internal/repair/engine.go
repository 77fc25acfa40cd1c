// Package repair finds common problems in MCP configuration files and fixes them with the operator's consent.
package repair

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

// Prompter asks the operator questions.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
	Input(ctx context.Context, question string) (string, error)
}

// Backups snapshots a file before it is rewritten.
type Backups interface {
	Create(path string) (string, error)
}

// Engine applies fixes to configuration files, taking a backup before every write.
type Engine struct {
	logger   hclog.Logger
	backups  Backups
	prompter Prompter
	out      io.Writer
}

// NewEngine returns an Engine which reports progress to out.
func NewEngine(logger hclog.Logger, backups Backups, prompter Prompter, out io.Writer) *Engine {
	return &Engine{
		logger:   logger.Named("repair"),
		backups:  backups,
		prompter: prompter,
		out:      out,
	}
}

// Apply applies the fix for issue to the file at loc.
// It returns false without writing anything when the fix is manual, the operator supplies no value,
// or the change is already present.
func (e *Engine) Apply(ctx context.Context, loc platform.Location, issue Issue) (bool, error) {
	var mutate func(entry map[string]any) (bool, error)

	switch fix := issue.Fix.(type) {
	case ManualFix:
		return false, nil
	case InsertFlagFix:
		mutate = func(entry map[string]any) (bool, error) {
			return insertFlag(entry, fix.Flag)
		}
	case SetEnvFix:
		_, _ = term.Warning.Fprintf(e.out, "\nEnvironment variable '%s' needs a value\n", fix.Key)
		value, err := e.prompter.Input(ctx, fmt.Sprintf("Enter value for %s", fix.Key))
		if err != nil {
			return false, err
		}
		if value == "" {
			_, _ = term.Warning.Fprintln(e.out, "Skipping empty value")
			return false, nil
		}
		mutate = func(entry map[string]any) (bool, error) {
			return setEnv(entry, fix.Key, value)
		}
	default:
		return false, fmt.Errorf("unsupported fix type %T", issue.Fix)
	}

	doc, err := config.Load(loc.Path, loc.Layout)
	if err != nil {
		return false, err
	}

	servers, ok := doc.ServerSet(issue.Scope)
	if !ok {
		return false, fmt.Errorf("%w: '%s'", healerrors.ErrServerNotFound, issue.Server)
	}
	entry, ok := servers[issue.Server].(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: '%s'", healerrors.ErrServerNotFound, issue.Server)
	}

	changed, err := mutate(entry)
	if err != nil || !changed {
		return false, err
	}

	_, _ = term.Accent.Fprintln(e.out, "\nCreating backup...")
	snapshot, err := e.backups.Create(loc.Path)
	if err != nil {
		return false, fmt.Errorf("backup failed, nothing was changed: %w", err)
	}
	_, _ = fmt.Fprintf(e.out, "  %s Backup saved to: %s\n", term.Success.Sprint("✓"), snapshot)

	if err := doc.Save(); err != nil {
		return false, err
	}

	e.logger.Info("Applied fix", "path", loc.Path, "server", issue.Server, "fix", issue.Fix.String())
	_, _ = term.Success.Fprintln(e.out, "\nApplied fix:")
	_, _ = fmt.Fprintf(e.out, "  %s for %s\n", issue.Fix, issue.Server)

	return true, nil
}

// Run scans the file at loc and offers each automatic fix in turn.
// Declining a fix moves on to the next issue. Failed fixes are reported and returned together at the end.
func (e *Engine) Run(ctx context.Context, loc platform.Location) error {
	_, _ = fmt.Fprintf(e.out, "\n%s %s\n\n", term.Bold.Sprint("Analyzing:"), term.Accent.Sprint(loc.Path))

	issues, err := ScanFile(loc)
	if err != nil {
		return err
	}

	if len(issues) == 0 {
		_, _ = term.Success.Fprintln(e.out, "✓ No issues found! Configuration looks good.")
		return nil
	}

	var critical, warnings int
	for _, is := range issues {
		if is.Severity == Critical {
			critical++
		} else {
			warnings++
		}
	}

	_, _ = term.Bold.Fprintln(e.out, "Issues found:")
	if critical > 0 {
		_, _ = term.Failure.Fprintf(e.out, "  Critical: %d\n", critical)
	}
	if warnings > 0 {
		_, _ = term.Warning.Fprintf(e.out, "  Warnings: %d\n", warnings)
	}

	var errs []error
	for i, is := range issues {
		style, icon := term.Warning, "⚠"
		if is.Severity == Critical {
			style, icon = term.Failure, "✗"
		}

		server := is.Server
		if server == "" {
			server = "N/A"
		}

		_, _ = style.Fprintf(e.out, "\n%s Issue %d/%d\n", icon, i+1, len(issues))
		_, _ = fmt.Fprintf(e.out, "  Server: %s\n", term.Bold.Sprint(server))
		if is.Scope != "" {
			_, _ = fmt.Fprintf(e.out, "  Project: %s\n", is.Scope)
		}
		_, _ = fmt.Fprintf(e.out, "  Problem: %s\n", is.Description)

		if !is.Fix.Automatic() {
			_, _ = fmt.Fprintf(e.out, "  %s %s\n", term.Failure.Sprint("Manual fix required:"), is.Fix)
			continue
		}

		ok, err := e.prompter.Confirm(ctx, "Apply automatic fix?")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		applied, err := e.Apply(ctx, loc, is)
		switch {
		case errors.Is(err, healerrors.ErrCancelled):
			return err
		case err != nil:
			e.logger.Error("Fix failed", "path", loc.Path, "server", is.Server, "error", err)
			_, _ = term.Failure.Fprintf(e.out, "  ✗ Fix failed: %s\n", err)
			errs = append(errs, err)
		case applied:
			_, _ = term.Success.Fprintln(e.out, "  ✓ Fix applied successfully")
		default:
			_, _ = term.Warning.Fprintln(e.out, "  Fix skipped")
		}
	}

	_, _ = term.Success.Fprintln(e.out, "\nRepair session complete!")
	_, _ = fmt.Fprintln(e.out, "\nNext steps:")
	_, _ = fmt.Fprintln(e.out, "  1. Restart your MCP client (Claude Desktop/Code/Cursor)")
	_, _ = fmt.Fprintln(e.out, "  2. Test the affected servers")
	_, _ = fmt.Fprintf(e.out, "  3. Run: %s\n", term.Accent.Sprint("heal-mcp health"))

	return errors.Join(errs...)
}

// insertFlag puts flag at the front of the entry's args, unless it is already present.
func insertFlag(entry map[string]any, flag string) (bool, error) {
	var args []any
	if raw, ok := entry["args"]; ok && raw != nil {
		args, ok = raw.([]any)
		if !ok {
			return false, fmt.Errorf("'args' must be an array")
		}
	}

	for _, a := range args {
		if s, ok := a.(string); ok && (s == flag || (flag == skipConfirmationFlag && s == "--yes")) {
			return false, nil
		}
	}

	entry["args"] = append([]any{flag}, args...)
	return true, nil
}

func setEnv(entry map[string]any, key string, value string) (bool, error) {
	env := map[string]any{}
	if raw, ok := entry["env"]; ok && raw != nil {
		env, ok = raw.(map[string]any)
		if !ok {
			return false, fmt.Errorf("'env' must be an object")
		}
	}

	env[key] = value
	entry["env"] = env
	return true, nil
}
