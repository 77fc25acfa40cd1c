package repair

import (
	"errors"
	"fmt"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

// skipConfirmationFlag stops npx prompting before installing a package.
const skipConfirmationFlag = "-y"

// Scan classifies every server entry in doc against the known issues.
func Scan(doc *config.Document) []Issue {
	var issues []Issue

	for _, set := range doc.ServerSets() {
		entries, ok := set.Entries()
		if !ok {
			issues = append(issues, Issue{
				Severity:    Critical,
				Scope:       set.Scope,
				Description: fmt.Sprintf("'%s' is not an object", config.ServersKey),
				Fix:         ManualFix{Instruction: fmt.Sprintf("Make '%s' an object keyed by server name", config.ServersKey)},
			})
			continue
		}

		for _, name := range set.Names() {
			issues = append(issues, scanEntry(set.Scope, name, entries[name])...)
		}
	}

	return issues
}

// ScanFile loads the file for loc and scans it.
// A file that is not valid JSON yields a single critical issue rather than an error.
func ScanFile(loc platform.Location) ([]Issue, error) {
	doc, err := config.Load(loc.Path, loc.Layout)
	if err != nil {
		var se *config.SyntaxError
		if errors.As(err, &se) {
			return []Issue{{
				Severity:    Critical,
				Description: se.Error(),
				Fix:         ManualFix{Instruction: "Correct the JSON syntax by hand"},
			}}, nil
		}
		return nil, err
	}

	return Scan(doc), nil
}

func scanEntry(scope string, name string, raw any) []Issue {
	entry, ok := config.EntryFrom(name, raw)
	if !ok {
		return []Issue{{
			Severity:    Critical,
			Server:      name,
			Scope:       scope,
			Description: "Server configuration is not an object",
			Fix:         ManualFix{Instruction: "Replace the entry with an object containing 'command'"},
		}}
	}

	var issues []Issue

	if !entry.HasCommand {
		issues = append(issues, Issue{
			Severity:    Critical,
			Server:      name,
			Scope:       scope,
			Description: `Missing "command" field`,
			Fix:         ManualFix{Instruction: "Add a 'command' naming the executable that starts the server"},
		})
	}

	if entry.Command == string(packages.NPX) && !packages.HasYesFlag(entry.Args) {
		issues = append(issues, Issue{
			Severity:    Warning,
			Server:      name,
			Scope:       scope,
			Description: "npx command missing -y flag (may cause prompts)",
			Fix:         InsertFlagFix{Flag: skipConfirmationFlag},
		})
	}

	for _, key := range entry.EnvKeys() {
		if entry.Env[key] == "" {
			issues = append(issues, Issue{
				Severity:    Warning,
				Server:      name,
				Scope:       scope,
				Description: fmt.Sprintf("Environment variable %q is empty", key),
				Fix:         SetEnvFix{Key: key},
			})
		}
	}

	return issues
}
