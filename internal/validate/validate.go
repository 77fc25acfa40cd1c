// Package validate checks MCP configuration documents for structural defects and common mistakes.
package validate

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ailevelup-ai/heal-mcp/internal/config"
	"github.com/ailevelup-ai/heal-mcp/internal/packages"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
	"github.com/ailevelup-ai/heal-mcp/internal/shell"
)

// minEnvValueLength is the length below which a literal env value looks like a placeholder or hardcoded secret.
const minEnvValueLength = 10

// Option configures a Validator.
type Option func(*Validator) error

// WithLookPath sets how commands are resolved on PATH.
func WithLookPath(fn shell.LookPathFunc) Option {
	return func(v *Validator) error {
		if fn == nil {
			return fmt.Errorf("look path function cannot be nil")
		}
		v.lookPath = fn
		return nil
	}
}

// WithGOOS overrides the operating system used for platform-specific advice.
func WithGOOS(goos string) Option {
	return func(v *Validator) error {
		v.goos = goos
		return nil
	}
}

// Validator checks configuration documents.
type Validator struct {
	logger   hclog.Logger
	schema   *gojsonschema.Schema
	lookPath shell.LookPathFunc
	goos     string
}

// Result is the outcome of validating one configuration file.
type Result struct {
	Platform string   `json:"platform" yaml:"platform"`
	Path     string   `json:"path" yaml:"path"`
	Valid    bool     `json:"validJSON" yaml:"validJSON"`
	Message  string   `json:"message" yaml:"message"`
	Defects  []string `json:"defects" yaml:"defects"`
	Warnings []string `json:"warnings" yaml:"warnings"`
	Servers  []string `json:"servers" yaml:"servers"`
}

// OK reports whether the file parsed and has no structural defects.
func (r Result) OK() bool {
	return r.Valid && len(r.Defects) == 0
}

// NewValidator returns a Validator.
func NewValidator(logger hclog.Logger, opt ...Option) (*Validator, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	v := &Validator{
		logger:   logger.Named("validate"),
		schema:   schema,
		lookPath: exec.LookPath,
		goos:     runtime.GOOS,
	}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// File loads and validates the configuration file for a location.
func (v *Validator) File(loc platform.Location) Result {
	res := Result{Platform: loc.Label, Path: loc.Path}

	doc, err := config.Load(loc.Path, loc.Layout)
	if err != nil {
		var se *config.SyntaxError
		if errors.As(err, &se) {
			res.Message = se.Error()
		} else {
			res.Message = fmt.Sprintf("Error reading file: %s", err)
		}
		v.logger.Debug("Failed to load configuration", "path", loc.Path, "error", err)
		return res
	}

	res.Valid = true
	res.Message = "Valid JSON syntax"
	res.Defects = v.Structure(doc)
	res.Warnings = v.Warnings(doc)

	for _, set := range doc.ServerSets() {
		res.Servers = append(res.Servers, set.Names()...)
	}

	return res
}

// Structure returns structural defects.
// A document with no servers mapping yields exactly one defect, and entries are not examined.
func (v *Validator) Structure(doc *config.Document) []string {
	sets := doc.ServerSets()
	if len(sets) == 0 {
		return []string{fmt.Sprintf("Missing '%s' root key", config.ServersKey)}
	}

	var defects []string
	for _, set := range sets {
		entries, ok := set.Entries()
		if !ok {
			defects = append(defects, qualify(set, fmt.Sprintf("'%s' must be an object/dictionary", config.ServersKey)))
			continue
		}

		for _, name := range set.Names() {
			for _, d := range v.entryDefects(name, entries[name]) {
				defects = append(defects, qualify(set, d))
			}
		}
	}

	return defects
}

// Warnings returns non-fatal advisories for every server entry.
// Entries which are structurally broken are only reported by Structure.
func (v *Validator) Warnings(doc *config.Document) []string {
	var warnings []string

	for _, set := range doc.ServerSets() {
		entries, ok := set.Entries()
		if !ok {
			continue
		}

		for _, name := range set.Names() {
			entry, ok := config.EntryFrom(name, entries[name])
			if !ok {
				continue
			}
			for _, w := range v.entryWarnings(entry) {
				warnings = append(warnings, qualify(set, w))
			}
		}
	}

	return warnings
}

func (v *Validator) entryDefects(name string, raw any) []string {
	if _, ok := raw.(map[string]any); !ok {
		return []string{fmt.Sprintf("Server '%s': configuration must be an object", name)}
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		v.logger.Error("Schema validation failed", "server", name, "error", err)
		return []string{fmt.Sprintf("Server '%s': could not be validated: %s", name, err)}
	}

	var missingCommand bool
	invalid := map[string]bool{}
	for _, e := range result.Errors() {
		switch e.Type() {
		case "required":
			if e.Details()["property"] == "command" {
				missingCommand = true
			}
		case "invalid_type":
			invalid[strings.SplitN(e.Field(), ".", 2)[0]] = true
		}
	}

	var defects []string
	if missingCommand {
		defects = append(defects, fmt.Sprintf("Server '%s': missing required 'command' field", name))
	}
	if invalid["command"] {
		defects = append(defects, fmt.Sprintf("Server '%s': 'command' must be a string", name))
	}
	if invalid["args"] {
		defects = append(defects, fmt.Sprintf("Server '%s': 'args' must be an array", name))
	}
	if invalid["env"] {
		defects = append(defects, fmt.Sprintf("Server '%s': 'env' must be an object", name))
	}

	return defects
}

func (v *Validator) entryWarnings(entry config.ServerEntry) []string {
	var warnings []string
	name := entry.Name

	if v.goos == "windows" && entry.Command == string(packages.NPX) {
		warnings = append(warnings, fmt.Sprintf(
			"Server '%s': Windows detected with npx command. "+
				"Consider wrapping with cmd: 'command': 'cmd', 'args': ['/c', 'npx', ...]",
			name,
		))
	}

	if entry.Command == string(packages.NPX) && !packages.HasYesFlag(entry.Args) {
		warnings = append(warnings, fmt.Sprintf(
			"Server '%s': npx without -y flag may prompt for installation",
			name,
		))
	}

	if entry.Command == string(packages.UVX) {
		for _, arg := range entry.Args {
			if strings.HasPrefix(arg, "@") && strings.Contains(arg, "/") {
				warnings = append(warnings, fmt.Sprintf(
					"Server '%s': uvx with scoped package '%s' may fail. Consider using npx instead",
					name,
					arg,
				))
			}
		}
	}

	for _, key := range entry.EnvKeys() {
		if SuspiciousEnvValue(entry.Env[key]) {
			warnings = append(warnings, fmt.Sprintf(
				"Server '%s': env variable '%s' looks suspicious. Ensure it's not a hardcoded secret",
				name,
				key,
			))
		}
	}

	if entry.Command != "" && !v.CommandExists(entry.Command) {
		warnings = append(warnings, fmt.Sprintf("Server '%s': command '%s' not found in PATH", name, entry.Command))
	}

	return warnings
}

// CommandExists reports whether command is a known launcher, an existing file, or resolvable on PATH.
func (v *Validator) CommandExists(command string) bool {
	if packages.IsKnownLauncher(command) {
		return true
	}
	if info, err := os.Stat(command); err == nil && !info.IsDir() {
		return true
	}
	_, err := v.lookPath(command)
	return err == nil
}

// SuspiciousEnvValue reports whether a literal env value is short enough to be a placeholder or hardcoded secret.
// Empty values and '${...}' references are not suspicious.
func SuspiciousEnvValue(value string) bool {
	return value != "" &&
		utf8.RuneCountInString(value) < minEnvValueLength &&
		!strings.HasPrefix(value, "${")
}

// Failed returns the results which did not parse or have defects.
func Failed(results []Result) []Result {
	return slices.DeleteFunc(slices.Clone(results), func(r Result) bool { return r.OK() })
}

func qualify(set config.ServerSet, msg string) string {
	if set.Scope == "" {
		return msg
	}
	return set.Describe() + ": " + msg
}
