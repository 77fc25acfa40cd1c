package config

import (
	"fmt"
	"maps"
	"slices"
)

const (
	// ServersKey is the key holding the servers mapping.
	ServersKey = "mcpServers"

	// ProjectsKey is the key holding per-project settings in projects layout documents.
	ProjectsKey = "projects"
)

// ServerSet is one servers mapping within a document.
// Scope is empty for the root mapping, or the project path for a nested one.
type ServerSet struct {
	Scope string
	Raw   any
}

// Entries returns the mapping of server name to raw entry, or false when the mapping is not a JSON object.
func (s ServerSet) Entries() (map[string]any, bool) {
	m, ok := s.Raw.(map[string]any)
	return m, ok
}

// Names returns the server names in the set, sorted.
func (s ServerSet) Names() []string {
	m, ok := s.Entries()
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}

// Describe returns a human-readable label for the set, used to qualify messages.
func (s ServerSet) Describe() string {
	if s.Scope == "" {
		return ServersKey
	}
	return fmt.Sprintf("project '%s'", s.Scope)
}

// ServerEntry is a typed, read-only view of a server entry.
type ServerEntry struct {
	// Name is unique within a servers mapping, e.g. 'github'.
	Name string `json:"name" yaml:"name"`

	// Command is the executable used to launch the server, e.g. 'npx'.
	Command string `json:"command" yaml:"command"`

	// Args are passed to Command in order.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Env holds environment variables set for the server process.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// HasCommand is false when the raw entry has no 'command' key at all.
	HasCommand bool `json:"-" yaml:"-"`
}

// EntryFrom builds a ServerEntry from a raw decoded value.
// Values of unexpected types are ignored, so callers should run structural validation when that matters.
// Returns false when raw is not a JSON object.
func EntryFrom(name string, raw any) (ServerEntry, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return ServerEntry{}, false
	}

	entry := ServerEntry{Name: name}

	if cmd, ok := m["command"]; ok {
		entry.HasCommand = true
		entry.Command, _ = cmd.(string)
	}

	if args, ok := m["args"].([]any); ok {
		for _, a := range args {
			if s, ok := a.(string); ok {
				entry.Args = append(entry.Args, s)
			}
		}
	}

	if env, ok := m["env"].(map[string]any); ok {
		entry.Env = make(map[string]string, len(env))
		for k, v := range env {
			switch val := v.(type) {
			case string:
				entry.Env[k] = val
			case nil:
				entry.Env[k] = ""
			default:
				entry.Env[k] = fmt.Sprint(val)
			}
		}
	}

	return entry, true
}

// Tokens returns the command followed by its arguments.
func (e ServerEntry) Tokens() []string {
	tokens := make([]string, 0, len(e.Args)+1)
	if e.Command != "" {
		tokens = append(tokens, e.Command)
	}
	return append(tokens, e.Args...)
}

// EnvKeys returns the environment variable names, sorted.
func (e ServerEntry) EnvKeys() []string {
	return slices.Sorted(maps.Keys(e.Env))
}

// Clone returns a deep copy of a decoded JSON value.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = Clone(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Clone(inner)
		}
		return out
	default:
		return val
	}
}
