// Package config loads and saves MCP configuration documents.
//
// A Document keeps the whole decoded JSON tree, so keys heal-mcp does not understand are written back unchanged.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ailevelup-ai/heal-mcp/internal/files"
	"github.com/ailevelup-ai/heal-mcp/internal/perms"
	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

// Document is a parsed MCP configuration file.
type Document struct {
	path   string
	layout platform.Layout
	root   map[string]any
}

// New returns an empty document, containing only an empty servers mapping, which will be saved to path.
func New(path string, layout platform.Layout) *Document {
	return &Document{
		path:   path,
		layout: layout,
		root:   map[string]any{ServersKey: map[string]any{}},
	}
}

// Load reads and parses the configuration file at path.
// When the file does not exist the returned error wraps fs.ErrNotExist.
// Syntax errors are returned as *SyntaxError.
func Load(path string, layout platform.Layout) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file cannot be found (%s): %w", ErrConfigLoadFailed, path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("%w: failed to read config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrConfigLoadFailed, path, err)
	}

	return &Document{path: path, layout: layout, root: root}, nil
}

// Parse decodes data as a JSON object, keeping numbers verbatim.
func Parse(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, syntaxError(data, err)
	}

	// Anything other than whitespace after the value is malformed.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		offset := dec.InputOffset()
		return nil, newSyntaxError(data, offset, "extra data after JSON value")
	}

	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrInvalidJSON)
	}

	return m, nil
}

// Path returns the file path the document was loaded from (or will be saved to).
func (d *Document) Path() string {
	return d.path
}

// Layout returns the layout used to enumerate server sets.
func (d *Document) Layout() platform.Layout {
	return d.layout
}

// Root returns the decoded top-level object.
func (d *Document) Root() map[string]any {
	return d.root
}

// HasServers reports whether the document has a root servers key, regardless of its type.
func (d *Document) HasServers() bool {
	_, ok := d.root[ServersKey]
	return ok
}

// Servers returns the root servers mapping.
// Returns false when the key is absent or not a JSON object.
func (d *Document) Servers() (map[string]any, bool) {
	m, ok := d.root[ServersKey].(map[string]any)
	return m, ok
}

// EnsureServers returns the root servers mapping, creating it when absent.
func (d *Document) EnsureServers() (map[string]any, error) {
	raw, ok := d.root[ServersKey]
	if !ok || raw == nil {
		m := map[string]any{}
		d.root[ServersKey] = m
		return m, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrInvalidServers, d.path)
	}

	return m, nil
}

// ServerSets enumerates every servers mapping in the document.
// The root mapping comes first (when present), followed by any project mappings sorted by project path.
func (d *Document) ServerSets() []ServerSet {
	var sets []ServerSet

	if raw, ok := d.root[ServersKey]; ok {
		sets = append(sets, ServerSet{Raw: raw})
	}

	if d.layout != platform.LayoutProjects {
		return sets
	}

	projects, ok := d.root[ProjectsKey].(map[string]any)
	if !ok {
		return sets
	}

	for _, project := range slices.Sorted(maps.Keys(projects)) {
		data, ok := projects[project].(map[string]any)
		if !ok {
			continue
		}
		raw, ok := data[ServersKey]
		if !ok {
			continue
		}
		sets = append(sets, ServerSet{Scope: project, Raw: raw})
	}

	return sets
}

// ServerSet returns the servers mapping for scope, where an empty scope is the root mapping.
func (d *Document) ServerSet(scope string) (map[string]any, bool) {
	for _, set := range d.ServerSets() {
		if set.Scope == scope {
			return set.Entries()
		}
	}
	return nil, false
}

// Bytes encodes the document with two-space indentation and a trailing newline.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("%w: failed to encode (%s): %w", ErrConfigSaveFailed, d.path, err)
	}

	return buf.Bytes(), nil
}

// Save rewrites the whole document to its path.
func (d *Document) Save() error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	if err := files.WriteFile(d.path, data, perms.RegularFile); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigSaveFailed, err)
	}

	return nil
}

func syntaxError(data []byte, err error) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return newSyntaxError(data, se.Offset, se.Error())
	}

	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return newSyntaxError(data, te.Offset, te.Error())
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newSyntaxError(data, int64(len(data)), "unexpected end of JSON input")
	}

	return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
}

// newSyntaxError converts a byte offset into a 1-based line and column.
func newSyntaxError(data []byte, offset int64, msg string) *SyntaxError {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(prefix, '\n')

	return &SyntaxError{Line: line, Column: col, Msg: msg}
}
