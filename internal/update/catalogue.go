package update

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ailevelup-ai/heal-mcp/internal/platform"
)

//go:embed default_catalogue.toml
var defaultCatalogue []byte

// ErrInvalidCatalogue is returned when a catalogue file cannot be used.
var ErrInvalidCatalogue = errors.New("invalid update catalogue")

// Replacement is the launch argument a server should be updated to.
type Replacement struct {
	// New is the full package argument, e.g. '@modelcontextprotocol/server-github@2025.4.8'.
	New string `toml:"new"`
}

// Catalogue maps each platform to the servers it updates.
type Catalogue map[platform.Platform]map[string]Replacement

// DefaultCatalogue returns the catalogue shipped with heal-mcp.
func DefaultCatalogue() (Catalogue, error) {
	return ParseCatalogue(defaultCatalogue)
}

// LoadCatalogue reads a catalogue from a TOML file.
func LoadCatalogue(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}

	return ParseCatalogue(data)
}

// ParseCatalogue decodes TOML data into a Catalogue.
// Every table name must be a known platform and every replacement must be non-empty.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var raw map[string]map[string]Replacement
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys: %v", ErrInvalidCatalogue, undecoded)
	}

	cat := make(Catalogue, len(raw))
	for name, servers := range raw {
		p, err := platform.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
		}
		for server, r := range servers {
			if strings.TrimSpace(r.New) == "" {
				return nil, fmt.Errorf("%w: %s.%s has no 'new' value", ErrInvalidCatalogue, name, server)
			}
		}
		cat[p] = servers
	}

	return cat, nil
}
