package validate

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed server_entry.schema.json
var serverEntrySchema string

// loadSchema compiles the JSON schema a single server entry must satisfy.
func loadSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(serverEntrySchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load server entry schema: %w", err)
	}
	return schema, nil
}
