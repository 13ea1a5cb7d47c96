package validation

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/marmos91/filebank/pkg/content"
)

// DirectoryItem is the shape every directory creation request must have.
type DirectoryItem struct {
	Type     string         `json:"type" jsonschema:"enum=directory"`
	Name     string         `json:"name" jsonschema:"minLength=1"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FileItem is the shape every file upload request must have.
type FileItem struct {
	Type     string         `json:"type" jsonschema:"enum=file"`
	Name     string         `json:"name" jsonschema:"minLength=1"`
	MimeType string         `json:"mimetype"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
}

// DirectorySchema returns the built-in Directory item schema.
func DirectorySchema() *jsonschema.Schema {
	s := reflector().Reflect(&DirectoryItem{})
	s.Title = "Directory"
	return s
}

// FileSchema returns the built-in File item schema.
func FileSchema() *jsonschema.Schema {
	s := reflector().Reflect(&FileItem{})
	s.Title = "File"
	return s
}

// BuiltinSchemas returns the item schemas keyed by item type.
func BuiltinSchemas() map[content.ItemType]*jsonschema.Schema {
	return map[content.ItemType]*jsonschema.Schema{
		content.TypeDirectory: DirectorySchema(),
		content.TypeFile:      FileSchema(),
	}
}

func builtinJSON(kind content.ItemType) ([]byte, error) {
	s := FileSchema()
	if kind == content.TypeDirectory {
		s = DirectorySchema()
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", kind, err)
	}
	return b, nil
}
