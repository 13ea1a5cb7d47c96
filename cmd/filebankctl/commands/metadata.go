package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// parseMetadata merges a JSON object (inline, or @file) with key=value
// assignments. Assigned values are decoded as JSON when they parse, so
// count=3 is a number and tags=["a"] a list; anything else is a string.
func parseMetadata(raw string, sets []string) (map[string]any, error) {
	meta := map[string]any{}

	if raw != "" {
		data := []byte(raw)
		if path, ok := strings.CutPrefix(raw, "@"); ok {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read metadata file: %w", err)
			}
			data = b
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("metadata must be a JSON object: %w", err)
		}
		if meta == nil {
			meta = map[string]any{}
		}
	}

	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected key=value)", s)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		meta[key] = v
	}

	return meta, nil
}
