package spec

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/atelierworks/sheetwright/pkg/domain"
)

// rawSchemaJSON gates the shape of caller-supplied specification documents
// before field-level normalization. It is deliberately permissive about
// optional sections; Normalize owns the semantic rules.
const rawSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "envelope": {
      "type": "object",
      "properties": {
        "length": {"type": "number"},
        "width": {"type": "number"},
        "height": {"type": "number"},
        "floors": {"type": "integer"}
      }
    },
    "materials": {
      "type": "array",
      "items": {"type": "object"}
    },
    "structure": {"type": "object"},
    "openings": {"type": "object"},
    "styleWeights": {"type": "object"},
    "style_weights": {"type": "object"},
    "metadata": {"type": "object"}
  }
}`

var rawSchemaLoader = gojsonschema.NewStringLoader(rawSchemaJSON)

// CheckShape validates the structural shape of a raw specification document.
// Shape violations come back as an InvalidSpecification error listing every
// offending path, mirroring how Normalize reports semantic violations.
func CheckShape(raw map[string]any) error {
	result, err := gojsonschema.Validate(rawSchemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &domain.ValidationError{Violations: violations}
}
