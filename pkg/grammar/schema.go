package grammar

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/ast.schema.json
var schemaJSON []byte

// Schema returns the JSON Schema describing the output of Tree for a
// Grammar.
func Schema() []byte {
	return schemaJSON
}

// Violation is one schema validation failure.
type Violation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Description
}

// ValidateTree checks a JSON-encoded grammar tree against Schema. It returns
// the violations found, which are empty for a valid tree. An error means the
// document could not be read at all.
func ValidateTree(data []byte) ([]Violation, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate grammar tree: %w", err)
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, Violation{
			Field:       verr.Field(),
			Description: verr.Description(),
		})
	}

	return violations, nil
}
