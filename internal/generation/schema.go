package generation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

const recommendationSchema = `{
  "type": "object",
  "required": ["assessmentId", "role", "steps", "matchScore", "usedFallback", "generatedAt"],
  "properties": {
    "assessmentId": {"type": "string", "minLength": 1},
    "role": {"type": "string", "minLength": 1},
    "matchScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "usedFallback": {"type": "boolean"},
    "generatedAt": {"type": "string", "format": "date-time"},
    "steps": {
      "type": "array",
      "minItems": 1,
      "maxItems": 10,
      "items": {
        "type": "object",
        "required": ["title", "description", "skills"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string", "minLength": 1},
          "skills": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		compiledSchema, schemaErr = compiler.Compile([]byte(recommendationSchema))
	})
	return compiledSchema, schemaErr
}

// Validate checks a set against the recommendation schema. Primary and
// fallback results must both pass it.
func Validate(set RecommendationSet) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("compile recommendation schema: %w", err)
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode recommendation set: %w", err)
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
