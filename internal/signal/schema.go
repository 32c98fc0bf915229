package signal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jbony2888/entryflow/internal/classify"
)

// suggestionSchema returns the JSON Schema the provider response must
// satisfy before any value is considered. It is sent to the provider as a
// structured-output constraint and applied locally to the response.
func suggestionSchema() map[string]any {
	fieldProps := make(map[string]any, len(classify.FieldLabels))
	for _, key := range classify.FieldLabels {
		fieldProps[string(key)] = map[string]any{"type": "string"}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"doc_type": map[string]any{"type": "string", "minLength": 1},
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           fieldProps,
			},
			"rationale": map[string]any{"type": "string"},
		},
		"required": []string{"doc_type"},
	}
}

// validateAgainstSchema checks data against the schema map. Compilation
// happens per call; suggestion payloads are small and infrequent.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("suggestion.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("suggestion.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
