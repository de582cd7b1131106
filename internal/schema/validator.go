package schema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Validator handles JSON schema validation of pipeline documents
type Validator struct {
	pipelineSchema *jsonschema.Schema
}

// NewValidator compiles the embedded pipeline schema
func NewValidator() (*Validator, error) {
	s, err := compileSchema(pipelineSchemaYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pipeline schema: %w", err)
	}
	return &Validator{pipelineSchema: s}, nil
}

// ValidatePipeline validates a decoded pipeline document against the schema
func (v *Validator) ValidatePipeline(data interface{}) error {
	if v.pipelineSchema == nil {
		return fmt.Errorf("pipeline schema not loaded")
	}
	return v.pipelineSchema.Validate(data)
}

// compileSchema compiles a schema given as YAML (supports both YAML and JSON)
func compileSchema(src string) (*jsonschema.Schema, error) {
	var schemaData interface{}
	if err := yaml.Unmarshal([]byte(src), &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	// Convert to JSON for the schema compiler
	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schema, err := jsonschema.CompileString("pipeline.schema.json", string(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}
