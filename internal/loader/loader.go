package loader

import (
	"fmt"
	"os"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/schema"
	"gopkg.in/yaml.v3"
)

// Load reads, schema-validates and decodes a pipeline YAML file
func Load(path string) (*model.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	return Parse(data)
}

// Parse schema-validates and decodes a pipeline document
func Parse(data []byte) (*model.Pipeline, error) {
	// Decode once into a generic value for schema validation. yaml.v3 yields
	// map[string]interface{} for mappings, which is what the schema
	// validator expects.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.ValidatePipeline(doc); err != nil {
		return nil, fmt.Errorf("pipeline failed schema validation: %w", err)
	}

	var pipeline model.Pipeline
	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}

	seen := make(map[string]bool, len(pipeline.Jobs))
	for _, job := range pipeline.Jobs {
		if seen[job.Name] {
			return nil, fmt.Errorf("duplicate job name: %s", job.Name)
		}
		seen[job.Name] = true
	}

	return &pipeline, nil
}
