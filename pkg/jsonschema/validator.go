// Package jsonschema validates decoded documents against a JSON Schema.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled schema that can validate many documents.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema given as a JSON string.
func Compile(name, schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(name, strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	return &Schema{schema: schema}, nil
}

// MustCompile is like Compile but panics on error. It is meant for schemas
// embedded in the binary.
func MustCompile(name, schemaStr string) *Schema {
	s, err := Compile(name, schemaStr)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON validates a JSON string and returns every violation found.
func (s *Schema) ValidateJSON(jsonStr string) ValidationErrors {
	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}
	return s.ValidateDocument(doc)
}

// ValidateDocument validates an already decoded document. The document must
// use the types produced by encoding/json.
func (s *Schema) ValidateDocument(doc interface{}) ValidationErrors {
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}

	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return extractValidationErrors(validationErr)
	}
	return ValidationErrors{err}
}

// extractValidationErrors extracts all validation errors from a jsonschema.ValidationError
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var errors ValidationErrors

	// Leaf causes carry the useful messages; the root only says "doesn't validate"
	if len(err.Causes) == 0 && err.Message != "" {
		errors = append(errors, fmt.Errorf("validation error at %s: %s", displayLocation(err.InstanceLocation), err.Message))
	}

	for _, childErr := range err.Causes {
		errors = append(errors, extractValidationErrors(childErr)...)
	}

	return errors
}

func displayLocation(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
