package definitions

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/beyu9918/labml/pkg/jsonschema"
)

var indicatorSchema = jsonschema.MustCompile("indicators.json", `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["kind", "name"],
		"additionalProperties": false,
		"properties": {
			"kind": { "enum": ["Queue", "Histogram", "Scalar", "IndexedScalar"] },
			"name": { "type": "string", "minLength": 1 },
			"isPrint": { "type": "boolean" },
			"queueSize": { "type": "integer", "minimum": 1 }
		}
	}
}`)

var artifactSchema = jsonschema.MustCompile("artifacts.json", `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["kind", "name"],
		"additionalProperties": false,
		"properties": {
			"kind": { "enum": ["Text", "Table"] },
			"name": { "type": "string", "minLength": 1 },
			"isPrint": { "type": "boolean" }
		}
	}
}`)

// Kind selects which schema a document is validated against.
type Kind string

const (
	KindIndicators Kind = "indicators"
	KindArtifacts  Kind = "artifacts"
)

// ValidateFile validates raw document bytes of the given kind.
func ValidateFile(data []byte, path string, kind Kind) (jsonschema.ValidationErrors, error) {
	switch kind {
	case KindIndicators:
		return Validate(data, path, indicatorSchema), nil
	case KindArtifacts:
		return Validate(data, path, artifactSchema), nil
	}
	return nil, fmt.Errorf("unknown definitions kind %q", kind)
}

// Validate checks a YAML or JSON document against schema. YAML is converted
// to JSON types first so both formats validate identically.
func Validate(data []byte, path string, schema *jsonschema.Schema) jsonschema.ValidationErrors {
	if isJSON(path) {
		return schema.ValidateJSON(string(data))
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return jsonschema.ValidationErrors{fmt.Errorf("invalid YAML: %w", err)}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	converted, err := json.Marshal(doc)
	if err != nil {
		return jsonschema.ValidationErrors{fmt.Errorf("definitions are not representable as JSON: %w", err)}
	}
	return schema.ValidateJSON(string(converted))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
