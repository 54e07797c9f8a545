package jsonschema

import (
	"strings"
	"testing"
)

const testSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["kind", "name"],
		"properties": {
			"kind": { "enum": ["Queue", "Scalar"] },
			"name": { "type": "string" },
			"queueSize": { "type": "integer", "minimum": 1 }
		}
	}
}`

func TestSchema_ValidateJSON(t *testing.T) {
	schema := MustCompile("test.json", testSchema)

	tests := []struct {
		name      string
		json      string
		wantValid bool
		contains  string
	}{
		{
			name:      "Valid document",
			json:      `{"loss": {"kind": "Queue", "name": "loss", "queueSize": 10}}`,
			wantValid: true,
		},
		{
			name:      "Empty document",
			json:      `{}`,
			wantValid: true,
		},
		{
			name:     "Unknown kind",
			json:     `{"loss": {"kind": "Gauge", "name": "loss"}}`,
			contains: "/loss/kind",
		},
		{
			name:     "Missing name",
			json:     `{"loss": {"kind": "Scalar"}}`,
			contains: "name",
		},
		{
			name:     "Zero queue size",
			json:     `{"loss": {"kind": "Queue", "name": "loss", "queueSize": 0}}`,
			contains: "/loss/queueSize",
		},
		{
			name:     "Malformed JSON",
			json:     `{"loss": `,
			contains: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := schema.ValidateJSON(tt.json)
			if tt.wantValid {
				if len(errs) != 0 {
					t.Errorf("ValidateJSON() = %v, want no errors", errs)
				}
				return
			}

			if len(errs) == 0 {
				t.Fatal("ValidateJSON() returned no errors, want at least one")
			}
			if !strings.Contains(errs.Error(), tt.contains) {
				t.Errorf("ValidateJSON() error %q does not mention %q", errs.Error(), tt.contains)
			}
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	if _, err := Compile("bad.json", `{"type": 12}`); err == nil {
		t.Error("Compile() expected error for invalid schema")
	}
	if _, err := Compile("bad.json", `{`); err == nil {
		t.Error("Compile() expected error for malformed schema")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var empty ValidationErrors
	if empty.Error() != "" {
		t.Errorf("empty ValidationErrors.Error() = %q, want empty", empty.Error())
	}
}
