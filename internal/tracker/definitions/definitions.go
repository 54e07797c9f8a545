// Package definitions persists the declarative shape of indicators and
// artifacts so that a run's setup can be inspected or replayed.
//
// A document maps each name to its definition. The file format follows the
// file extension: .json is JSON, anything else is YAML.
//
//	loss:
//	  kind: Queue
//	  name: loss
//	  isPrint: true
//	  queueSize: 10
package definitions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/pkg/jsonschema"
)

// Indicators maps indicator names to their definitions.
type Indicators map[string]indicators.Definition

// Artifacts maps artifact names to their definitions.
type Artifacts map[string]artifacts.Definition

// Marshal encodes doc in the format selected by path's extension.
func Marshal(doc any, path string) ([]byte, error) {
	if isJSON(path) {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON definitions: %w", err)
		}
		return append(data, '\n'), nil
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML definitions: %w", err)
	}
	return data, nil
}

// Save writes doc to path, replacing any previous content. The write goes
// through a temporary file so readers never see a partial document.
func Save(path string, doc any) error {
	data, err := Marshal(doc, path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create definitions file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write definitions file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write definitions file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace definitions file: %w", err)
	}
	return nil
}

// SaveIndicators writes the definitions of inds to path.
func SaveIndicators(path string, inds map[string]*indicators.Indicator) error {
	doc := make(Indicators, len(inds))
	for name, ind := range inds {
		doc[name] = ind.Definition()
	}
	return Save(path, doc)
}

// SaveArtifacts writes the definitions of arts to path.
func SaveArtifacts(path string, arts map[string]artifacts.Artifact) error {
	doc := make(Artifacts, len(arts))
	for name, art := range arts {
		doc[name] = art.Definition()
	}
	return Save(path, doc)
}

// LoadIndicators reads, validates and decodes an indicators document.
func LoadIndicators(path string) (Indicators, error) {
	var doc Indicators
	if err := load(path, indicatorSchema, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadArtifacts reads, validates and decodes an artifacts document.
func LoadArtifacts(path string) (Artifacts, error) {
	var doc Artifacts
	if err := load(path, artifactSchema, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Build creates empty indicators from a document. Keys must match the
// definition names.
func (doc Indicators) Build() ([]*indicators.Indicator, error) {
	out := make([]*indicators.Indicator, 0, len(doc))
	for _, name := range sortedKeys(doc) {
		def := doc[name]
		if def.Name != name {
			return nil, fmt.Errorf("definition %q has mismatched name %q", name, def.Name)
		}
		ind, err := indicators.FromDefinition(def)
		if err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, nil
}

// Build creates empty artifacts from a document.
func (doc Artifacts) Build() ([]artifacts.Artifact, error) {
	out := make([]artifacts.Artifact, 0, len(doc))
	for _, name := range sortedKeys(doc) {
		def := doc[name]
		if def.Name != name {
			return nil, fmt.Errorf("definition %q has mismatched name %q", name, def.Name)
		}
		art, err := artifacts.FromDefinition(def)
		if err != nil {
			return nil, err
		}
		out = append(out, art)
	}
	return out, nil
}

func load(path string, schema *jsonschema.Schema, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definitions file: %w", err)
	}

	if errs := Validate(data, path, schema); len(errs) > 0 {
		return fmt.Errorf("invalid definitions in %s: %w", path, errs)
	}

	if isJSON(path) {
		err = json.Unmarshal(data, out)
	} else {
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("failed to parse definitions file: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}
