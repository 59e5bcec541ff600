package patch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRoot mirrors the teacher's YAMLRoot/ArrayConfig wrapping
// (core/program.go): the patch fixture is nested under a named root key so
// a single file can later grow sibling top-level sections (e.g. registry
// fixtures) without a breaking format change.
type yamlRoot struct {
	Patch NormalizedPatch `yaml:"patch"`
}

// LoadYAML loads a NormalizedPatch fixture from a YAML file, the same
// shape core.LoadProgramFileFromYAML parses kernels from, adapted to
// return an error instead of panicking.
func LoadYAML(path string) (*NormalizedPatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("patch: failed to read %s: %w", path, err)
	}

	var root yamlRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("patch: failed to parse %s: %w", path, err)
	}

	root.Patch.Normalize()
	return &root.Patch, nil
}

// DecodeYAML parses a NormalizedPatch fixture from an in-memory YAML
// document, used by tests that inline fixtures instead of reading files.
func DecodeYAML(data []byte) (*NormalizedPatch, error) {
	var root yamlRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("patch: failed to parse document: %w", err)
	}
	root.Patch.Normalize()
	return &root.Patch, nil
}
