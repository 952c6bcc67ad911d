package rules

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigError is returned when a rule file cannot be read or decoded.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("failed to load rules from %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UnmarshalYAML decodes an operation from its name.
func (o *Operation) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	op, err := ParseOperation(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*o = op
	return nil
}

// MarshalYAML encodes an operation by name.
func (o Operation) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// Load reads a rule file. Unknown keys are rejected so typos do not silently
// disable a rule.
func Load(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	engine, err := Parse(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return engine, nil
}

// Parse decodes rules from YAML.
func Parse(data []byte) (*Engine, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var e Engine
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return &e, nil
}

// Save writes e to path in the format Load reads.
func Save(path string, e *Engine) error {
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}
	return nil
}
