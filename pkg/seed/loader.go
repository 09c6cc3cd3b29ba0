package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a seed from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML,
// .json for JSON. If the extension is unrecognized, YAML is attempted
// first, then JSON.
//
// After loading, the seed is validated against the JSON schema, and
// defaults are applied to absent budgets.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("seed file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a seed from raw bytes.
//
// The path parameter is used for error messages and format detection.
// Validation is performed on the raw data (converted to JSON) before
// parsing into the typed struct, so unknown fields are rejected
// (additionalProperties: false in the schema) rather than silently
// dropped by struct unmarshaling.
func LoadFromBytes(data []byte, path string) (*Seed, error) {
	if len(data) == 0 {
		return nil, errors.New("seed file is empty")
	}

	jsonData, err := toJSON(data, path)
	if err != nil {
		return nil, err
	}

	if err := ValidateRaw(jsonData); err != nil {
		return nil, err
	}

	s, err := parseSeed(data, path)
	if err != nil {
		return nil, err
	}

	s.ApplyDefaults()
	return s, nil
}

// LoadFromReader reads and validates a seed from an io.Reader.
func LoadFromReader(r io.Reader, path string) (*Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	return LoadFromBytes(data, path)
}

// FromMap decodes and validates a seed from a generic payload map, as
// received from transport layers that unmarshal into map[string]any.
//
// The map is serialized to JSON for strict schema validation first, then
// decoded into the typed struct via mapstructure.
func FromMap(payload map[string]any) (*Seed, error) {
	if payload == nil {
		return nil, errors.New("seed payload is nil")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize seed payload: %w", err)
	}
	if err := ValidateRaw(jsonData); err != nil {
		return nil, err
	}

	var s Seed
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &s,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build seed decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode seed payload: %w", err)
	}

	s.ApplyDefaults()
	return &s, nil
}

// parseSeed parses the seed data based on file extension.
func parseSeed(data []byte, path string) (*Seed, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		s, yamlErr := parseYAML(data)
		if yamlErr == nil {
			return s, nil
		}
		s, jsonErr := parseJSON(data)
		if jsonErr == nil {
			return s, nil
		}
		return nil, fmt.Errorf("failed to parse seed (tried YAML and JSON): %w", yamlErr)
	}
}

func parseJSON(data []byte) (*Seed, error) {
	var s Seed
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid JSON in seed: %w", err)
	}
	return &s, nil
}

func parseYAML(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid YAML in seed: %w", err)
	}
	return &s, nil
}

// toJSON converts the input data to JSON for schema validation.
func toJSON(data []byte, path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON in seed: %w", err)
		}
		return data, nil

	case ".yaml", ".yml":
		return yamlToJSON(data)

	default:
		jsonData, err := yamlToJSON(data)
		if err == nil {
			return jsonData, nil
		}
		var raw any
		if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil {
			return data, nil
		}
		return nil, fmt.Errorf("failed to parse seed (tried YAML and JSON): %w", err)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in seed: %w", err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert seed to JSON: %w", err)
	}
	return jsonData, nil
}
