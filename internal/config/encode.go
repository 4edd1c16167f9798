package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatForPath returns the format implied by a config file's extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode serializes cfg in the given format. Output round-trips through Parse.
func Encode(cfg *Config, format string) (string, error) {
	var buf bytes.Buffer

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return "", fmt.Errorf("encoding JSON: %w", err)
		}
	case FormatTOML:
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(cfg); err != nil {
			return "", fmt.Errorf("encoding TOML: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}

	return buf.String(), nil
}
