package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/fsys"
)

// Load reads the config file at path (relative to the filesystem root),
// decodes it according to its extension and validates it. A missing or
// unreadable file yields an empty config. Only the envFilePatterns default is
// applied here.
func Load(files *fsys.FS, path string) (*Config, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("config file not found, using defaults")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("config file unreadable, using defaults")
		}
		data = nil
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			e.WithDetail("file", path)
		}
		return nil, err
	}

	return cfg, nil
}

// Parse decodes raw config bytes. ext selects the format: ".toml", ".yaml" or
// ".yml"; anything else is treated as JSON. Empty input is an empty config.
func Parse(data []byte, ext string) (*Config, error) {
	raw, err := decode(data, ext)
	if err != nil {
		return nil, err
	}

	cfg, err := FromMap(raw)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.EnvFilePatterns == nil {
		cfg.EnvFilePatterns = append([]string(nil), DefaultEnvFilePatterns...)
	}

	return cfg, nil
}

// decode turns config bytes into a generic tree with a top-level object.
func decode(data []byte, ext string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var raw any
	switch strings.ToLower(ext) {
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInvalidConfig, "parsing TOML config")
		}
		raw = m
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInvalidConfig, "parsing YAML config")
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInvalidConfig, "parsing JSON config")
		}
	}

	if raw == nil {
		return map[string]any{}, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.Newf(apperr.CodeInvalidConfig, "config must be an object, got %s", typeName(raw))
	}

	return m, nil
}
