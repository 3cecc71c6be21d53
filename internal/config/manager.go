package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load returns Default() when path is empty, otherwise the parsed file.
// Durations are validated before returning.
func Load(path string) (*Config, error) {
	var cfg *Config
	if strings.TrimSpace(path) == "" {
		cfg = Default()
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(path, b); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if _, err := cfg.ParseDurations(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Parse decodes data (JSON, or YAML when path ends in .yaml/.yml) on top of
// Default(). Unknown fields and trailing data are rejected.
func Parse(path string, data []byte) (*Config, error) {
	if isYAML(path) {
		j, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = j
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	if strings.TrimSpace(cfg.FeedsFile) == "" {
		cfg.FeedsFile = DefaultFeedsFile
	}
	if strings.TrimSpace(cfg.KeywordsFile) == "" {
		cfg.KeywordsFile = DefaultKeywordsFile
	}
	return cfg, nil
}
