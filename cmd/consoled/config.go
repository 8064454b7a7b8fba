package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's YAML configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// SigningKey signs (or encrypts, with SensitiveState) wire state.
	SigningKey string `yaml:"signing_key"`

	// SensitiveState switches wire state from signed to encrypted.
	SensitiveState bool `yaml:"sensitive_state"`

	// FullPageRefresh makes the approval workflow navigate to the root
	// view after a grant instead of dismissing the dialog in place.
	FullPageRefresh bool `yaml:"full_page_refresh"`

	// GrantsDB is the SQLite path of the approval grant log.
	GrantsDB string `yaml:"grants_db"`

	// Schemas lists YAML form-schema files to load.
	Schemas []string `yaml:"schemas"`
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Listen:   ":8000",
		GrantsDB: "grants.sqlite",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("config %s: signing_key is required", path)
	}
	return cfg, nil
}
