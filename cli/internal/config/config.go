// Package config loads and saves the CLI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zhaobenny/ccledger/internal/aggregator"
	"github.com/zhaobenny/ccledger/internal/model"
)

// Config holds the CLI configuration, stored at ~/.ccledger.yaml.
type Config struct {
	Currency    string            `yaml:"currency"`
	Budget      *model.BudgetInfo `yaml:"budget,omitempty"`
	PricingFile string            `yaml:"pricing_file,omitempty"`
	Offline     bool              `yaml:"offline"`
	// DataDirs entries are directories walked for JSONL logs, or
	// individual .jsonl/.json/.csv files.
	DataDirs []string `yaml:"data_dirs,omitempty"`
	OnInvalid   string            `yaml:"on_invalid"` // skip | fail
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Currency:  "USD",
		OnInvalid: "skip",
	}
}

// configPath returns the path to the config file
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ccledger.yaml"), nil
}

// Load reads and validates the configuration, returning defaults when no
// file exists.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects bad budget values and unknown policies.
func (c *Config) Validate() error {
	if c.Budget != nil {
		if c.Budget.WarningThreshold == 0 {
			c.Budget.WarningThreshold = model.DefaultWarningThreshold
		}
		if c.Budget.AlertThreshold == 0 {
			c.Budget.AlertThreshold = model.DefaultAlertThreshold
		}
		if c.Budget.Currency == "" {
			c.Budget.Currency = c.Currency
		}
		if err := c.Budget.Validate(); err != nil {
			return err
		}
	}
	switch c.OnInvalid {
	case "", "skip", "fail":
	default:
		return fmt.Errorf("on_invalid must be skip or fail, got %q", c.OnInvalid)
	}
	return nil
}

// Policy maps the configured invalid-record handling to the aggregator's.
func (c *Config) Policy() aggregator.Policy {
	if c.OnInvalid == "fail" {
		return aggregator.FailFast
	}
	return aggregator.SkipInvalid
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
