// Package config handles webpilot configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level webpilot configuration.
type Config struct {
	// URL of the assistant page to automate.
	URL string `yaml:"url"`

	Browser  BrowserConfig  `yaml:"browser"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Selectors is an optional YAML file overriding the default selector
	// catalog, e.g. for a differently localised UI.
	Selectors string `yaml:"selectors"`
}

// BrowserConfig controls the Chrome instance.
type BrowserConfig struct {
	Remote   string `yaml:"remote"`
	Headless bool   `yaml:"headless"`
}

// TimeoutsConfig carries the step-level timing knobs.
type TimeoutsConfig struct {
	// Step bounds every ordinary wait-and-act step. Default: 10s.
	Step time.Duration `yaml:"step"`
	// Spinner bounds the post-upload processing wait. Default: 2m.
	Spinner time.Duration `yaml:"spinner"`
	// ExtractMaster is the hard upper bound on response extraction.
	// Default: 30s.
	ExtractMaster time.Duration `yaml:"extract_master"`
	// ExtractStability is the no-growth window after which extracted text
	// is considered final. Default: 4s.
	ExtractStability time.Duration `yaml:"extract_stability"`
}

// UnmarshalYAML accepts Go duration strings ("5s", "2m") for every knob.
func (t *TimeoutsConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Step             string `yaml:"step"`
		Spinner          string `yaml:"spinner"`
		ExtractMaster    string `yaml:"extract_master"`
		ExtractStability string `yaml:"extract_stability"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		in   string
		out  *time.Duration
	}{
		{"step", raw.Step, &t.Step},
		{"spinner", raw.Spinner, &t.Spinner},
		{"extract_master", raw.ExtractMaster, &t.ExtractMaster},
		{"extract_stability", raw.ExtractStability, &t.ExtractStability},
	}
	for _, f := range fields {
		if f.in == "" {
			continue
		}
		d, err := time.ParseDuration(f.in)
		if err != nil {
			return fmt.Errorf("timeouts.%s: %w", f.name, err)
		}
		*f.out = d
	}
	return nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeouts.Step <= 0 {
		c.Timeouts.Step = 10 * time.Second
	}
	if c.Timeouts.Spinner <= 0 {
		c.Timeouts.Spinner = 2 * time.Minute
	}
	if c.Timeouts.ExtractMaster <= 0 {
		c.Timeouts.ExtractMaster = 30 * time.Second
	}
	if c.Timeouts.ExtractStability <= 0 {
		c.Timeouts.ExtractStability = 4 * time.Second
	}
}
