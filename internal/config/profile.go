package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional on-disk override for board-specific settings,
// letting a deployment pin its GPIO pin assignment and board generation
// without recompiling. Most installs never need one; Config's built-in
// defaults cover the stock 8-pin wiring.
type Profile struct {
	Board string `yaml:"board"`
	Pins  []int  `yaml:"pins"`
}

// LoadProfile reads a YAML board profile from path and applies it on top
// of cfg.
func LoadProfile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("config: parse profile %s: %w", path, err)
	}

	if p.Board != "" {
		board, err := BoardGenerationFromString(p.Board)
		if err != nil {
			return fmt.Errorf("config: profile %s: %w", path, err)
		}
		cfg.Board = board
	}

	if len(p.Pins) > 0 {
		if len(p.Pins) != 8 {
			return fmt.Errorf("config: profile %s: pins must list exactly 8 entries, got %d", path, len(p.Pins))
		}
		cfg.Pins = p.Pins
	}

	return nil
}
