package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional vdbe.toml runtime configuration.
type Config struct {
	Session Session `toml:"session"`
	Output  Output  `toml:"output"`
}

// Session configures the engine session.
type Session struct {
	Path string `toml:"path"`
}

// Output configures result rendering.
type Output struct {
	Explain bool   `toml:"explain"`
	Verbose string `toml:"verbose"` // commonlog verbosity name: error, warning, info, debug
}

// loadConfig parses a TOML configuration file. A missing path yields the
// zero config.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &cfg, nil
}

// verbosity maps a config verbosity name onto commonlog's numeric scale.
func (c *Config) verbosity() int {
	switch c.Output.Verbose {
	case "debug":
		return 2
	case "info":
		return 1
	case "warning":
		return 0
	default:
		return -1
	}
}
