// Package config loads dieselopt settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/diesel-lang/diesel/internal/diagnostic"
	"github.com/diesel-lang/diesel/internal/optimize"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "DIESEL_CONFIG"

// FileName is the config file searched for when EnvVar is unset.
const FileName = "dieselopt.toml"

// Config holds the complete tool configuration
type Config struct {
	Optimizer   OptimizerConfig   `toml:"optimizer"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Log         LogConfig         `toml:"log"`
}

// OptimizerConfig controls constant folding
type OptimizerConfig struct {
	Enabled     bool   `toml:"enabled"`
	ZeroDivisor string `toml:"zero_divisor"` // diagnose or defer
	FixedPoint  bool   `toml:"fixed_point"`
	MaxPasses   int    `toml:"max_passes"`
}

// DiagnosticsConfig controls reporting
type DiagnosticsConfig struct {
	MaxErrors        int      `toml:"max_errors"`
	WarningsAsErrors bool     `toml:"warnings_as_errors"`
	IgnoreCodes      []string `toml:"ignore_codes"`
	Color            string   `toml:"color"` // auto, always or never
}

// LogConfig controls the CLI logger
type LogConfig struct {
	Level string `toml:"level"` // warn, info or debug
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{
		Optimizer: OptimizerConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file. Keys missing from the file
// keep their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by DIESEL_CONFIG, or the first
// dieselopt.toml found in the working directory or the user config
// directory. Without any file it returns Default().
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}

	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "diesel", FileName))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Optimizer.ZeroDivisor == "" {
		c.Optimizer.ZeroDivisor = optimize.DiagnoseZeroDivisor.String()
	}
	if c.Optimizer.MaxPasses == 0 {
		c.Optimizer.MaxPasses = optimize.DefaultMaxPasses
	}
	if c.Diagnostics.Color == "" {
		c.Diagnostics.Color = "auto"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := optimize.ParseZeroDivisorPolicy(c.Optimizer.ZeroDivisor); err != nil {
		return fmt.Errorf("optimizer.zero_divisor: %w", err)
	}
	if c.Optimizer.MaxPasses < 0 {
		return fmt.Errorf("optimizer.max_passes must not be negative, got %d", c.Optimizer.MaxPasses)
	}
	if c.Diagnostics.MaxErrors < 0 {
		return fmt.Errorf("diagnostics.max_errors must not be negative, got %d", c.Diagnostics.MaxErrors)
	}
	if _, err := diagnostic.ParseColorMode(c.Diagnostics.Color); err != nil {
		return fmt.Errorf("diagnostics.color: %w", err)
	}
	if _, _, err := c.LogFlags(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ZeroDivisorPolicy returns the parsed optimizer.zero_divisor setting.
func (c *Config) ZeroDivisorPolicy() optimize.ZeroDivisorPolicy {
	p, _ := optimize.ParseZeroDivisorPolicy(c.Optimizer.ZeroDivisor)
	return p
}

// ColorMode returns the parsed diagnostics.color setting.
func (c *Config) ColorMode() diagnostic.ColorMode {
	m, _ := diagnostic.ParseColorMode(c.Diagnostics.Color)
	return m
}

// EngineConfig returns the diagnostic engine settings.
func (c *Config) EngineConfig() diagnostic.Config {
	return diagnostic.Config{
		IgnoreCodes:      c.Diagnostics.IgnoreCodes,
		MaxErrors:        c.Diagnostics.MaxErrors,
		WarningsAsErrors: c.Diagnostics.WarningsAsErrors,
	}
}

// LogFlags maps log.level onto the logger's verbose and debug switches.
func (c *Config) LogFlags() (verbose, debug bool, err error) {
	switch strings.ToLower(c.Log.Level) {
	case "", "warn":
		return false, false, nil
	case "info":
		return true, false, nil
	case "debug":
		return true, true, nil
	}
	return false, false, fmt.Errorf("unknown level %q (want warn, info or debug)", c.Log.Level)
}
