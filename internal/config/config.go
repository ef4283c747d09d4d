// =============================================================================
// World Cities Converter - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has a
// built-in default, so the converter runs with no configuration at all; the
// file only exists to change those defaults without long command lines.
//
// EXAMPLE config.yaml:
//   input_file: ./data/worldcities.csv
//   capitals_only: false
//   log_level: debug
//   csv_settings:
//     delimiter: ";"
//
// PRECEDENCE:
//   built-in defaults < config file < explicitly set command-line flags
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultInputFile is the input used when none is configured.
	DefaultInputFile = "worldcities.csv"

	// DefaultCapitalsOutput is the output used when filtering to primary capitals.
	DefaultCapitalsOutput = "capital_cities.json"

	// DefaultAllCitiesOutput is the output used when every row is converted.
	DefaultAllCitiesOutput = "all_world_cities.json"

	// DefaultConfigFile is the config path probed when --config is not given.
	DefaultConfigFile = "config.yaml"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the application configuration.
type MainConfig struct {
	// InputFile is the CSV or XLSX file of world cities.
	// Default: "worldcities.csv"
	InputFile string `yaml:"input_file"`

	// OutputFile is the JSON file to write. When empty the name is derived
	// from CapitalsOnly (see OutputPath).
	OutputFile string `yaml:"output_file"`

	// CapitalsOnly keeps only rows whose capital column is "primary".
	// A pointer so that an explicit "false" in YAML is distinguishable
	// from an unset key.
	// Default: true
	CapitalsOnly *bool `yaml:"capitals_only"`

	// LogLevel controls the verbosity of structured logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the slog handler: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// CSVSettings contains settings for parsing CSV input.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator. Accepts a single character or one
	// of the names "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// StripBOM removes a UTF-8 byte order mark from the first header cell.
	// Default: true
	StripBOM *bool `yaml:"strip_bom"`
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var cfg MainConfig
	applyDefaults(&cfg)
	return &cfg
}

// Load reads the configuration from configPath.
//
// A missing file is only tolerated when optional is true, in which case the
// defaults are returned. This lets the default "config.yaml" be absent while
// an explicitly requested file still has to exist.
func Load(configPath string, optional bool) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg MainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *MainConfig) {
	if cfg.InputFile == "" {
		cfg.InputFile = DefaultInputFile
	}
	if cfg.CapitalsOnly == nil {
		cfg.CapitalsOnly = boolPtr(true)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.StripBOM == nil {
		cfg.CSVSettings.StripBOM = boolPtr(true)
	}
}

// Validate checks the configuration values.
func (c *MainConfig) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}

	if _, err := c.CSVSettings.Comma(); err != nil {
		return err
	}

	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// FilterCapitals reports whether only primary capitals are kept.
func (c *MainConfig) FilterCapitals() bool {
	return c.CapitalsOnly == nil || *c.CapitalsOnly
}

// SetCapitalsOnly overrides the filter setting.
func (c *MainConfig) SetCapitalsOnly(v bool) {
	c.CapitalsOnly = boolPtr(v)
}

// OutputPath returns the configured output file, or the default name for the
// current filter setting when none is configured.
func (c *MainConfig) OutputPath() string {
	if c.OutputFile != "" {
		return c.OutputFile
	}
	if c.FilterCapitals() {
		return DefaultCapitalsOutput
	}
	return DefaultAllCitiesOutput
}

// Comma returns the delimiter as a rune for encoding/csv.
func (s CSVSettings) Comma() (rune, error) {
	switch s.Delimiter {
	case "", ",":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	r := []rune(s.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid csv delimiter %q", s.Delimiter)
	}
	return r[0], nil
}

// ShouldStripBOM reports whether a leading byte order mark is removed.
func (s CSVSettings) ShouldStripBOM() bool {
	return s.StripBOM == nil || *s.StripBOM
}

func boolPtr(v bool) *bool {
	return &v
}
