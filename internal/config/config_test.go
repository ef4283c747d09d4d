package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultInputFile, cfg.InputFile)
	assert.True(t, cfg.FilterCapitals())
	assert.Equal(t, DefaultCapitalsOutput, cfg.OutputPath())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.CSVSettings.ShouldStripBOM())

	comma, err := cfg.CSVSettings.Comma()
	require.NoError(t, err)
	assert.Equal(t, ',', comma)
}

func TestOutputPath_FollowsFilter(t *testing.T) {
	cfg := Default()
	cfg.SetCapitalsOnly(false)
	assert.Equal(t, DefaultAllCitiesOutput, cfg.OutputPath())

	cfg.OutputFile = "custom.json"
	assert.Equal(t, "custom.json", cfg.OutputPath())
}

func TestLoad_OptionalMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_RequiredMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.Error(t, err)
}

func TestLoad_ExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
input_file: data/cities.csv
capitals_only: false
log_level: debug
log_format: json
csv_settings:
  delimiter: semicolon
  strip_bom: false
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "data/cities.csv", cfg.InputFile)
	assert.False(t, cfg.FilterCapitals())
	assert.Equal(t, DefaultAllCitiesOutput, cfg.OutputPath())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.CSVSettings.ShouldStripBOM())

	comma, err := cfg.CSVSettings.Comma()
	require.NoError(t, err)
	assert.Equal(t, ';', comma)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "input_file: [",
		"bad level":     "log_level: loud",
		"bad format":    "log_format: xml",
		"bad delimiter": "csv_settings:\n  delimiter: ab",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content), false)
			assert.Error(t, err)
		})
	}
}

func TestComma(t *testing.T) {
	tests := map[string]rune{
		",":    ',',
		"tab":  '\t',
		"\\t":  '\t',
		"pipe": '|',
		"|":    '|',
		";":    ';',
		":":    ':',
	}

	for in, want := range tests {
		got, err := CSVSettings{Delimiter: in}.Comma()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := CSVSettings{Delimiter: `"`}.Comma()
	assert.Error(t, err)
}
