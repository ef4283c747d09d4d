// =============================================================================
// World Cities Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Run without a
// subcommand, the root command performs the conversion with the defaults:
//
//   cityconv                         # worldcities.csv -> capital_cities.json
//   cityconv --capitals-only=false   # worldcities.csv -> all_world_cities.json
//
// COBRA CLI STRUCTURE:
//   rootCmd (cityconv)
//   ├── validateCmd (cityconv validate)
//   └── versionCmd (cityconv version)
//
// EXIT STATUS:
//   0  conversion succeeded, or failed with a reported input problem
//      (missing file, missing column, unparseable number)
//   1  unexpected failure (I/O errors, bad configuration, ...)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/worldcities-converter/internal/config"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	// cfgFile is the path to the configuration file.
	cfgFile string

	// verbose enables debug logging.
	verbose bool

	// input is the CSV or XLSX file to read.
	input string
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	convOpts := &convertOptions{}

	rootCmd := &cobra.Command{
		Use:   "cityconv",
		Short: "World cities converter - turn a world cities CSV into a JSON array",
		Long: `cityconv reads a table of world cities (CSV or XLSX) with the columns
city, lat, lng, country, iso2, population, capital (and optionally id),
and writes the cities as a JSON array.

By default only national capitals (capital = "primary") are kept and the
result is written to capital_cities.json. With --capitals-only=false every
city is converted and written to all_world_cities.json.

Example Usage:
  cityconv                                   # Convert worldcities.csv
  cityconv -i cities.xlsx -o out.json        # Custom input and output
  cityconv --capitals-only=false             # Keep every city
  cityconv validate -i worldcities.csv       # Check the input only`,

		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, convOpts)
		},
	}

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&opts.cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file (optional unless set explicitly)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&opts.verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVarP(
		&opts.input,
		"input",
		"i",
		config.DefaultInputFile,
		"Input CSV or XLSX file",
	)

	registerConvertFlags(rootCmd, convOpts)

	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the configuration file and applies the flags the user
// set explicitly on top of it.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.MainConfig, error) {
	optional := !cmd.Flags().Changed("config")

	cfg, err := config.Load(opts.cfgFile, optional)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("input") {
		cfg.InputFile = opts.input
	}

	return cfg, nil
}

// newLogger builds the structured logger for cfg. Logs go to w so that
// stdout stays reserved for the conversion report.
func newLogger(w io.Writer, cfg *config.MainConfig, verbose bool) *slog.Logger {
	level := parseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// parseLevel maps a config log level to a slog level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
