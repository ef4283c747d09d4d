// =============================================================================
// World Cities Converter - Convert Command
// =============================================================================
//
// This file holds the conversion run by the root command.
//
// FLAGS:
//   --input, -i       : Input CSV or XLSX file (default worldcities.csv)
//   --output, -o      : Output JSON file (default depends on the filter)
//   --capitals-only   : Keep only primary capitals (default true)
//   --delimiter       : CSV field separator (default ",")
//   --sheet           : Worksheet to read from an XLSX input (default first)
//
// PROCESSING PIPELINE:
//   1. Load configuration (optional config.yaml, then explicit flags)
//   2. Run the converter
//   3. Report the outcome
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/worldcities-converter/internal/config"
	"github.com/ginjaninja78/worldcities-converter/internal/converter"
	"github.com/ginjaninja78/worldcities-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// convertOptions holds the flags that only apply to a conversion.
type convertOptions struct {
	output       string
	capitalsOnly bool
	delimiter    string
	sheet        string
}

// registerConvertFlags adds the conversion flags to cmd.
func registerConvertFlags(cmd *cobra.Command, opts *convertOptions) {
	cmd.Flags().StringVarP(
		&opts.output,
		"output",
		"o",
		"",
		"Output JSON file (default capital_cities.json, or all_world_cities.json with --capitals-only=false)",
	)

	cmd.Flags().BoolVar(
		&opts.capitalsOnly,
		"capitals-only",
		true,
		"Keep only primary (national) capitals",
	)

	cmd.Flags().StringVar(
		&opts.delimiter,
		"delimiter",
		"",
		"CSV field separator (default \",\")",
	)

	cmd.Flags().StringVar(
		&opts.sheet,
		"sheet",
		"",
		"Worksheet to read from an XLSX input (default is the first sheet)",
	)
}

// applyConvertFlags overrides cfg with the conversion flags the user set.
func applyConvertFlags(cmd *cobra.Command, cfg *config.MainConfig, opts *convertOptions) error {
	if cmd.Flags().Changed("output") {
		cfg.OutputFile = opts.output
	}
	if cmd.Flags().Changed("capitals-only") {
		cfg.SetCapitalsOnly(opts.capitalsOnly)
	}
	if cmd.Flags().Changed("delimiter") {
		cfg.CSVSettings.Delimiter = opts.delimiter
	}

	return cfg.Validate()
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert performs the conversion and reports the result.
//
// Input problems (missing file, missing column, bad number) are reported and
// return nil; anything else is returned so the process exits non-zero.
func runConvert(cmd *cobra.Command, opts *globalOptions, convOpts *convertOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := applyConvertFlags(cmd, cfg, convOpts); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.verbose)

	options := converter.OptionsFromConfig(cfg)
	options.Sheet = convOpts.sheet

	result := converter.New(options, logger).Run()
	if result.Error != nil {
		return reportFailure(cmd.ErrOrStderr(), result)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.String())

	if size, err := utils.GetFileSize(result.OutputPath); err == nil {
		logger.Debug("output written", "run_id", result.RunID, "path", result.OutputPath, "bytes", size)
	}

	return nil
}

// reportFailure prints the handled error of a failed run and swallows it, or
// returns an unexpected one.
func reportFailure(w io.Writer, result converter.Result) error {
	err := result.Error
	if !converter.IsHandled(err) {
		return err
	}

	var schemaErr *converter.SchemaError
	if errors.As(err, &schemaErr) {
		fmt.Fprintln(w, "Error: Missing one or more required columns in input.")
		fmt.Fprintf(w, "Expected: %q\n", schemaErr.Expected)
		fmt.Fprintf(w, "Found: %q\n", schemaErr.Found)
		return nil
	}

	fmt.Fprintf(w, "Error: %s\n", result)
	return nil
}
