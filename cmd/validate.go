// =============================================================================
// World Cities Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It runs the full read pass
// (existence check, header schema, number parsing) without writing output,
// and reports how many records a conversion would produce.
//
// COMMAND USAGE:
//   cityconv validate [--input FILE] [--capitals-only=false] [--delimiter ";"]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/worldcities-converter/internal/converter"
)

// newValidateCmd builds the 'validate' command.
func newValidateCmd(opts *globalOptions) *cobra.Command {
	var capitalsOnly bool
	var delimiter string
	var sheet string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an input file without writing output",
		Long: `Validate reads the input exactly as a conversion would: the file must exist,
the header must contain every required column, and every numeric cell of
the rows that would be kept must parse. No output file is written.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("capitals-only") {
				cfg.SetCapitalsOnly(capitalsOnly)
			}
			if cmd.Flags().Changed("delimiter") {
				cfg.CSVSettings.Delimiter = delimiter
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			options := converter.OptionsFromConfig(cfg)
			options.Sheet = sheet
			options.DryRun = true

			logger := newLogger(cmd.ErrOrStderr(), cfg, opts.verbose)
			result := converter.New(options, logger).Run()
			if result.Error != nil {
				return reportFailure(cmd.ErrOrStderr(), result)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"'%s' is valid: %d rows read, %d records would be written (capitals only: %t)\n",
				result.InputPath,
				result.Stats.RowsRead,
				result.Stats.RecordsMapped,
				result.CapitalsOnly,
			)
			return nil
		},
	}

	validateCmd.Flags().BoolVar(&capitalsOnly, "capitals-only", true, "Keep only primary (national) capitals")
	validateCmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV field separator (default \",\")")
	validateCmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from an XLSX input (default is the first sheet)")

	return validateCmd
}
