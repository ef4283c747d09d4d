// =============================================================================
// World Cities Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one world-cities
// table into one JSON document.
//
// CONVERSION PIPELINE:
//   1. Check that the input exists
//   2. Open the row source (CSV, or XLSX by file extension)
//   3. Validate the header against the required columns
//   4. For every row, in file order:
//      a. Drop it if the capitals filter is on and it is not "primary"
//      b. Map it to a CityRecord (a bad number aborts the whole run)
//   5. Close the input
//   6. Write the JSON array to the output path
//
// No output is written unless every surviving row mapped cleanly.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/worldcities-converter/internal/config"
	"github.com/ginjaninja78/worldcities-converter/internal/csvparser"
	"github.com/ginjaninja78/worldcities-converter/internal/jsonwriter"
	"github.com/ginjaninja78/worldcities-converter/internal/types"
	"github.com/ginjaninja78/worldcities-converter/internal/validation"
	"github.com/ginjaninja78/worldcities-converter/internal/xlsxparser"
	"github.com/ginjaninja78/worldcities-converter/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one conversion.
type Result struct {
	// RunID identifies the run in logs.
	RunID uuid.UUID

	// InputPath is the file that was read.
	InputPath string

	// OutputPath is the file that was (or would have been) written.
	OutputPath string

	// CapitalsOnly is the effective filter setting.
	CapitalsOnly bool

	// Success indicates whether the output file was written.
	Success bool

	// Error is nil on success, otherwise one of the taxonomy errors.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of data rows read from the input.
	RowsRead int

	// RowsSkipped is the number of rows dropped by the capitals filter.
	RowsSkipped int

	// RecordsMapped is the number of rows that survived the filter and
	// mapped to a record.
	RecordsMapped int

	// RecordsWritten is the number of records in the output array. Zero on
	// a dry run.
	RecordsWritten int

	// ProcessingTime is the time taken by the conversion.
	ProcessingTime time.Duration
}

// String summarizes the result for console output.
func (r Result) String() string {
	if r.Success {
		return fmt.Sprintf("Successfully converted %d records to '%s' (capitals only: %t)",
			r.Stats.RecordsWritten, r.OutputPath, r.CapitalsOnly)
	}
	return fmt.Sprintf("Conversion of '%s' failed: %v", r.InputPath, r.Error)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Converter.
type Options struct {
	// InputPath is the CSV or XLSX file to read.
	InputPath string

	// OutputPath is the JSON file to write.
	OutputPath string

	// CapitalsOnly keeps only rows whose capital column is "primary".
	CapitalsOnly bool

	// CSVSettings controls CSV parsing. The zero value means comma
	// separated with BOM stripping.
	CSVSettings config.CSVSettings

	// Sheet selects the worksheet of an XLSX input. Empty means the first.
	Sheet string

	// DryRun validates and maps every row but does not write the output.
	DryRun bool
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.MainConfig) Options {
	return Options{
		InputPath:    cfg.InputFile,
		OutputPath:   cfg.OutputPath(),
		CapitalsOnly: cfg.FilterCapitals(),
		CSVSettings:  cfg.CSVSettings,
	}
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts a single world-cities table to JSON.
type Converter struct {
	options Options
	logger  Logger
	runID   uuid.UUID
}

// Logger is the logging interface used by the converter. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// RowSource is a header-first table read row by row. Both
// csvparser.StreamingParser and xlsxparser.StreamingParser implement it.
type RowSource interface {
	Headers() []string
	Next() bool
	Row() types.Row
	RowNumber() int
	Err() error
	Close() error
}

// New creates a new Converter. A nil logger discards all output.
func New(options Options, logger Logger) *Converter {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Converter{
		options: options,
		logger:  logger,
		runID:   uuid.New(),
	}
}

// Convert reads inputPath, keeps only primary capitals when capitalsOnly is
// set, and writes the records as a JSON array to outputPath. It returns the
// number of records written.
func Convert(inputPath, outputPath string, capitalsOnly bool) (int, error) {
	result := New(Options{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		CapitalsOnly: capitalsOnly,
	}, nil).Run()

	return result.Stats.RecordsWritten, result.Error
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		RunID:        c.runID,
		InputPath:    c.options.InputPath,
		OutputPath:   c.options.OutputPath,
		CapitalsOnly: c.options.CapitalsOnly,
	}

	c.logger.Info("starting conversion",
		"run_id", c.runID,
		"input", c.options.InputPath,
		"output", c.options.OutputPath,
		"capitals_only", c.options.CapitalsOnly,
	)

	records, err := c.readRecords(&result.Stats)
	if err != nil {
		return c.fail(result, startTime, err)
	}
	result.Stats.RecordsMapped = len(records)

	if c.options.DryRun {
		c.logger.Info("dry run, output not written", "run_id", c.runID, "records", len(records))
	} else {
		if err := jsonwriter.WriteFile(c.options.OutputPath, records); err != nil {
			return c.fail(result, startTime, &UnexpectedError{Op: "write output", Err: err})
		}
		result.Stats.RecordsWritten = len(records)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	c.logger.Info("conversion complete",
		"run_id", c.runID,
		"records", len(records),
		"rows_read", result.Stats.RowsRead,
		"rows_skipped", result.Stats.RowsSkipped,
		"elapsed", result.Stats.ProcessingTime,
	)

	return result
}

// fail records err on the result and logs it.
func (c *Converter) fail(result Result, startTime time.Time, err error) Result {
	result.Error = err
	result.Stats.ProcessingTime = time.Since(startTime)

	if IsHandled(err) {
		c.logger.Warn("conversion aborted", "run_id", c.runID, "error", err)
	} else {
		c.logger.Error("conversion failed", "run_id", c.runID, "error", err)
	}

	return result
}

// =============================================================================
// READ PASS
// =============================================================================

// readRecords performs the whole read pass. The input is closed before it
// returns, so the write pass never overlaps it.
func (c *Converter) readRecords(stats *ProcessingStats) ([]types.CityRecord, error) {
	source, err := c.openSource()
	if err != nil {
		return nil, err
	}
	defer source.Close()

	headers := source.Headers()
	c.logger.Debug("read header", "run_id", c.runID, "columns", headers)

	if err := validation.ValidateHeaders(headers); err != nil {
		return nil, err
	}
	if !validation.HasColumn(headers, validation.ColumnID) {
		c.logger.Debug("input has no id column, ids will be null", "run_id", c.runID)
	}

	records := make([]types.CityRecord, 0)
	for source.Next() {
		stats.RowsRead++
		row := source.Row()

		if c.options.CapitalsOnly && !isPrimaryCapital(row) {
			stats.RowsSkipped++
			continue
		}

		record, err := mapRow(row, source.RowNumber())
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := source.Err(); err != nil {
		return nil, &UnexpectedError{Op: "read input", Err: err}
	}

	return records, nil
}

// openSource opens the input as CSV or XLSX.
func (c *Converter) openSource() (RowSource, error) {
	path := c.options.InputPath

	if !utils.FileExists(path) {
		return nil, &FileNotFoundError{Path: path}
	}

	var (
		source RowSource
		err    error
	)
	if isWorkbook(path) {
		source, err = xlsxparser.NewStreamingParser(path, c.options.Sheet)
	} else {
		source, err = csvparser.NewStreamingParser(path, c.options.CSVSettings)
	}

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, &UnexpectedError{Op: "open input", Err: err}
	}

	return source, nil
}

// isWorkbook reports whether path names an Excel workbook.
func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// =============================================================================
// LOGGING
// =============================================================================

// discardLogger drops all messages.
type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
