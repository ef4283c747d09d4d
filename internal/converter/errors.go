package converter

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/worldcities-converter/internal/validation"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Every failure of a conversion is one of four kinds. None is retried; the
// caller fixes the condition and runs again.
//
//   *FileNotFoundError  the input path does not exist
//   *SchemaError        the header lacks a required column
//   *FieldParseError    a numeric cell could not be parsed
//   *UnexpectedError    anything else (read errors, write errors, ...)
//
// The first three are "handled" failures: the CLI reports them and exits 0.

// SchemaError is the schema gate's error, re-exported so callers only need
// this package for errors.As.
type SchemaError = validation.SchemaError

// FileNotFoundError reports a missing input file.
type FileNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("input file not found at '%s'", e.Path)
}

// FieldParseError reports a numeric cell that is not a number. A single one
// aborts the whole conversion.
type FieldParseError struct {
	// Row is the record number in the input, counting the header as row 1.
	Row int

	// Column is the source column name.
	Column string

	// Value is the offending cell.
	Value string

	Err error
}

// Error implements the error interface.
func (e *FieldParseError) Error() string {
	return fmt.Sprintf("row %d, column '%s': cannot parse %q as a number: %v",
		e.Row, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *FieldParseError) Unwrap() error {
	return e.Err
}

// UnexpectedError wraps any failure outside the other three kinds.
type UnexpectedError struct {
	// Op names the step that failed, e.g. "read input" or "write output".
	Op string

	Err error
}

// Error implements the error interface.
func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// IsHandled reports whether err is a missing file, schema or field parse
// failure. Those are reported to the user without a failing exit status.
func IsHandled(err error) bool {
	var notFound *FileNotFoundError
	var schema *SchemaError
	var parse *FieldParseError

	return errors.As(err, &notFound) ||
		errors.As(err, &schema) ||
		errors.As(err, &parse)
}
