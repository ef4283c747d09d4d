// =============================================================================
// World Cities Converter - Validation Engine
// =============================================================================
//
// This module is the schema gate: it decides, from the header row alone,
// whether an input can be converted. It runs before any data row is read,
// so a file that fails here never produces output.
//
// REQUIRED COLUMNS:
//   city, lat, lng, country, iso2, population, capital
//
// OPTIONAL COLUMNS:
//   id (read when present). Every other column is ignored.
//
// Column names are matched exactly (case and surrounding whitespace count).
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Source column names.
const (
	ColumnCity       = "city"
	ColumnLat        = "lat"
	ColumnLng        = "lng"
	ColumnCountry    = "country"
	ColumnISO2       = "iso2"
	ColumnPopulation = "population"
	ColumnCapital    = "capital"
	ColumnID         = "id"
)

// RequiredColumns returns the columns every input header must contain, in
// the order they are reported.
func RequiredColumns() []string {
	return []string{
		ColumnCity,
		ColumnLat,
		ColumnLng,
		ColumnCountry,
		ColumnISO2,
		ColumnPopulation,
		ColumnCapital,
	}
}

// =============================================================================
// SCHEMA ERROR
// =============================================================================

// SchemaError reports an input header that lacks required columns.
type SchemaError struct {
	// Expected is the full list of required columns.
	Expected []string

	// Found is the header row as read from the input.
	Found []string

	// Missing is the subset of Expected absent from Found.
	Missing []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s) %s; expected: [%s], found: [%s]",
		strings.Join(e.Missing, ", "),
		strings.Join(e.Expected, ", "),
		strings.Join(e.Found, ", "),
	)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateHeaders returns a *SchemaError if headers lack any required column.
func ValidateHeaders(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	expected := RequiredColumns()
	var missing []string
	for _, col := range expected {
		if !present[col] {
			missing = append(missing, col)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	found := make([]string, len(headers))
	copy(found, headers)

	return &SchemaError{
		Expected: expected,
		Found:    found,
		Missing:  missing,
	}
}

// HasColumn reports whether headers contain column.
func HasColumn(headers []string, column string) bool {
	for _, h := range headers {
		if h == column {
			return true
		}
	}
	return false
}
