// =============================================================================
// World Cities Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (Row)
//   - converter (CityRecord)
//   - jsonwriter (CityRecord, Float)
//
// =============================================================================

package types

import (
	"math"
	"strconv"
)

// =============================================================================
// CITY RECORD
// =============================================================================

// CityRecord is a single city in the JSON output.
//
// Field order is significant: encoding/json emits struct fields in declaration
// order, and consumers expect name, lat, lon, country, iso2, population,
// capital_type, id.
type CityRecord struct {
	// Name is the city name (source column "city").
	Name string `json:"name"`

	// Lat is the latitude (source column "lat").
	Lat Float `json:"lat"`

	// Lon is the longitude (source column "lng").
	Lon Float `json:"lon"`

	// Country is the country name.
	Country string `json:"country"`

	// ISO2 is the two-letter country code.
	ISO2 string `json:"iso2"`

	// Population is the truncated integer population. Zero when unknown.
	Population int64 `json:"population"`

	// CapitalType is the capital designation: "primary", "admin", "minor" or "".
	CapitalType string `json:"capital_type"`

	// ID is the source identifier. Nil when the input has no "id" column,
	// which serializes as null.
	ID *string `json:"id"`
}

// =============================================================================
// ROW
// =============================================================================

// Row is one data row keyed by header name.
//
// A key is absent when the row is shorter than the header; a present key with
// an empty value is a blank cell. Callers that care about the difference use
// the two-value lookup.
type Row map[string]string

// Get returns the value for column and whether the cell was present.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// =============================================================================
// FLOAT
// =============================================================================

// Float is a float64 that always encodes with a decimal point, so whole
// coordinates such as 139 are written as 139.0 and stay floats for readers
// that distinguish integer and real JSON numbers.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &UnsupportedFloatError{Value: v}
	}

	b := strconv.AppendFloat(nil, v, 'f', -1, 64)
	for _, c := range b {
		if c == '.' {
			return b, nil
		}
	}
	return append(b, '.', '0'), nil
}

// UnsupportedFloatError is returned when a non-finite value is encoded.
type UnsupportedFloatError struct {
	Value float64
}

// Error implements the error interface.
func (e *UnsupportedFloatError) Error() string {
	return "unsupported float value: " + strconv.FormatFloat(e.Value, 'g', -1, 64)
}
