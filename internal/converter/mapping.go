package converter

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ginjaninja78/worldcities-converter/internal/types"
	"github.com/ginjaninja78/worldcities-converter/internal/validation"
)

// PrimaryCapital is the capital designation kept by the capitals filter.
const PrimaryCapital = "primary"

var (
	errNonFinite     = errors.New("value is not finite")
	errOutOfIntRange = errors.New("value out of integer range")
)

// isPrimaryCapital reports whether the row's capital cell is exactly "primary".
func isPrimaryCapital(row types.Row) bool {
	return row[validation.ColumnCapital] == PrimaryCapital
}

// mapRow converts one source row to a CityRecord.
//
// Absent cells (short rows) map to zero values: "" for text, 0.0 for
// coordinates, 0 for population, null for id. A present cell that is not a
// number fails the row, except an empty population, which is 0.
func mapRow(row types.Row, rowNumber int) (types.CityRecord, error) {
	lat, err := floatColumn(row, validation.ColumnLat, rowNumber)
	if err != nil {
		return types.CityRecord{}, err
	}

	lon, err := floatColumn(row, validation.ColumnLng, rowNumber)
	if err != nil {
		return types.CityRecord{}, err
	}

	population, err := populationColumn(row, rowNumber)
	if err != nil {
		return types.CityRecord{}, err
	}

	record := types.CityRecord{
		Name:        row[validation.ColumnCity],
		Lat:         types.Float(lat),
		Lon:         types.Float(lon),
		Country:     row[validation.ColumnCountry],
		ISO2:        row[validation.ColumnISO2],
		Population:  population,
		CapitalType: row[validation.ColumnCapital],
	}

	if id, ok := row.Get(validation.ColumnID); ok {
		record.ID = &id
	}

	return record, nil
}

// floatColumn parses a coordinate cell.
func floatColumn(row types.Row, column string, rowNumber int) (float64, error) {
	value, ok := row.Get(column)
	if !ok {
		return 0, nil
	}

	f, err := parseFloat(value)
	if err != nil {
		return 0, &FieldParseError{Row: rowNumber, Column: column, Value: value, Err: err}
	}
	return f, nil
}

// populationColumn parses the population cell as a float and truncates it
// toward zero, so "2800000.0" is 2800000.
func populationColumn(row types.Row, rowNumber int) (int64, error) {
	value, ok := row.Get(validation.ColumnPopulation)
	if !ok || value == "" {
		return 0, nil
	}

	f, err := parseFloat(value)
	if err == nil && (f >= math.MaxInt64 || f < math.MinInt64) {
		err = errOutOfIntRange
	}
	if err != nil {
		return 0, &FieldParseError{
			Row:    rowNumber,
			Column: validation.ColumnPopulation,
			Value:  value,
			Err:    err,
		}
	}

	return int64(math.Trunc(f)), nil
}

// parseFloat accepts surrounding whitespace and rejects NaN and infinities,
// which have no JSON representation.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNonFinite
	}
	return f, nil
}
