// =============================================================================
// World Cities Converter - JSON Writer Module
// =============================================================================
//
// This module serializes city records to the output document: a single
// top-level JSON array, indented with two spaces, one object per city.
//
// ENCODING RULES:
//   - Keys appear in CityRecord declaration order.
//   - Non-ASCII text is written literally ("São Paulo", not "S\u00e3o Paulo").
//   - HTML-sensitive characters (<, >, &) are not escaped.
//   - An empty result is written as [].
//
// =============================================================================

package jsonwriter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ginjaninja78/worldcities-converter/internal/types"
)

// Indent is the per-level indentation of the output document.
const Indent = "  "

// Generate encodes records as an indented JSON array.
func Generate(records []types.CityRecord) ([]byte, error) {
	if records == nil {
		records = []types.CityRecord{}
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetIndent("", Indent)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}

	return buffer.Bytes(), nil
}

// WriteFile encodes records and writes them to path, replacing any existing
// file. Nothing is written if encoding fails.
func WriteFile(path string, records []types.CityRecord) error {
	data, err := Generate(records)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}
