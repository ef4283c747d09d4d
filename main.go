// =============================================================================
// World Cities Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   cityconv            - Convert worldcities.csv to capital_cities.json
//   cityconv validate   - Check an input file without writing output
//   cityconv version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, validation, conversion and JSON output
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/worldcities-converter/cmd"
)

func main() {
	cmd.Execute()
}
