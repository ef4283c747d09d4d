package converter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/worldcities-converter/internal/config"
)

const header = "city,lat,lng,country,iso2,population,capital,id\n"

// writeInput writes content to a temp CSV and returns its path and a sibling
// output path.
func writeInput(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "worldcities.csv")
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))
	return input, filepath.Join(dir, "out.json")
}

// readOutput decodes the output array.
func readOutput(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// objectKeys returns the keys of every object in the output array, in
// document order.
func objectKeys(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var objects []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &objects))

	all := make([][]string, 0, len(objects))
	for _, obj := range objects {
		dec := json.NewDecoder(bytes.NewReader(obj))
		_, err := dec.Token()
		require.NoError(t, err)

		var keys []string
		for dec.More() {
			tok, err := dec.Token()
			require.NoError(t, err)
			keys = append(keys, tok.(string))

			var value json.RawMessage
			require.NoError(t, dec.Decode(&value))
		}
		all = append(all, keys)
	}
	return all
}

var recordKeys = []string{"name", "lat", "lon", "country", "iso2", "population", "capital_type", "id"}

func TestConvert_ScenarioA(t *testing.T) {
	input, output := writeInput(t, header+"Tokyo,35.6895,139.6917,Japan,JP,37977000,primary,1392685764\n")

	n, err := Convert(input, output, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"name":"Tokyo","lat":35.6895,"lon":139.6917,"country":"Japan","iso2":"JP","population":37977000,"capital_type":"primary","id":"1392685764"}]`,
		string(data))
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"name\""))
}

func TestConvert_ScenarioB_AdminDropped(t *testing.T) {
	input, output := writeInput(t, header+"Osaka,34.75,135.4601,Japan,JP,14977000,admin,1392419823\n")

	n, err := Convert(input, output, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, readOutput(t, output))
}

func TestConvert_ScenarioC_MissingColumn(t *testing.T) {
	input, output := writeInput(t,
		"city,lat,lng,country,population,capital,id\nTokyo,35.6895,139.6917,Japan,37977000,primary,1\n")

	_, err := Convert(input, output, true)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"iso2"}, schemaErr.Missing)
	assert.NoFileExists(t, output)
	assert.True(t, IsHandled(err))
}

func TestConvert_ScenarioD_EmptyPopulation(t *testing.T) {
	input, output := writeInput(t, header+"Ngerulmud,7.5006,134.6242,Palau,PW,,primary,1585525081\n")

	_, err := Convert(input, output, true)
	require.NoError(t, err)

	out := readOutput(t, output)
	require.Len(t, out, 1)
	assert.Equal(t, float64(0), out[0]["population"])
}

func TestConvert_SchemaErrorLeavesExistingOutput(t *testing.T) {
	input, output := writeInput(t, "city,lat\n")
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0644))

	_, err := Convert(input, output, false)
	require.Error(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestConvert_FilterAndOrder(t *testing.T) {
	rows := header +
		"Tokyo,35.6895,139.6917,Japan,JP,37977000,primary,1\n" +
		"Osaka,34.75,135.4601,Japan,JP,14977000,admin,2\n" +
		"Jakarta,-6.175,106.8275,Indonesia,ID,33756000,primary,3\n" +
		"Mumbai,19.0761,72.8775,India,IN,24973000,,4\n" +
		"Delhi,28.61,77.23,India,IN,32226000,Primary,5\n" +
		"Manila,14.5958,120.9772,Philippines,PH,24922000,primary,6\n"

	t.Run("capitals only", func(t *testing.T) {
		input, output := writeInput(t, rows)

		n, err := Convert(input, output, true)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		out := readOutput(t, output)
		var names []string
		for _, r := range out {
			names = append(names, r["name"].(string))
			assert.Equal(t, "primary", r["capital_type"])
		}
		assert.Equal(t, []string{"Tokyo", "Jakarta", "Manila"}, names)
	})

	t.Run("all rows", func(t *testing.T) {
		input, output := writeInput(t, rows)

		n, err := Convert(input, output, false)
		require.NoError(t, err)
		assert.Equal(t, 6, n)

		out := readOutput(t, output)
		var ids []string
		for _, r := range out {
			ids = append(ids, r["id"].(string))
		}
		assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids)
	})
}

func TestConvert_KeysAndOrder(t *testing.T) {
	input, output := writeInput(t, header+
		"Tokyo,35.6895,139.6917,Japan,JP,37977000,primary,1\n"+
		"Oslo\n")

	_, err := Convert(input, output, false)
	require.NoError(t, err)

	keys := objectKeys(t, output)
	require.Len(t, keys, 2)
	for _, k := range keys {
		assert.Equal(t, recordKeys, k)
	}
}

func TestConvert_PopulationParsing(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{"2800000", 2800000},
		{"2800000.0", 2800000},
		{"", 0},
		{"1234.9", 1234},
		{" 42 ", 42},
		{"1e3", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			input, output := writeInput(t, header+"X,1,2,C,CC,"+tt.value+",primary,1\n")

			_, err := Convert(input, output, true)
			require.NoError(t, err)

			out := readOutput(t, output)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0]["population"])
		})
	}
}

func TestConvert_FieldParseErrorAbortsEverything(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"bad lat", "Bad,north,2,C,CC,1,primary,2\n", "lat"},
		{"empty lng", "Bad,1,,C,CC,1,primary,2\n", "lng"},
		{"bad population", "Bad,1,2,C,CC,many,primary,2\n", "population"},
		{"nan lat", "Bad,NaN,2,C,CC,1,primary,2\n", "lat"},
		{"infinite population", "Bad,1,2,C,CC,inf,primary,2\n", "population"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, output := writeInput(t, header+"Good,1,2,C,CC,1,primary,1\n"+tt.row)

			n, err := Convert(input, output, true)
			assert.Zero(t, n)

			var parseErr *FieldParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, 3, parseErr.Row)
			assert.Equal(t, tt.column, parseErr.Column)
			assert.True(t, IsHandled(err))
			assert.NoFileExists(t, output)
		})
	}
}

func TestConvert_BadNumberInFilteredRowIsIgnored(t *testing.T) {
	input, output := writeInput(t, header+
		"Tokyo,35.6895,139.6917,Japan,JP,37977000,primary,1\n"+
		"Nowhere,bad,bad,X,XX,bad,admin,2\n")

	n, err := Convert(input, output, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConvert_ShortRowDefaults(t *testing.T) {
	input, output := writeInput(t, header+"Oslo,59.9133\n")

	_, err := Convert(input, output, false)
	require.NoError(t, err)

	out := readOutput(t, output)
	require.Len(t, out, 1)
	assert.Equal(t, "Oslo", out[0]["name"])
	assert.Equal(t, 59.9133, out[0]["lat"])
	assert.Equal(t, float64(0), out[0]["lon"])
	assert.Equal(t, float64(0), out[0]["population"])
	assert.Equal(t, "", out[0]["capital_type"])
	assert.Nil(t, out[0]["id"])
}

func TestConvert_NoIDColumn(t *testing.T) {
	input, output := writeInput(t,
		"city,lat,lng,country,iso2,population,capital\nLima,-12.06,-77.0375,Peru,PE,8852000,primary\n")

	_, err := Convert(input, output, true)
	require.NoError(t, err)

	out := readOutput(t, output)
	require.Len(t, out, 1)
	v, ok := out[0]["id"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestConvert_NonASCIIPreserved(t *testing.T) {
	input, output := writeInput(t, header+"Bogotá,4.7111,-74.0722,Colombia,CO,11508000,primary,1170483426\n")

	_, err := Convert(input, output, true)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Bogotá"`)
}

func TestConvert_FileNotFound(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.json")

	_, err := Convert(filepath.Join(dir, "missing.csv"), output, true)

	var notFound *FileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, IsHandled(err))
	assert.NoFileExists(t, output)
}

func TestConvert_UnwritableOutput(t *testing.T) {
	input, _ := writeInput(t, header)
	output := filepath.Join(t.TempDir(), "no", "such", "dir", "out.json")

	_, err := Convert(input, output, true)

	var unexpected *UnexpectedError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "write output", unexpected.Op)
	assert.False(t, IsHandled(err))
}

func TestConvert_UnreadableInputIsUnexpected(t *testing.T) {
	dir := t.TempDir()

	_, err := Convert(dir, filepath.Join(dir, "out.json"), true)

	var unexpected *UnexpectedError
	require.ErrorAs(t, err, &unexpected)
	assert.False(t, IsHandled(err))
}

func TestRun_Stats(t *testing.T) {
	input, output := writeInput(t, header+
		"Tokyo,35.6895,139.6917,Japan,JP,37977000,primary,1\n"+
		"Osaka,34.75,135.4601,Japan,JP,14977000,admin,2\n")

	result := New(Options{InputPath: input, OutputPath: output, CapitalsOnly: true}, nil).Run()

	require.True(t, result.Success)
	assert.NoError(t, result.Error)
	assert.Equal(t, 2, result.Stats.RowsRead)
	assert.Equal(t, 1, result.Stats.RowsSkipped)
	assert.Equal(t, 1, result.Stats.RecordsMapped)
	assert.Equal(t, 1, result.Stats.RecordsWritten)
	assert.NotEqual(t, uuid.Nil, result.RunID)
	assert.Contains(t, result.String(), "Successfully converted 1 records")
	assert.Contains(t, result.String(), "capitals only: true")
}

func TestRun_DryRun(t *testing.T) {
	input, output := writeInput(t, header+"Tokyo,35.6895,139.6917,Japan,JP,37977000,primary,1\n")

	result := New(Options{InputPath: input, OutputPath: output, CapitalsOnly: true, DryRun: true}, nil).Run()

	require.True(t, result.Success)
	assert.Equal(t, 1, result.Stats.RecordsMapped)
	assert.Zero(t, result.Stats.RecordsWritten)
	assert.NoFileExists(t, output)
}

func TestRun_XLSXInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "worldcities.xlsx")
	output := filepath.Join(dir, "out.json")

	writeWorkbook(t, input,
		[]interface{}{"city", "lat", "lng", "country", "iso2", "population", "capital", "id"},
		[]interface{}{"Tokyo", 35.6895, 139.6917, "Japan", "JP", 37977000, "primary", "1392685764"},
		[]interface{}{"Osaka", 34.75, 135.4601, "Japan", "JP", 14977000, "admin", "1392419823"},
	)

	result := New(Options{InputPath: input, OutputPath: output, CapitalsOnly: true}, nil).Run()
	require.NoError(t, result.Error)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"name":"Tokyo","lat":35.6895,"lon":139.6917,"country":"Japan","iso2":"JP","population":37977000,"capital_type":"primary","id":"1392685764"}]`,
		string(data))
}

func TestRun_XLSXTrailingBlankCells(t *testing.T) {
	header := []interface{}{"city", "capital", "population", "country", "iso2", "lat", "lng", "id"}

	t.Run("blank lng fails to parse", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "worldcities.xlsx")
		output := filepath.Join(dir, "out.json")
		writeWorkbook(t, input, header,
			[]interface{}{"Tokyo", "primary", "1", "Japan", "JP", "35.6", "", ""})

		result := New(Options{InputPath: input, OutputPath: output, CapitalsOnly: true}, nil).Run()

		var parseErr *FieldParseError
		require.ErrorAs(t, result.Error, &parseErr)
		assert.Equal(t, "lng", parseErr.Column)
		assert.Equal(t, 2, parseErr.Row)
		assert.NoFileExists(t, output)
	})

	t.Run("blank id is an empty string", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "worldcities.xlsx")
		output := filepath.Join(dir, "out.json")
		writeWorkbook(t, input, header,
			[]interface{}{"Tokyo", "primary", "1", "Japan", "JP", "35.6", "139.7", ""})

		result := New(Options{InputPath: input, OutputPath: output, CapitalsOnly: true}, nil).Run()
		require.NoError(t, result.Error)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.JSONEq(t,
			`[{"name":"Tokyo","lat":35.6,"lon":139.7,"country":"Japan","iso2":"JP","population":1,"capital_type":"primary","id":""}]`,
			string(data))
	})
}

func TestResult_String(t *testing.T) {
	ok := Result{
		OutputPath:   "capital_cities.json",
		CapitalsOnly: true,
		Success:      true,
		Stats:        ProcessingStats{RecordsWritten: 3},
	}
	assert.Equal(t, "Successfully converted 3 records to 'capital_cities.json' (capitals only: true)", ok.String())

	failed := Result{
		InputPath: "worldcities.csv",
		Error:     &FileNotFoundError{Path: "worldcities.csv"},
	}
	assert.Equal(t, "Conversion of 'worldcities.csv' failed: input file not found at 'worldcities.csv'", failed.String())
}

func TestRun_CustomDelimiter(t *testing.T) {
	input, output := writeInput(t,
		"city;lat;lng;country;iso2;population;capital;id\nParis;48.8567;2.3522;France;FR;11060000;primary;1250015082\n")

	result := New(Options{
		InputPath:    input,
		OutputPath:   output,
		CapitalsOnly: true,
	}, nil).Run()
	var schemaErr *SchemaError
	require.ErrorAs(t, result.Error, &schemaErr)

	result = New(Options{
		InputPath:    input,
		OutputPath:   output,
		CapitalsOnly: true,
		CSVSettings:  config.CSVSettings{Delimiter: ";"},
	}, nil).Run()
	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.RecordsWritten)
}

// writeWorkbook saves rows to a single-sheet workbook at path.
func writeWorkbook(t *testing.T, path string, rows ...[]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}
