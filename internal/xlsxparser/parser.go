// =============================================================================
// World Cities Converter - XLSX Parser Module
// =============================================================================
//
// This module reads world-cities workbooks. The dataset is published both as
// CSV and as XLSX; both carry the same header row, and the XLSX reader maps
// cells onto it with csvparser.ToRow.
//
// SHEET SELECTION:
//   The first sheet of the workbook is read unless a sheet name is given.
//
// BLANK CELLS:
//   Every header column is present in a worksheet row. Blank cells, including
//   the trailing ones excelize omits, read as "" rather than absent.
//
// CELL VALUES:
//   Cells are read raw (excelize.Options{RawCellValue: true}) so number
//   formats such as "37,977,000" or "3.80E+07" do not reach the float parser.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/worldcities-converter/internal/csvparser"
	"github.com/ginjaninja78/worldcities-converter/internal/types"
)

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads one worksheet row by row. It has the same method set
// as csvparser.StreamingParser.
type StreamingParser struct {
	file       *excelize.File
	rows       *excelize.Rows
	sheet      string
	headers    []string
	currentRow types.Row
	rowNumber  int
	err        error
}

// NewStreamingParser opens the workbook at filePath and reads the header row
// of sheet. An empty sheet name selects the first sheet.
func NewStreamingParser(filePath, sheet string) (*StreamingParser, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	parser := &StreamingParser{
		file:    f,
		rows:    rows,
		sheet:   sheet,
		headers: []string{},
	}

	if err := parser.readHeaders(); err != nil {
		parser.Close()
		return nil, err
	}

	return parser, nil
}

// readHeaders reads the first non-empty row as the header.
func (p *StreamingParser) readHeaders() error {
	for p.rows.Next() {
		p.rowNumber++

		cells, err := p.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("error reading header row: %w", err)
		}
		if isRowEmpty(cells) {
			continue
		}

		p.headers = cells
		return nil
	}

	if err := p.rows.Error(); err != nil {
		return fmt.Errorf("error reading header row: %w", err)
	}
	return nil
}

// Next advances to the next non-empty row.
func (p *StreamingParser) Next() bool {
	if p.err != nil || len(p.headers) == 0 {
		return false
	}

	for p.rows.Next() {
		p.rowNumber++

		cells, err := p.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber, err)
			return false
		}

		// Blank worksheet rows are skipped, like blank lines in CSV.
		if isRowEmpty(cells) {
			continue
		}

		p.currentRow = csvparser.ToRow(p.headers, padCells(cells, len(p.headers)))
		return true
	}

	if err := p.rows.Error(); err != nil {
		p.err = fmt.Errorf("error reading sheet %q: %w", p.sheet, err)
	}
	return false
}

// padCells extends cells with blanks up to width. excelize drops trailing
// empty cells, but a worksheet row has no short form: a blank cell under a
// header is present and empty.
func padCells(cells []string, width int) []string {
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Row {
	return p.currentRow
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// RowNumber returns the record number of the current row: the count of
// rows yielded by the sheet iterator so far, header included.
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Sheet returns the name of the sheet being read.
func (p *StreamingParser) Sheet() string {
	return p.sheet
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close releases the row iterator and the workbook.
func (p *StreamingParser) Close() error {
	if p.file == nil {
		return nil
	}

	var rowsErr error
	if p.rows != nil {
		rowsErr = p.rows.Close()
	}
	fileErr := p.file.Close()
	p.file = nil

	if rowsErr != nil {
		return rowsErr
	}
	return fileErr
}
