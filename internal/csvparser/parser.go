// =============================================================================
// World Cities Converter - CSV Parser Module
// =============================================================================
//
// This module reads delimited world-cities exports one row at a time. The
// first record is the header; every following record is returned as a
// types.Row keyed by header name.
//
// ROW SHAPE:
//   - Cells are passed through untouched (no trimming), the way a spreadsheet
//     export wrote them.
//   - A row shorter than the header leaves the trailing columns absent from
//     the Row map instead of failing the read.
//   - Cells beyond the last header column are ignored.
//   - When two header cells share a name, the rightmost one wins.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/worldcities-converter/internal/config"
	"github.com/ginjaninja78/worldcities-converter/internal/types"
)

// byteOrderMark is the UTF-8 encoding of U+FEFF.
const byteOrderMark = "\uFEFF"

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads a CSV file row by row.
//
// USAGE:
//   parser, err := NewStreamingParser(filePath, settings)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       row := parser.Row()
//       // Process the row...
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type StreamingParser struct {
	closer     io.Closer
	reader     *csv.Reader
	headers    []string
	currentRow types.Row
	rowNumber  int
	err        error
}

// NewStreamingParser opens filePath and reads its header row.
//
// The returned error wraps the os error, so errors.Is(err, fs.ErrNotExist)
// identifies a missing file.
func NewStreamingParser(filePath string, settings config.CSVSettings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := NewReaderParser(file, settings)
	if err != nil {
		file.Close()
		return nil, err
	}
	parser.closer = file

	return parser, nil
}

// NewReaderParser reads CSV from r. The caller keeps ownership of r unless
// Close is called on a parser returned by NewStreamingParser.
func NewReaderParser(r io.Reader, settings config.CSVSettings) (*StreamingParser, error) {
	comma, err := settings.Comma()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, comma)

	parser := &StreamingParser{reader: reader}
	if err := parser.readHeaders(settings.ShouldStripBOM()); err != nil {
		return nil, err
	}

	return parser, nil
}

// configureReader applies the reader options shared by every input.
func configureReader(reader *csv.Reader, comma rune) {
	reader.Comma = comma

	// Short and long rows are both legal; missing cells become absent keys.
	reader.FieldsPerRecord = -1

	// Spreadsheet exports are not always strict about quoting.
	reader.LazyQuotes = true
}

// readHeaders reads the header record. An empty file yields no headers and
// no rows, which the schema gate then rejects.
func (p *StreamingParser) readHeaders(stripBOM bool) error {
	row, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		p.headers = []string{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading header row: %w", err)
	}
	p.rowNumber++

	headers := make([]string, len(row))
	copy(headers, row)
	if stripBOM && len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], byteOrderMark)
	}

	p.headers = headers
	return nil
}

// Next advances to the next row. Returns false when there are no more rows
// or a read error occurred.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	row, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
		return false
	}

	p.rowNumber++
	p.currentRow = ToRow(p.headers, row)

	return true
}

// ToRow maps cells onto headers. Exported for the XLSX reader, which shares
// the same row semantics.
func ToRow(headers, cells []string) types.Row {
	row := make(types.Row, len(headers))
	for i, header := range headers {
		if i < len(cells) {
			row[header] = cells[i]
		}
	}
	return row
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Row {
	return p.currentRow
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// RowNumber returns the record number of the current row, counting the
// header as row 1.
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file, if the parser opened one.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}
