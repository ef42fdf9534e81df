// =============================================================================
// Revenue Guard - CSV Parser Module
// =============================================================================
//
// This module reads and writes the CSV files that back the billing ledger and
// the mechanic notes. It handles:
//   - Different delimiters (comma, pipe, tab, etc.)
//   - Different encodings (UTF-8, Windows-1252, ISO-8859-1, Shift_JIS)
//   - A leading UTF-8 byte order mark (spreadsheet exports)
//   - Quoted fields with escape characters
//
// Every write truncates the target file. There is no append or merge mode.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/revenue-guard/internal/config"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents the parsed CSV file.
type CSVData struct {
	// Headers contains the column headers from the CSV file.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	// Using maps allows for easy field access by name.
	Rows []map[string]string

	// SourceFile is the path to the source CSV file.
	SourceFile string

	// RowCount is the total number of data rows (excluding headers).
	RowCount int

	// ColumnCount is the number of columns in the CSV.
	ColumnCount int
}

// HasColumn reports whether the header row contains the given column.
func (d *CSVData) HasColumn(header string) bool {
	for _, h := range d.Headers {
		if h == header {
			return true
		}
	}
	return false
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings from the main configuration.
//
// RETURNS:
//   - A pointer to the CSVData struct containing the parsed data.
//   - An error if the file cannot be opened, decoded or parsed, or if it is
//     completely empty.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}

	data.SourceFile = filePath
	return data, nil
}

// ParseReader parses CSV content from an arbitrary reader.
func ParseReader(r io.Reader, settings config.CSVSettings) (*CSVData, error) {
	enc, err := lookupEncoding(settings.Encoding)
	if err != nil {
		return nil, err
	}

	// Decode to UTF-8 and drop a BOM if the producer wrote one.
	decoded := transform.NewReader(bufio.NewReader(r), unicode.BOMOverride(enc.NewDecoder()))

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])
	dataRows := extractDataRows(allRows[1:], headers)

	return &CSVData{
		Headers:     headers,
		Rows:        dataRows,
		RowCount:    len(dataRows),
		ColumnCount: len(headers),
	}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = delimiterRune(settings.Delimiter)

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// delimiterRune maps a configured delimiter to the rune used by encoding/csv.
func delimiterRune(delimiter string) rune {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		if len(delimiter) > 0 {
			return rune(delimiter[0])
		}
		return ','
	}
}

// lookupEncoding resolves a configured encoding name.
//
// SUPPORTED ENCODINGS:
//   - UTF-8 (default)
//   - Windows-1252 / CP1252
//   - ISO-8859-1 / Latin-1
//   - Shift_JIS / SJIS
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return encoding.Nop, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO-8859-1", "LATIN-1", "LATIN1":
		return charmap.ISO8859_1, nil
	case "SHIFT-JIS", "SJIS", "SHIFTJIS":
		return japanese.ShiftJIS, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// cleanHeaders trims header values and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts raw rows to maps keyed by header.
// Empty rows are skipped and missing trailing cells become "".
func extractDataRows(rows [][]string, headers []string) []map[string]string {
	dataRows := make([]map[string]string, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				rowMap[header] = strings.TrimSpace(row[colIndex])
			} else {
				rowMap[header] = ""
			}
		}

		dataRows = append(dataRows, rowMap)
	}

	return dataRows
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

// =============================================================================
// WRITER
// =============================================================================

// Write writes a header row followed by the given rows, replacing any
// existing content at filePath. Row maps are emitted in header order; keys
// not present in headers are ignored.
//
// The content is fully encoded in memory before the file is touched, so an
// encoding failure never leaves a truncated ledger behind.
func Write(filePath string, headers []string, rows []map[string]string, settings config.CSVSettings) error {
	enc, err := lookupEncoding(settings.Encoding)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	encoded := transform.NewWriter(&buf, enc.NewEncoder())
	csvWriter := csv.NewWriter(encoded)
	csvWriter.Comma = delimiterRune(settings.Delimiter)

	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(headers))
	for i, row := range rows {
		for j, header := range headers {
			record[j] = row[header]
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}

	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
