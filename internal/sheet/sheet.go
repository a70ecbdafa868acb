// Package sheet reads uploaded spreadsheets into records.
//
// Functions:
//   - AllowedFile: reports whether a file name has an accepted extension.
//     Input: file name. Output: bool.
//   - Sniff: detects the container format from the first bytes of a file.
//     Input: header bytes. Output: Format.
//   - ReadRecords: reads the first worksheet of an .xlsx or .xls file.
//     Input: file path. Output: records keyed by header, error.
//
// The first non-empty row of the sheet is the header row; every later
// non-empty row becomes one Record.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds how many rows are read from a legacy workbook.
const maxXLSRows = 100000

var (
	ErrEmptySheet    = errors.New("empty sheet")
	ErrNoWorksheet   = errors.New("no worksheet found")
	ErrUnknownFormat = errors.New("not a spreadsheet")
)

// Format is the container of a workbook file.
type Format string

const (
	FormatUnknown Format = ""
	FormatXLSX    Format = "xlsx" // Office Open XML, a zip archive
	FormatXLS     Format = "xls"  // BIFF in an OLE2 compound file
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// HeaderSize is how many leading bytes Sniff needs.
const HeaderSize = 8

// Sniff detects the workbook container from its leading bytes.
func Sniff(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(header, oleMagic):
		return FormatXLS
	default:
		return FormatUnknown
	}
}

// Extensions accepted by the server.
var Extensions = []string{"xlsx", "xls"}

// AllowedFile reports whether name has a dot and an accepted extension.
func AllowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return slices.Contains(Extensions, strings.ToLower(name[i+1:]))
}

// UserColumn is the header of the column naming the user a row belongs to.
const UserColumn = "usuario"

// Record is one data row of the sheet.
type Record struct {
	// Row is the 1-based row number in the sheet.
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields"`
}

// Get returns the trimmed value of a column, "" when absent.
func (r Record) Get(key string) string {
	return r.Fields[key]
}

// Label identifies the record in logs: the "usuario" column when present.
func (r Record) Label() string {
	if u := r.Get(UserColumn); u != "" {
		return u
	}
	return fmt.Sprintf("row %d", r.Row)
}

// ParseError wraps a failure to read a workbook.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("read %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadRecords reads the first worksheet of the workbook at path. The format
// is taken from the file content, falling back to the extension.
func ReadRecords(path string) ([]Record, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	records, err := toRecords(rows)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return records, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	header := make([]byte, HeaderSize)
	n, _ := f.Read(header)
	f.Close()

	format := Sniff(header[:n])
	if format == FormatUnknown {
		switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
		case "xlsx":
			format = FormatXLSX
		case "xls":
			format = FormatXLS
		default:
			return nil, ErrUnknownFormat
		}
	}

	if format == FormatXLS {
		return readXLS(path)
	}
	return readXLSX(path)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}
	return f.GetRows(sheetName)
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrNoWorksheet
	}
	var rows [][]string
	for i := 0; i <= int(ws.MaxRow) && i < maxXLSRows; i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func toRecords(rows [][]string) ([]Record, error) {
	headerIdx := -1
	for i, row := range rows {
		if !blank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = normalizeHeader(h)
	}

	var records []Record
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		fields := make(map[string]string, len(headers))
		for col, h := range headers {
			if h == "" {
				continue
			}
			fields[h] = cellValue(row, col)
		}
		records = append(records, Record{Row: i + 1, Fields: fields})
	}
	return records, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
