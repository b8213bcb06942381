package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// ErrUnsupportedFormat is returned for file suffixes other than csv/xls/xlsx
var ErrUnsupportedFormat = errors.New("unsupported file type")

// utf8BOM is stripped from the first header cell of csv exports
const utf8BOM = "\ufeff"

// Supported reports whether the suffix (".csv", ".xlsx", ...) can be read
func Supported(suffix string) bool {
	switch strings.ToLower(suffix) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	return false
}

// ReadFile reads a tabular file, choosing the format by suffix
// ⭐ SSOT: 업로드 파일 파싱은 여기서만
func ReadFile(path string) (contracts.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return contracts.RawTable{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return Read(f, filepath.Ext(path))
}

// Read parses r according to the file suffix
func Read(r io.Reader, suffix string) (contracts.RawTable, error) {
	switch strings.ToLower(suffix) {
	case ".csv":
		return ReadCSV(r)
	case ".xls", ".xlsx":
		return ReadWorkbook(r)
	}
	return contracts.RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, suffix)
}

// ReadCSV reads comma-separated text. The first record is the header.
// Rows may be ragged; short rows read as missing trailing cells.
func ReadCSV(r io.Reader) (contracts.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return contracts.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(records), nil
}

// ReadWorkbook reads the first sheet of a spreadsheet workbook.
// Cells are read as stored, not as displayed: number formats are ignored
// and dates come back as serial day numbers.
func ReadWorkbook(r io.Reader) (contracts.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return contracts.RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return contracts.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows), nil
}

func fromRows(rows [][]string) contracts.RawTable {
	if len(rows) == 0 {
		return contracts.RawTable{}
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	return contracts.RawTable{Header: header, Rows: rows[1:]}
}
