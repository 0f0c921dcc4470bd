// Package sheet reads and writes tabular files: .xlsx workbooks through
// excelize and single-sheet .csv files through encoding/csv. Every cell
// is handled as a string.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Style is a row highlight used by writers that support formatting.
type Style int

const (
	StyleNone Style = iota
	StyleHeader
	StyleGroup
	StyleQuestion
	StyleSubQuestion
	StyleAnswer
)

// ErrSingleSheet is returned when a second sheet is added to a format
// that holds one sheet only.
var ErrSingleSheet = errors.New("format holds a single sheet")

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Reader gives access to the sheets of an opened file.
type Reader interface {
	// Sheets lists sheet names in file order.
	Sheets() []string
	// Rows returns every row of a sheet as flat cell values.
	Rows(sheet string) ([][]string, error)
	Close() error
}

// Writer appends rows to the sheets of a new file. Rows go to the sheet
// most recently added.
type Writer interface {
	AddSheet(name string) error
	AddRow(values []string, style Style) error
	// MultiSheet reports whether more than one sheet can be added.
	MultiSheet() bool
	// Close flushes the file to disk.
	Close() error
}

// Format is a supported file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf returns the format of path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// OpenForRead opens path for reading.
func OpenForRead(path string) (Reader, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		r, err := openCSV(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := openXLSX(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// OpenForWrite creates path for writing. The file is complete only
// after Close.
func OpenForWrite(path string) (Writer, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		w, err := createCSV(path)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return createXLSX(path), nil
}

// FirstSheet returns the rows of the first sheet of path.
func FirstSheet(path string) ([][]string, error) {
	r, err := OpenForRead(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sheets := r.Sheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("read %s: no sheets", filepath.Base(path))
	}
	return r.Rows(sheets[0])
}
