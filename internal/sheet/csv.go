package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type csvReader struct {
	name string
	rows [][]string
}

func openCSV(path string) (*csvReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	for _, row := range rows {
		for i, c := range row {
			row[i] = sanitize(c)
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &csvReader{name: name, rows: rows}, nil
}

func (r *csvReader) Sheets() []string { return []string{r.name} }

func (r *csvReader) Rows(sheet string) ([][]string, error) {
	if sheet != r.name {
		return nil, fmt.Errorf("read sheet %q: csv has only %q", sheet, r.name)
	}
	return r.rows, nil
}

func (r *csvReader) Close() error { return nil }

type csvWriter struct {
	file   *os.File
	buf    *bufio.Writer
	w      *csv.Writer
	sheets int
}

func createCSV(path string) (*csvWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &csvWriter{file: f, buf: buf, w: csv.NewWriter(buf)}, nil
}

func (w *csvWriter) MultiSheet() bool { return false }

func (w *csvWriter) AddSheet(name string) error {
	if w.sheets > 0 {
		return fmt.Errorf("add sheet %q: %w", name, ErrSingleSheet)
	}
	w.sheets++
	return nil
}

func (w *csvWriter) AddRow(values []string, _ Style) error {
	if err := w.w.Write(values); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

func (w *csvWriter) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return w.file.Close()
}

// sanitize replaces invalid UTF-8 sequences so that cells can be stored
// and compared safely.
func sanitize(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "\uFFFD")
}
