package rowcodec

import (
	"strings"
)

// Record is one data row indexed by header name.
type Record struct {
	// Line is the 1-based sheet row number; the header is line 1.
	Line  int
	cells map[string]string
}

// NewRecord builds a record from header names and cell values. Missing
// trailing cells read as "".
func NewRecord(line int, header, row []string) Record {
	r := Record{Line: line, cells: make(map[string]string, len(header))}
	for i, h := range header {
		key := headerKey(h)
		if key == "" {
			continue
		}
		if i < len(row) {
			r.cells[key] = row[i]
		} else if _, exists := r.cells[key]; !exists {
			r.cells[key] = ""
		}
	}
	return r
}

// Get returns the cell of column col. Column names are case-insensitive.
func (r Record) Get(col string) string {
	return r.cells[headerKey(col)]
}

// Has reports whether the sheet has column col at all.
func (r Record) Has(col string) bool {
	_, ok := r.cells[headerKey(col)]
	return ok
}

// IndexRows turns raw sheet rows into a cleaned header and records.
// Trailing fully-blank rows are dropped; blank rows in the middle are kept
// so line numbers stay aligned with the sheet.
func IndexRows(rows [][]string) (header []string, records []Record) {
	if len(rows) == 0 {
		return nil, nil
	}
	header = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = CleanCell(h)
	}

	last := len(rows) - 1
	for last >= 1 && IsBlankRow(rows[last]) {
		last--
	}
	for i := 1; i <= last; i++ {
		records = append(records, NewRecord(i+1, header, rows[i]))
	}
	return header, records
}

// IsBlankRow reports whether every cell is empty or whitespace.
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IsBlank reports whether every cell of the record is empty.
func (r Record) IsBlank() bool {
	for _, v := range r.cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell trims whitespace and a leading byte order mark.
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.TrimSpace(s)
}

func headerKey(h string) string {
	return strings.ToLower(CleanCell(h))
}
