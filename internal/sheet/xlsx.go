package sheet

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type xlsxReader struct {
	f *excelize.File
}

func openXLSX(path string) (*xlsxReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &xlsxReader{f: f}, nil
}

func (r *xlsxReader) Sheets() []string {
	return r.f.GetSheetList()
}

func (r *xlsxReader) Rows(sheet string) ([][]string, error) {
	rows, err := r.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	for _, row := range rows {
		for i, c := range row {
			row[i] = sanitize(c)
		}
	}
	return rows, nil
}

func (r *xlsxReader) Close() error {
	return r.f.Close()
}

var rowFills = map[Style]string{
	StyleGroup:       "#D9E1F2",
	StyleQuestion:    "#E2EFDA",
	StyleSubQuestion: "#FFF2CC",
	StyleAnswer:      "#FCE4D6",
}

type xlsxWriter struct {
	path   string
	f      *excelize.File
	sheet  string
	next   int
	styles map[Style]int
}

func createXLSX(path string) *xlsxWriter {
	return &xlsxWriter{path: path, f: excelize.NewFile(), styles: make(map[Style]int)}
}

func (w *xlsxWriter) MultiSheet() bool { return true }

func (w *xlsxWriter) AddSheet(name string) error {
	if w.sheet == "" {
		// NewFile starts with a default sheet; reuse it for the first one.
		first := w.f.GetSheetName(0)
		if err := w.f.SetSheetName(first, name); err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %q: %w", name, err)
	}
	w.sheet = name
	w.next = 1
	return nil
}

func (w *xlsxWriter) AddRow(values []string, style Style) error {
	if w.sheet == "" {
		return errors.New("add row: no sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", w.next, err)
	}
	if style != StyleNone {
		id, err := w.style(style)
		if err != nil {
			return err
		}
		if err := w.f.SetRowStyle(w.sheet, w.next, w.next, id); err != nil {
			return fmt.Errorf("style row %d: %w", w.next, err)
		}
	}
	if style == StyleHeader && w.next == 1 {
		err := w.f.SetPanes(w.sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}
	w.next++
	return nil
}

func (w *xlsxWriter) style(s Style) (int, error) {
	if id, ok := w.styles[s]; ok {
		return id, nil
	}
	st := &excelize.Style{}
	if s == StyleHeader {
		st.Font = &excelize.Font{Bold: true}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#BFBFBF"}}
	} else if color, ok := rowFills[s]; ok {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}
	id, err := w.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[s] = id
	return id, nil
}

func (w *xlsxWriter) Close() error {
	defer w.f.Close()
	if w.sheet == "" {
		return errors.New("save workbook: no sheets")
	}
	if err := w.f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
