// Package export flattens completed annotations into tables: one row per
// assignment with the answer fields spread next to the identifying columns.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/clipqa/annotation-service/internal/domain"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Table is a header plus string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Flatten builds the table. Answer columns follow fieldOrder first, then any
// other keys found in the payloads, sorted. Missing and nil answers are blank.
func Flatten(rows []domain.ExportRow, fieldOrder []string) Table {
	seen := map[string]bool{}
	var fields []string
	for _, f := range fieldOrder {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	var extra []string
	for _, r := range rows {
		for k := range r.Annotation {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	fields = append(fields, extra...)

	t := Table{Header: append([]string{"user_id", "narration_id"}, fields...)}
	for _, r := range rows {
		rec := make([]string, 0, len(t.Header))
		rec = append(rec, r.UserID, r.NarrationID)
		for _, f := range fields {
			rec = append(rec, cell(r.Annotation[f]))
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes the table as CSV.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

const sheetName = "Annotations"

// WriteXLSX writes the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("xlsx stream: %w", err)
	}

	writeRow := func(row int, values []string) error {
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		ref, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return sw.SetRow(ref, cells)
	}

	if err := writeRow(1, t.Header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, r := range t.Rows {
		if err := writeRow(i+2, r); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// Write dispatches on format.
func Write(w io.Writer, format Format, t Table) error {
	if format == FormatXLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}
