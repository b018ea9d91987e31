package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxSheetNameLen = 31

// SheetName makes a report name usable as a worksheet name.
func SheetName(reportName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(reportName))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Report"
	}
	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = string([]rune(name)[:maxSheetNameLen])
	}
	return name
}

// WriteXLSX writes a single-sheet workbook named after the report, with the
// header in row 1 and column widths from ColumnWidths.
func WriteXLSX(w io.Writer, reportName string, header []string, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(reportName)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for j, field := range rec {
			row[j] = xlsxValue(field.Value)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for i, width := range ColumnWidths(header, records) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("set width of %s: %w", col, err)
		}
	}

	return f.Write(w)
}

// xlsxValue stores whole numbers as integers so no float rounding touches
// them. Fractional amounts become numbers only when a float64 holds them
// exactly; otherwise the exact decimal string is written.
func xlsxValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		if val.IsInteger() {
			return val.IntPart()
		}
		if f, exact := val.Float64(); exact || decimal.NewFromFloat(f).Equal(val) {
			return f
		}
		return val.String()
	case int, int64, string:
		return val
	default:
		return FormatValue(val)
	}
}
