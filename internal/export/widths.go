package export

import "unicode/utf8"

// MaxColumnWidth caps spreadsheet column widths, in characters.
const MaxColumnWidth = 50

// ColumnWidths returns, per column, the length of the longest header or value
// capped at MaxColumnWidth.
func ColumnWidths(header []string, records []Record) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, rec := range records {
		for i, cell := range rec.Strings() {
			if i >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i, w := range widths {
		if w > MaxColumnWidth {
			widths[i] = MaxColumnWidth
		}
	}
	return widths
}
