package export

import (
	"strings"
	"time"
	"unicode"
)

// Filename builds "<report-name>_<YYYY-MM-DD>.<ext>" with the report name
// reduced to lowercase letters, digits and dashes.
func Filename(reportName, ext string, now time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(reportName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "report"
	}
	return slug + "_" + now.Format(time.DateOnly) + "." + strings.TrimPrefix(ext, ".")
}
