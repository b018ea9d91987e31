package export

import (
	"bytes"
	"html/template"
	"time"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
)

const printDateLayout = "2 January 2006, 15:04"

var printable = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.ReportName}} - {{.SystemName}}</title>
<style>
  body { font-family: "Segoe UI", Arial, sans-serif; color: #1f2937; margin: 32px; }
  header { border-bottom: 3px solid #1d4ed8; padding-bottom: 12px; margin-bottom: 24px; }
  header h1 { margin: 0; font-size: 22px; color: #1d4ed8; }
  header h2 { margin: 4px 0 0; font-size: 18px; font-weight: 600; }
  header p { margin: 4px 0 0; font-size: 12px; color: #6b7280; }
  .stats { display: grid; grid-template-columns: repeat(auto-fill, minmax(160px, 1fr)); gap: 12px; margin-bottom: 24px; }
  .stat { border: 1px solid #e5e7eb; border-radius: 8px; padding: 12px; background: #f9fafb; }
  .stat .label { font-size: 11px; text-transform: uppercase; color: #6b7280; }
  .stat .value { font-size: 20px; font-weight: 700; margin-top: 4px; }
  h3 { font-size: 15px; margin: 24px 0 8px; }
  table { width: 100%; border-collapse: collapse; font-size: 12px; }
  th { background: #1d4ed8; color: #fff; text-align: left; padding: 6px 8px; }
  td { border-bottom: 1px solid #e5e7eb; padding: 6px 8px; }
  tr:nth-child(even) td { background: #f3f4f6; }
  footer { margin-top: 32px; font-size: 11px; color: #9ca3af; text-align: center; }
  @media print { body { margin: 12mm; } .stat { break-inside: avoid; } }
</style>
</head>
<body>
<header>
  <h1>{{.SystemName}}</h1>
  <h2>{{.ReportName}}</h2>
  <p>Generated on {{.GeneratedAt}}</p>
</header>
{{- if .Stats}}
<section class="stats">
{{- range .Stats}}
  <div class="stat"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{- end}}
</section>
{{- end}}
{{- range .Tables}}
<section>
  {{- if .Title}}<h3>{{.Title}}</h3>{{end}}
  <table>
    <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{- range .Rows}}
      <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
    {{- else}}
      <tr><td colspan="{{len .Columns}}">No records</td></tr>
    {{- end}}
    </tbody>
  </table>
</section>
{{- end}}
<footer>{{.SystemName}} &middot; {{.ReportName}}</footer>
</body>
</html>
`))

type printableTable struct {
	Title   string
	Columns []string
	Rows    [][]string
}

type printableView struct {
	SystemName  string
	ReportName  string
	GeneratedAt string
	Stats       []dto.Stat
	Tables      []printableTable
}

// ToPrintableDocument renders a self-contained HTML document for a print or
// PDF sink. Nothing is written to disk.
func ToPrintableDocument(systemName, reportName string, tables []dto.Table, stats []dto.Stat, generatedAt time.Time) (string, error) {
	view := printableView{
		SystemName:  systemName,
		ReportName:  reportName,
		GeneratedAt: generatedAt.Format(printDateLayout),
		Stats:       stats,
	}
	for _, t := range tables {
		pt := printableTable{Title: t.Title, Columns: t.Columns}
		for _, rec := range ToTabularRecords(t) {
			pt.Rows = append(pt.Rows, rec.Strings())
		}
		view.Tables = append(view.Tables, pt)
	}

	var buf bytes.Buffer
	if err := printable.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
