package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
	"github.com/GregMSThompson/recovery-dashboard/pkg/helpers"
)

type fakeSheets struct {
	sheet  string
	header []string
	rows   [][]string
	widths []int
	err    error
}

func (f *fakeSheets) WriteTable(_ context.Context, sheetName string, header []string, rows [][]string, widths []int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sheet, f.header, f.rows, f.widths = sheetName, header, rows, widths
	return "https://sheets.example/" + sheetName, nil
}

func newTestReports(sheets *fakeSheets) *reportService {
	svc := NewReportService(fixtureRecords(), testTargets(), "Recovery Dashboard")
	svc.clockNow = fixedClock
	if sheets != nil {
		svc.WithSheets(sheets)
	}
	return svc
}

func TestBuildReport_UnknownKind(t *testing.T) {
	_, err := newTestReports(nil).BuildReport(helpers.TestCtx(), "forecast", dto.FilterCriteria{})
	var unsupported *errs.UnsupportedReportError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedReportError, got %T", err)
	}
}

func TestBuildReport_Kinds(t *testing.T) {
	tests := []struct {
		kind      string
		name      string
		tables    int
		firstRows int
	}{
		{dto.ReportCollections, "Collections Report", 2, 4},
		{dto.ReportAgentPerformance, "Agent Performance", 2, 3},
		{dto.ReportBankDistribution, "Bank Distribution", 2, 3},
		{dto.ReportExpiry, "File Expiry", 1, 3},
		{dto.ReportPortfolio, "Portfolio Summary", 2, 3},
	}
	svc := newTestReports(nil)
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			r, err := svc.BuildReport(helpers.TestCtx(), tt.kind, dto.FilterCriteria{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ID == "" || r.Name != tt.name || r.Kind != tt.kind {
				t.Fatalf("unexpected header: id=%q name=%q kind=%q", r.ID, r.Name, r.Kind)
			}
			if len(r.Tables) != tt.tables {
				t.Fatalf("tables: got %d want %d", len(r.Tables), tt.tables)
			}
			if got := len(r.Tables[0].Rows); got != tt.firstRows {
				t.Fatalf("rows: got %d want %d", got, tt.firstRows)
			}
			for _, row := range r.Tables[0].Rows {
				if len(row) != len(r.Tables[0].Columns) {
					t.Fatalf("row width %d does not match %d columns", len(row), len(r.Tables[0].Columns))
				}
			}
			if len(r.Stats) == 0 {
				t.Fatal("expected stats")
			}
		})
	}
}

func TestBuildReport_CollectionsStats(t *testing.T) {
	r, err := newTestReports(nil).BuildReport(helpers.TestCtx(), dto.ReportCollections, dto.FilterCriteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := map[string]string{}
	for _, s := range r.Stats {
		stats[s.Label] = s.Value
	}
	if stats["Total Collected"] != "600.00" || stats["Approved Entries"] != "3" || stats["Pending Entries"] != "1" {
		t.Fatalf("stats: %v", stats)
	}
	if stats["Target Achievement"] != "10.0%" {
		t.Fatalf("achievement: %q", stats["Target Achievement"])
	}
	if r.Tables[0].Rows[3][1] != dto.UnknownAgent {
		t.Fatalf("missing agent should render as %q, got %v", dto.UnknownAgent, r.Tables[0].Rows[3][1])
	}
}

func TestBuildReport_RespectsCriteria(t *testing.T) {
	r, err := newTestReports(nil).BuildReport(helpers.TestCtx(), dto.ReportPortfolio, dto.FilterCriteria{Bank: "UBL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Tables[0].Rows) != 1 || r.Tables[0].Rows[0][0] != "F2" {
		t.Fatalf("rows: %v", r.Tables[0].Rows)
	}
	if r.Criteria.Bank != "UBL" || r.Criteria.FileType != dto.FilterAll {
		t.Fatalf("criteria: %+v", r.Criteria)
	}
}

func TestExport_CSV(t *testing.T) {
	file, err := newTestReports(nil).Export(helpers.TestCtx(), dto.ReportAgentPerformance, dto.FilterCriteria{}, dto.FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Filename != "agent-performance_2024-06-15.csv" {
		t.Errorf("filename: %s", file.Filename)
	}
	if !strings.HasPrefix(file.ContentType, "text/csv") {
		t.Errorf("content type: %s", file.ContentType)
	}
	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 || rows[0][0] != "Agent" {
		t.Fatalf("csv: %v", rows)
	}
	if rows[1][0] != "Ali" || rows[1][2] != "300" || rows[1][4] != "60" {
		t.Fatalf("first agent row: %v", rows[1])
	}
}

func TestExport_XLSX(t *testing.T) {
	file, err := newTestReports(nil).Export(helpers.TestCtx(), dto.ReportExpiry, dto.FilterCriteria{}, dto.FormatXLSX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("File Expiry")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 4 || rows[0][0] != "File Number" || rows[1][0] != "F1" {
		t.Fatalf("rows: %v", rows)
	}
}

func TestExport_HTML(t *testing.T) {
	file, err := newTestReports(nil).Export(helpers.TestCtx(), dto.ReportPortfolio, dto.FilterCriteria{}, dto.FormatHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := string(file.Data)
	for _, want := range []string{"Recovery Dashboard", "Portfolio Summary", "Status Breakdown", "Amna Khan"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestExport_Sheets(t *testing.T) {
	sheets := &fakeSheets{}
	file, err := newTestReports(sheets).Export(helpers.TestCtx(), dto.ReportBankDistribution, dto.FilterCriteria{}, dto.FormatSheets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheets.sheet != "Bank Distribution" || file.Location != "https://sheets.example/Bank Distribution" {
		t.Fatalf("sheet=%q location=%q", sheets.sheet, file.Location)
	}
	if len(sheets.header) != 4 || len(sheets.rows) != 3 || len(sheets.widths) != 4 {
		t.Fatalf("header=%v rows=%v widths=%v", sheets.header, sheets.rows, sheets.widths)
	}
	if len(file.Data) != 0 {
		t.Fatal("sheets export should carry no data")
	}
}

func TestExport_Errors(t *testing.T) {
	ctx := helpers.TestCtx()

	_, err := newTestReports(nil).Export(ctx, dto.ReportExpiry, dto.FilterCriteria{}, dto.FormatSheets)
	var valErr *errs.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("unconfigured sheets: expected ValidationError, got %T", err)
	}

	_, err = newTestReports(nil).Export(ctx, dto.ReportExpiry, dto.FilterCriteria{}, "pdf")
	if !errors.As(err, &valErr) {
		t.Fatalf("unknown format: expected ValidationError, got %T", err)
	}

	sinkErr := errs.NewExternalServiceError("sheets", "quota", true, nil)
	_, err = newTestReports(&fakeSheets{err: sinkErr}).Export(ctx, dto.ReportExpiry, dto.FilterCriteria{}, dto.FormatSheets)
	var extErr *errs.ExternalServiceError
	if !errors.As(err, &extErr) || !extErr.Transient {
		t.Fatalf("expected transient ExternalServiceError, got %v", err)
	}
}
