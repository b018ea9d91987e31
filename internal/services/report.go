package services

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
	"github.com/GregMSThompson/recovery-dashboard/internal/export"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeHTML = "text/html; charset=utf-8"
)

var reportNames = map[string]string{
	dto.ReportCollections:      "Collections Report",
	dto.ReportAgentPerformance: "Agent Performance",
	dto.ReportBankDistribution: "Bank Distribution",
	dto.ReportExpiry:           "File Expiry",
	dto.ReportPortfolio:        "Portfolio Summary",
}

// sheetsWriter publishes one table to a cloud spreadsheet.
type sheetsWriter interface {
	WriteTable(ctx context.Context, sheetName string, header []string, rows [][]string, widths []int) (string, error)
}

type reportService struct {
	records    recordReader
	targets    Targets
	systemName string
	sheets     sheetsWriter
	clockNow   func() time.Time
}

func NewReportService(records recordReader, targets Targets, systemName string) *reportService {
	return &reportService{
		records:    records,
		targets:    targets,
		systemName: systemName,
		clockNow:   time.Now,
	}
}

// WithSheets enables the sheets export format. Without it the format is
// rejected.
func (s *reportService) WithSheets(w sheetsWriter) *reportService {
	s.sheets = w
	return s
}

// ReportName returns the display name of a report kind.
func ReportName(kind string) (string, bool) {
	name, ok := reportNames[kind]
	return name, ok
}

func (s *reportService) BuildReport(ctx context.Context, kind string, c dto.FilterCriteria) (*dto.Report, error) {
	name, ok := ReportName(kind)
	if !ok {
		return nil, errs.NewUnsupportedReportError(kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.clockNow()
	c = defaultCriteria().Merge(c)

	files := ApplyFilters(s.records.LoadFiles(ctx), c)
	collections := ApplyFilters(s.records.LoadCollections(ctx), c)
	files, collections, _ = SimulatePeriod(files, collections, c, now)
	result := Aggregate(files, collections, now, s.targets)

	r := &dto.Report{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        name,
		Criteria:    c,
		GeneratedAt: now,
		Result:      result,
	}

	switch kind {
	case dto.ReportCollections:
		r.Stats, r.Tables = collectionsReport(collections, result)
	case dto.ReportAgentPerformance:
		r.Stats, r.Tables = agentReport(result)
	case dto.ReportBankDistribution:
		r.Stats, r.Tables = distributionReport(files, result)
	case dto.ReportExpiry:
		r.Stats, r.Tables = expiryReport(DeriveAll(files, now))
	case dto.ReportPortfolio:
		r.Stats, r.Tables = portfolioReport(files, result)
	}

	logger.FromContext(ctx).Info("report built", "report_id", r.ID, "kind", kind, "tables", len(r.Tables))
	return r, nil
}

// Export renders a report. Spreadsheet formats carry the first table; the
// printable document carries every table. Sheets exports are published and
// returned with their location and no data.
func (s *reportService) Export(ctx context.Context, kind string, c dto.FilterCriteria, format string) (*dto.ExportedFile, error) {
	switch format {
	case dto.FormatCSV, dto.FormatXLSX, dto.FormatHTML:
	case dto.FormatSheets:
		if s.sheets == nil {
			return nil, errs.NewValidationError("sheets export is not configured")
		}
	default:
		return nil, errs.NewValidationError("unsupported export format: " + format)
	}

	r, err := s.BuildReport(ctx, kind, c)
	if err != nil {
		return nil, err
	}

	var main dto.Table
	if len(r.Tables) > 0 {
		main = r.Tables[0]
	}
	records := export.ToTabularRecords(main)
	file := &dto.ExportedFile{ID: r.ID}

	var buf bytes.Buffer
	switch format {
	case dto.FormatCSV:
		if err := export.WriteCSV(&buf, main.Columns, records); err != nil {
			return nil, errs.NewExportError(format, "failed to write csv", err)
		}
		file.Filename = export.Filename(r.Name, "csv", r.GeneratedAt)
		file.ContentType = contentTypeCSV
		file.Data = buf.Bytes()

	case dto.FormatXLSX:
		if err := export.WriteXLSX(&buf, r.Name, main.Columns, records); err != nil {
			return nil, errs.NewExportError(format, "failed to write xlsx", err)
		}
		file.Filename = export.Filename(r.Name, "xlsx", r.GeneratedAt)
		file.ContentType = contentTypeXLSX
		file.Data = buf.Bytes()

	case dto.FormatHTML:
		doc, err := export.ToPrintableDocument(s.systemName, r.Name, r.Tables, r.Stats, r.GeneratedAt)
		if err != nil {
			return nil, errs.NewExportError(format, "failed to render document", err)
		}
		file.Filename = export.Filename(r.Name, "html", r.GeneratedAt)
		file.ContentType = contentTypeHTML
		file.Data = []byte(doc)

	case dto.FormatSheets:
		rows := make([][]string, len(records))
		for i, rec := range records {
			rows[i] = rec.Strings()
		}
		sheet := export.SheetName(r.Name)
		location, err := s.sheets.WriteTable(ctx, sheet, main.Columns, rows, export.ColumnWidths(main.Columns, records))
		if err != nil {
			return nil, err
		}
		file.Filename = sheet
		file.Location = location
	}

	logger.FromContext(ctx).Info("report exported",
		"report_id", r.ID,
		"kind", kind,
		"format", format,
		"filename", file.Filename,
		"bytes", len(file.Data))
	return file, nil
}

// --- Report layouts ---

func collectionsReport(collections []models.CollectionRecord, res dto.AggregationResult) ([]dto.Stat, []dto.Table) {
	var approved, pending, rejected int
	rows := make([][]any, 0, len(collections))
	for _, c := range collections {
		switch c.Status {
		case models.ApprovalApproved:
			approved++
		case models.ApprovalRejected:
			rejected++
		default:
			pending++
		}
		rows = append(rows, []any{
			dateCell(c.CollectedAt),
			agentName(c.AgentName),
			c.FileNumber,
			c.ClientName,
			c.BankName,
			c.ProductType,
			c.Amount,
			string(c.Status),
		})
	}

	stats := []dto.Stat{
		{Label: "Total Collected", Value: money(res.KPIs.TotalCollected)},
		{Label: "Approved Entries", Value: strconv.Itoa(approved)},
		{Label: "Pending Entries", Value: strconv.Itoa(pending)},
		{Label: "Rejected Entries", Value: strconv.Itoa(rejected)},
		{Label: "Target Achievement", Value: percent(res.Achievement)},
	}
	tables := []dto.Table{
		{
			Title:   "Collections",
			Columns: []string{"Date", "Agent", "File Number", "Client", "Bank", "Product", "Amount", "Status"},
			Rows:    rows,
		},
		trendTable(res.Trend),
	}
	return stats, tables
}

func agentReport(res dto.AggregationResult) ([]dto.Stat, []dto.Table) {
	rows := make([][]any, 0, len(res.Agents))
	for _, a := range res.Agents {
		rows = append(rows, []any{a.Agent, a.Count, a.Amount, a.Target, a.Achievement})
	}
	stats := []dto.Stat{
		{Label: "Agents", Value: strconv.Itoa(len(res.Agents))},
		{Label: "Total Collected", Value: money(res.KPIs.TotalCollected)},
		{Label: "Target Achievement", Value: percent(res.Achievement)},
	}
	tables := []dto.Table{
		{
			Title:   "Agent Performance",
			Columns: []string{"Agent", "Collections", "Amount", "Target", "Achievement %"},
			Rows:    rows,
		},
		trendTable(res.Trend),
	}
	return stats, tables
}

func distributionReport(files []models.BankFileRecord, res dto.AggregationResult) ([]dto.Stat, []dto.Table) {
	dist := make([][]any, 0, len(res.Distribution))
	for _, d := range res.Distribution {
		dist = append(dist, []any{d.Bank, d.ProductType, d.Count, d.Percent})
	}
	banks := make([][]any, 0, len(res.Banks))
	for _, b := range res.Banks {
		banks = append(banks, []any{b.Bank, b.Count, b.Outstanding})
	}
	stats := []dto.Stat{
		{Label: "Total Files", Value: strconv.Itoa(len(files))},
		{Label: "Banks", Value: strconv.Itoa(len(res.Banks))},
		{Label: "Total Outstanding", Value: money(res.KPIs.TotalOutstanding)},
	}
	tables := []dto.Table{
		{
			Title:   "Distribution by Bank and Product",
			Columns: []string{"Bank", "Product", "Files", "Share %"},
			Rows:    dist,
		},
		{
			Title:   "Outstanding by Bank",
			Columns: []string{"Bank", "Files", "Outstanding"},
			Rows:    banks,
		},
	}
	return stats, tables
}

func expiryReport(views []dto.ExpiryView) ([]dto.Stat, []dto.Table) {
	list := buildExpiryList(views, "")
	rows := make([][]any, 0, len(list.Items))
	for _, v := range list.Items {
		rows = append(rows, []any{
			v.File.FileNumber,
			v.File.ClientName,
			v.File.BankName,
			v.File.ProductType,
			v.File.ExpiryDate,
			v.DaysLeft,
			v.Status,
			v.File.AgentName,
		})
	}
	stats := []dto.Stat{
		{Label: "Active", Value: strconv.Itoa(list.Counts[dto.StatusActive])},
		{Label: "Expiring Soon", Value: strconv.Itoa(list.Counts[dto.StatusExpiringSoon])},
		{Label: "Expired", Value: strconv.Itoa(list.Counts[dto.StatusExpired])},
	}
	tables := []dto.Table{{
		Title:   "File Expiry",
		Columns: []string{"File Number", "Client", "Bank", "Product", "Expiry Date", "Days Left", "Status", "Agent"},
		Rows:    rows,
	}}
	return stats, tables
}

func portfolioReport(files []models.BankFileRecord, res dto.AggregationResult) ([]dto.Stat, []dto.Table) {
	rows := make([][]any, 0, len(files))
	for _, f := range files {
		rows = append(rows, []any{
			f.FileNumber,
			f.ClientName,
			f.ClientID,
			f.AccountNumber,
			f.BankName,
			f.ProductType,
			f.Outstanding,
			f.AllegationDate,
			f.ExpiryDate,
			f.AgentName,
			f.AssignmentStatus,
			f.LastAction,
		})
	}
	statuses := make([][]any, 0, len(res.Statuses))
	for _, st := range res.Statuses {
		statuses = append(statuses, []any{st.Status, st.Count, st.Outstanding})
	}

	k := res.KPIs
	stats := []dto.Stat{
		{Label: "Total Accounts", Value: strconv.Itoa(k.TotalAccounts)},
		{Label: "Total Outstanding", Value: money(k.TotalOutstanding)},
		{Label: "Total Overdue", Value: money(k.TotalOverdue)},
		{Label: "Total Collected", Value: money(k.TotalCollected)},
		{Label: "Active Files", Value: strconv.Itoa(k.ActiveFiles)},
		{Label: "Expired Files", Value: strconv.Itoa(k.ExpiredFiles)},
	}
	tables := []dto.Table{
		{
			Title: "Files",
			Columns: []string{
				"File Number", "Client", "Client ID", "CASA", "Bank", "Product",
				"Outstanding", "Allegation Date", "Expiry Date", "Agent", "Assignment", "Last Action",
			},
			Rows: rows,
		},
		{
			Title:   "Status Breakdown",
			Columns: []string{"Status", "Files", "Outstanding"},
			Rows:    statuses,
		},
	}
	return stats, tables
}

func trendTable(trend []dto.TrendPoint) dto.Table {
	rows := make([][]any, 0, len(trend))
	for _, p := range trend {
		rows = append(rows, []any{p.Bucket, p.Value, p.Target})
	}
	return dto.Table{
		Title:   "Monthly Trend",
		Columns: []string{"Month", "Collected", "Target"},
		Rows:    rows,
	}
}

func dateCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return civil.DateOf(*t)
}

func agentName(name string) string {
	if name == "" {
		return dto.UnknownAgent
	}
	return name
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func percent(d decimal.Decimal) string { return d.StringFixed(1) + "%" }
