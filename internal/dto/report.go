package dto

import "time"

// Report kinds.
const (
	ReportCollections      = "collections"
	ReportAgentPerformance = "agent-performance"
	ReportBankDistribution = "bank-distribution"
	ReportExpiry           = "expiry"
	ReportPortfolio        = "portfolio"
)

// Export formats.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatHTML   = "html"
	FormatSheets = "sheets"
)

// Stat is a headline figure shown on a summary card.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is an on-screen table. Row cells hold string, int, int64,
// decimal.Decimal or civil.Date values in column order.
type Table struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type Report struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Name        string            `json:"name"`
	Criteria    FilterCriteria    `json:"criteria"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Stats       []Stat            `json:"stats"`
	Tables      []Table           `json:"tables"`
	Result      AggregationResult `json:"result"`
}

type ExportedFile struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Location    string `json:"location,omitempty"`
	Data        []byte `json:"-"`
}
