package dto

import "github.com/shopspring/decimal"

// KPI metric names.
const (
	MetricTotalAccounts    = "totalAccounts"
	MetricTotalOutstanding = "totalOutstanding"
	MetricTotalOverdue     = "totalOverdue"
	MetricTotalCollected   = "totalCollected"
	MetricExpiredFiles     = "expiredFiles"
	MetricActiveFiles      = "activeFiles"
)

// UnknownAgent groups collections without an agent name.
const UnknownAgent = "Unknown Agent"

type KPIs struct {
	TotalAccounts    int             `json:"totalAccounts"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	TotalOverdue     decimal.Decimal `json:"totalOverdue"`
	TotalCollected   decimal.Decimal `json:"totalCollected"`
	ExpiredFiles     int             `json:"expiredFiles"`
	ActiveFiles      int             `json:"activeFiles"`
}

// Metrics returns the KPIs keyed by metric name.
func (k KPIs) Metrics() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		MetricTotalAccounts:    decimal.NewFromInt(int64(k.TotalAccounts)),
		MetricTotalOutstanding: k.TotalOutstanding,
		MetricTotalOverdue:     k.TotalOverdue,
		MetricTotalCollected:   k.TotalCollected,
		MetricExpiredFiles:     decimal.NewFromInt(int64(k.ExpiredFiles)),
		MetricActiveFiles:      decimal.NewFromInt(int64(k.ActiveFiles)),
	}
}

type TrendPoint struct {
	Bucket string          `json:"bucket"` // e.g. "Jan 2024"
	Value  decimal.Decimal `json:"value"`
	Target decimal.Decimal `json:"target"`
}

type AgentPoint struct {
	Agent       string          `json:"agent"`
	Amount      decimal.Decimal `json:"amount"`
	Count       int             `json:"count"`
	Target      decimal.Decimal `json:"target"`
	Achievement decimal.Decimal `json:"achievement"`
}

type DistributionPoint struct {
	Bank        string `json:"bank"`
	ProductType string `json:"productType"`
	Label       string `json:"label"`
	Count       int    `json:"count"`
	Percent     int64  `json:"percent"`
	Color       string `json:"color"`
}

type StatusPoint struct {
	Status      FileStatus      `json:"status"`
	Count       int             `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type BankPoint struct {
	Bank        string          `json:"bank"`
	Count       int             `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// AggregationResult is the chart and KPI payload shared by the dashboard,
// expiry and report views.
type AggregationResult struct {
	KPIs         KPIs                `json:"kpis"`
	Trend        []TrendPoint        `json:"trend"`
	Agents       []AgentPoint        `json:"agents"`
	Distribution []DistributionPoint `json:"distribution"`
	Statuses     []StatusPoint       `json:"statuses"`
	Banks        []BankPoint         `json:"banks"`
	Achievement  decimal.Decimal     `json:"achievement"`
}
