package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardResult struct {
	Criteria    FilterCriteria    `json:"criteria"`
	Simulation  *PeriodSimulation `json:"simulation,omitempty"`
	Result      AggregationResult `json:"result"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// PeriodSimulation describes the demo scaling applied for a relative period.
// Figures are scaled, not queried from history.
type PeriodSimulation struct {
	Period     string          `json:"period"`
	Multiplier decimal.Decimal `json:"multiplier"`
	From       string          `json:"from"`
	To         string          `json:"to"`
}
