package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
)

const dashDateLayout = "2006-01-02"

// Relative periods are a demo simulation: the records are not re-queried for
// the period, their money fields are scaled by a fixed multiplier.
var periodMultipliers = map[string]decimal.Decimal{
	dto.PeriodThisMonth:   decimal.NewFromInt(1),
	dto.PeriodLastMonth:   decimal.RequireFromString("0.85"),
	dto.PeriodThisQuarter: decimal.RequireFromString("1.2"),
	dto.PeriodThisYear:    decimal.RequireFromString("1.5"),
}

// PeriodMultiplier returns the simulation multiplier for period, 1 when the
// period is empty or unknown.
func PeriodMultiplier(period string) decimal.Decimal {
	if m, ok := periodMultipliers[period]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// SimulatePeriod returns scaled copies of the records for the relative period
// in c. It never drops records. When a custom date range is in use the inputs
// are returned unchanged with a nil simulation.
func SimulatePeriod(files []models.BankFileRecord, collections []models.CollectionRecord, c dto.FilterCriteria, now time.Time) ([]models.BankFileRecord, []models.CollectionRecord, *dto.PeriodSimulation) {
	if c.HasDateRange() {
		return files, collections, nil
	}

	period := c.Period
	if _, ok := periodMultipliers[period]; !ok {
		period = dto.PeriodThisMonth
	}
	m := PeriodMultiplier(period)
	from, to := resolvePeriod(period, now)
	sim := &dto.PeriodSimulation{Period: period, Multiplier: m, From: from, To: to}

	scaledFiles := make([]models.BankFileRecord, len(files))
	for i, f := range files {
		f.Outstanding = f.Outstanding.Mul(m)
		scaledFiles[i] = f
	}
	scaledCollections := make([]models.CollectionRecord, len(collections))
	for i, col := range collections {
		col.Amount = col.Amount.Mul(m)
		scaledCollections[i] = col
	}
	return scaledFiles, scaledCollections, sim
}

// resolvePeriod returns the nominal window a period label refers to.
func resolvePeriod(period string, now time.Time) (from, to string) {
	today := now.Format(dashDateLayout)
	switch period {
	case dto.PeriodLastMonth:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastOfPrev := firstOfMonth.AddDate(0, 0, -1)
		firstOfPrev := time.Date(lastOfPrev.Year(), lastOfPrev.Month(), 1, 0, 0, 0, 0, now.Location())
		return firstOfPrev.Format(dashDateLayout), lastOfPrev.Format(dashDateLayout)
	case dto.PeriodThisQuarter:
		return firstOfQuarter(now).Format(dashDateLayout), today
	case dto.PeriodThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Format(dashDateLayout), today
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(dashDateLayout), today
	}
}

func firstOfQuarter(t time.Time) time.Time {
	m := int(t.Month())
	qStart := ((m-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(qStart), 1, 0, 0, 0, 0, t.Location())
}
