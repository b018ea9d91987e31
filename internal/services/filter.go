package services

import (
	"strings"
	"time"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
)

// Filterable is any record the filter pipeline can select on.
type Filterable interface {
	Bank() string
	FileType() string
	Date() (time.Time, bool)
	SearchText() []string
}

// ApplyFilters keeps the records that pass every active predicate in
// criteria. Predicates are independent of each other, so their order does not
// change the result. Input order is preserved.
func ApplyFilters[T Filterable](records []T, c dto.FilterCriteria) []T {
	preds := buildPredicates[T](c)
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if matchesAll(rec, preds) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll[T Filterable](rec T, preds []func(T) bool) bool {
	for _, keep := range preds {
		if !keep(rec) {
			return false
		}
	}
	return true
}

func buildPredicates[T Filterable](c dto.FilterCriteria) []func(T) bool {
	var preds []func(T) bool

	if c.MatchNone {
		return append(preds, func(T) bool { return false })
	}
	if active(c.Bank) {
		bank := c.Bank
		preds = append(preds, func(r T) bool { return r.Bank() == bank })
	}
	if active(c.FileType) {
		fileType := c.FileType
		preds = append(preds, func(r T) bool { return r.FileType() == fileType })
	}
	for _, needle := range c.SearchTerms() {
		preds = append(preds, func(r T) bool { return containsFold(r.SearchText(), needle) })
	}
	if c.HasDateRange() {
		from, to := dateBounds(c)
		preds = append(preds, func(r T) bool {
			t, ok := r.Date()
			if !ok {
				return false
			}
			return !t.Before(from) && t.Before(to)
		})
	}
	return preds
}

// dateBounds returns the start of the from day and the start of the day after
// the to day, so the range covers both days in full.
func dateBounds(c dto.FilterCriteria) (from, to time.Time) {
	from = c.DateFrom.In(time.UTC)
	to = c.DateTo.AddDays(1).In(time.UTC)
	return from, to
}

func active(option string) bool {
	return option != "" && option != dto.FilterAll
}

func containsFold(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
