package handlers

import (
	"net/http"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
)

// criteriaFromQuery reads filter criteria from the query string. A custom date
// range is enabled when both from and to are given.
func criteriaFromQuery(r *http.Request) (dto.FilterCriteria, error) {
	q := r.URL.Query()
	c := dto.FilterCriteria{
		Bank:       strings.TrimSpace(q.Get("bank")),
		FileType:   strings.TrimSpace(q.Get("fileType")),
		SearchText: strings.TrimSpace(q.Get("search")),
		Period:     strings.TrimSpace(q.Get("period")),
	}

	from, err := parseQueryDate(q.Get("from"), "from")
	if err != nil {
		return c, err
	}
	to, err := parseQueryDate(q.Get("to"), "to")
	if err != nil {
		return c, err
	}

	switch {
	case from == nil && to == nil:
	case from == nil || to == nil:
		return c, errs.NewValidationError("from and to must be given together")
	case to.Before(*from):
		return c, errs.NewValidationError("to must not be before from")
	default:
		c.UseCustomDateRange = true
		c.DateFrom, c.DateTo = from, to
	}
	return c, nil
}

func parseQueryDate(s, name string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, errs.NewValidationError(name + " must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}
