package dto

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// FilterAll disables the bank or file type predicate.
const FilterAll = "all"

// Relative period presets.
const (
	PeriodThisMonth   = "this-month"
	PeriodLastMonth   = "last-month"
	PeriodThisQuarter = "this-quarter"
	PeriodThisYear    = "this-year"
)

// FilterCriteria selects records for the dashboard, expiry and report views.
// A custom date range, when enabled, supersedes Period.
type FilterCriteria struct {
	Bank               string      `json:"bank"`
	FileType           string      `json:"fileType"`
	SearchText         string      `json:"searchText,omitempty"`
	ExtraSearch        []string    `json:"extraSearch,omitempty"`
	UseCustomDateRange bool        `json:"useCustomDateRange"`
	DateFrom           *civil.Date `json:"dateFrom,omitempty"`
	DateTo             *civil.Date `json:"dateTo,omitempty"`
	Period             string      `json:"period,omitempty"`

	// MatchNone is set when merged criteria ask for two different banks or
	// file types.
	MatchNone bool `json:"-"`
}

// HasDateRange reports whether the custom range predicate is active.
func (c FilterCriteria) HasDateRange() bool {
	return c.UseCustomDateRange && c.DateFrom != nil && c.DateTo != nil
}

// SearchTerms returns every lowercased needle a record must contain.
func (c FilterCriteria) SearchTerms() []string {
	var terms []string
	for _, raw := range append([]string{c.SearchText}, c.ExtraSearch...) {
		if t := strings.ToLower(strings.TrimSpace(raw)); t != "" && !slices.Contains(terms, t) {
			terms = append(terms, t)
		}
	}
	return terms
}

// Merge returns criteria that select exactly the records passing both c and
// other. Conflicting banks or file types select nothing, search terms are all
// required and custom ranges intersect. A Period set in other wins since it
// only drives the simulation stage.
func (c FilterCriteria) Merge(other FilterCriteria) FilterCriteria {
	out := c
	out.ExtraSearch = slices.Clone(c.ExtraSearch)
	out.MatchNone = c.MatchNone || other.MatchNone

	var conflict bool
	out.Bank, conflict = mergeOption(c.Bank, other.Bank)
	out.MatchNone = out.MatchNone || conflict
	out.FileType, conflict = mergeOption(c.FileType, other.FileType)
	out.MatchNone = out.MatchNone || conflict

	for _, term := range other.SearchTerms() {
		if out.SearchText == "" {
			out.SearchText = term
			continue
		}
		out.ExtraSearch = append(out.ExtraSearch, term)
	}

	if other.HasDateRange() {
		if out.HasDateRange() {
			from, to := *out.DateFrom, *out.DateTo
			if other.DateFrom.After(from) {
				from = *other.DateFrom
			}
			if other.DateTo.Before(to) {
				to = *other.DateTo
			}
			out.DateFrom, out.DateTo = &from, &to
		} else {
			out.UseCustomDateRange = true
			out.DateFrom, out.DateTo = other.DateFrom, other.DateTo
		}
	}

	if other.Period != "" {
		out.Period = other.Period
	}
	return out
}

// mergeOption combines two bank or file type options. conflict is true when
// both are set to different values.
func mergeOption(a, b string) (merged string, conflict bool) {
	switch {
	case b == "" || b == FilterAll:
		return a, false
	case a == "" || a == FilterAll:
		return b, false
	default:
		return a, a != b
	}
}
