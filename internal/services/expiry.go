package services

import (
	"context"
	"sort"
	"time"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
)

type expiryService struct {
	records  recordReader
	clockNow func() time.Time
}

func NewExpiryService(records recordReader) *expiryService {
	return &expiryService{records: records, clockNow: time.Now}
}

// ListExpiry returns the filtered files with their derived status, soonest
// expiry first and undated files last. Counts cover every status regardless of the status argument;
// an empty status or "all" lists every file.
func (s *expiryService) ListExpiry(ctx context.Context, c dto.FilterCriteria, status string) (*dto.ExpiryListResult, error) {
	var want dto.FileStatus
	if status != "" && status != dto.FilterAll {
		parsed, ok := dto.ParseFileStatus(status)
		if !ok {
			return nil, errs.NewValidationError("invalid status: " + status)
		}
		want = parsed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := ApplyFilters(s.records.LoadFiles(ctx), defaultCriteria().Merge(c))
	views := DeriveAll(files, s.clockNow())

	return buildExpiryList(views, want), nil
}

func buildExpiryList(views []dto.ExpiryView, want dto.FileStatus) *dto.ExpiryListResult {
	res := &dto.ExpiryListResult{
		Items: make([]dto.ExpiryView, 0, len(views)),
		Counts: map[dto.FileStatus]int{
			dto.StatusActive:       0,
			dto.StatusExpiringSoon: 0,
			dto.StatusExpired:      0,
		},
	}
	for _, v := range views {
		res.Counts[v.Status]++
		if want == "" || v.Status == want {
			res.Items = append(res.Items, v)
		}
	}
	sort.SliceStable(res.Items, func(i, j int) bool {
		a, b := res.Items[i], res.Items[j]
		if (a.File.ExpiryDate == nil) != (b.File.ExpiryDate == nil) {
			return b.File.ExpiryDate == nil
		}
		return a.DaysLeft < b.DaysLeft
	})
	return res
}
