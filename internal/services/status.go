package services

import (
	"math"
	"time"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
)

const secondsPerDay = 86400

// DeriveStatus computes the expiry view of a file as of now. A file without an
// expiry date is Active with zero days left. The expiry day itself (daysLeft
// == 0) is ExpiringSoon. Calendar days start at UTC midnight, as in the
// filter pipeline.
func DeriveStatus(rec models.BankFileRecord, now time.Time) dto.ExpiryView {
	view := dto.ExpiryView{File: rec, Status: dto.StatusActive}
	if rec.ExpiryDate == nil || !rec.ExpiryDate.IsValid() {
		return view
	}

	expiry := rec.ExpiryDate.In(time.UTC)
	view.DaysLeft = int(math.Ceil(expiry.Sub(now).Seconds() / secondsPerDay))

	switch {
	case view.DaysLeft < 0:
		view.Status = dto.StatusExpired
	case view.DaysLeft <= dto.ExpiringSoonDays:
		view.Status = dto.StatusExpiringSoon
	default:
		view.Status = dto.StatusActive
	}
	return view
}

// DeriveAll derives every file's view in input order.
func DeriveAll(files []models.BankFileRecord, now time.Time) []dto.ExpiryView {
	views := make([]dto.ExpiryView, len(files))
	for i, f := range files {
		views[i] = DeriveStatus(f, now)
	}
	return views
}
