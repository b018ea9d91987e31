package services

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
)

func datePtr(y int, m time.Month, d int) *civil.Date {
	return &civil.Date{Year: y, Month: m, Day: d}
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		expiry   *civil.Date
		wantDays int
		want     dto.FileStatus
	}{
		{"no expiry", nil, 0, dto.StatusActive},
		{"invalid date", &civil.Date{Year: 2024, Month: time.February, Day: 30}, 0, dto.StatusActive},
		{"expiry day itself", datePtr(2024, time.June, 15), 0, dto.StatusExpiringSoon},
		{"yesterday", datePtr(2024, time.June, 14), -1, dto.StatusExpired},
		{"long expired", datePtr(2023, time.June, 15), -366, dto.StatusExpired},
		{"tomorrow", datePtr(2024, time.June, 16), 1, dto.StatusExpiringSoon},
		{"thirty days", datePtr(2024, time.July, 15), 30, dto.StatusExpiringSoon},
		{"thirty one days", datePtr(2024, time.July, 16), 31, dto.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(models.BankFileRecord{FileNumber: "F1", ExpiryDate: tt.expiry}, now)
			if got.DaysLeft != tt.wantDays || got.Status != tt.want {
				t.Fatalf("got daysLeft=%d status=%s, want %d %s", got.DaysLeft, got.Status, tt.wantDays, tt.want)
			}
			if got.File.FileNumber != "F1" {
				t.Fatalf("view lost its file: %+v", got.File)
			}
		})
	}
}

func TestDeriveStatusNonUTCNow(t *testing.T) {
	// 2024-06-15 02:00 at +05:00 is 2024-06-14 21:00 UTC.
	now := time.Date(2024, time.June, 15, 2, 0, 0, 0, time.FixedZone("PKT", 5*60*60))

	tests := []struct {
		name     string
		expiry   *civil.Date
		wantDays int
		want     dto.FileStatus
	}{
		{"next utc day", datePtr(2024, time.June, 15), 1, dto.StatusExpiringSoon},
		{"current utc day", datePtr(2024, time.June, 14), 0, dto.StatusExpiringSoon},
		{"previous utc day", datePtr(2024, time.June, 13), -1, dto.StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(models.BankFileRecord{ExpiryDate: tt.expiry}, now)
			if got.DaysLeft != tt.wantDays || got.Status != tt.want {
				t.Fatalf("got daysLeft=%d status=%s, want %d %s", got.DaysLeft, got.Status, tt.wantDays, tt.want)
			}
		})
	}
}

func TestDeriveStatusDependsOnNow(t *testing.T) {
	rec := models.BankFileRecord{ExpiryDate: datePtr(2024, time.March, 1)}

	before := DeriveStatus(rec, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	after := DeriveStatus(rec, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))

	if before.Status != dto.StatusActive || before.DaysLeft != 60 {
		t.Fatalf("before: %+v", before)
	}
	if after.Status != dto.StatusExpired || after.DaysLeft != -1 {
		t.Fatalf("after: %+v", after)
	}
}

func TestDeriveAllKeepsOrder(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	files := []models.BankFileRecord{
		{FileNumber: "a", ExpiryDate: datePtr(2024, time.June, 1)},
		{FileNumber: "b"},
		{FileNumber: "c", ExpiryDate: datePtr(2024, time.June, 20)},
	}
	views := DeriveAll(files, now)
	want := []dto.FileStatus{dto.StatusExpired, dto.StatusActive, dto.StatusExpiringSoon}
	for i, v := range views {
		if v.File.FileNumber != files[i].FileNumber || v.Status != want[i] {
			t.Fatalf("view %d: %+v", i, v)
		}
	}
}
