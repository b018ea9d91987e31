package dto

import (
	"strings"

	"github.com/GregMSThompson/recovery-dashboard/internal/models"
)

type FileStatus string

const (
	StatusActive       FileStatus = "Active"
	StatusExpiringSoon FileStatus = "ExpiringSoon"
	StatusExpired      FileStatus = "Expired"
)

// ExpiringSoonDays is the inclusive upper bound of the expiring window.
const ExpiringSoonDays = 30

// ExpiryView is derived per read and never stored.
type ExpiryView struct {
	File     models.BankFileRecord `json:"file"`
	DaysLeft int                   `json:"daysLeft"`
	Status   FileStatus            `json:"status"`
}

type ExpiryListResult struct {
	Items  []ExpiryView       `json:"items"`
	Counts map[FileStatus]int `json:"counts"`
}

// ParseFileStatus matches s against the status names case-insensitively.
// "expiring-soon" and "expiring_soon" are accepted for ExpiringSoon.
func ParseFileStatus(s string) (FileStatus, bool) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)) {
	case "active":
		return StatusActive, true
	case "expiringsoon":
		return StatusExpiringSoon, true
	case "expired":
		return StatusExpired, true
	}
	return "", false
}
