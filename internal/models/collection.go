package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// CollectionRecord is a payment an agent collected against a file.
type CollectionRecord struct {
	ID          string          `json:"id"`
	AgentName   string          `json:"agentName,omitempty"`
	FileNumber  string          `json:"fileNumber"`
	ClientName  string          `json:"clientName,omitempty"`
	BankName    string          `json:"bankName"`
	ProductType string          `json:"productType"`
	Amount      decimal.Decimal `json:"amountCollected"`
	CollectedAt *time.Time      `json:"collectionDate,omitempty"`
	Status      ApprovalStatus  `json:"status"`
}

func (c CollectionRecord) Bank() string     { return c.BankName }
func (c CollectionRecord) FileType() string { return c.ProductType }

func (c CollectionRecord) Date() (time.Time, bool) {
	if c.CollectedAt == nil {
		return time.Time{}, false
	}
	return *c.CollectedAt, true
}

func (c CollectionRecord) SearchText() []string {
	return []string{c.ClientName, c.FileNumber, c.AgentName}
}

func (c CollectionRecord) Approved() bool {
	return c.Status == ApprovalApproved
}
