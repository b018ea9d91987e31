package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	AssignmentAssigned   = "assigned"
	AssignmentUnassigned = "unassigned"
)

// BankFileRecord is a debt file placed with the agency for recovery.
type BankFileRecord struct {
	ClientID         string          `json:"clientId"`
	ClientName       string          `json:"clientName"`
	FileNumber       string          `json:"fileNumber"`
	AccountNumber    string          `json:"accountNumber"` // CASA
	BankName         string          `json:"bankName"`
	ProductType      string          `json:"productType"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	AllegationDate   *civil.Date     `json:"allegationDate,omitempty"`
	ExpiryDate       *civil.Date     `json:"expiryDate,omitempty"`
	AgentName        string          `json:"agentName,omitempty"`
	AssignmentStatus string          `json:"assignmentStatus"`
	LastAction       string          `json:"lastAction,omitempty"`
}

func (r BankFileRecord) Bank() string     { return r.BankName }
func (r BankFileRecord) FileType() string { return r.ProductType }

// Date is the allegation date at UTC midnight.
func (r BankFileRecord) Date() (time.Time, bool) {
	if r.AllegationDate == nil {
		return time.Time{}, false
	}
	return r.AllegationDate.In(time.UTC), true
}

func (r BankFileRecord) SearchText() []string {
	return []string{r.ClientName, r.FileNumber, r.ClientID}
}

func (r BankFileRecord) Unassigned() bool {
	return r.AssignmentStatus == AssignmentUnassigned
}
