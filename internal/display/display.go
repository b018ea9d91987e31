// Package display maps banks, products and statuses to chart labels and
// colours.
package display

import (
	"strings"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
)

type Bank int

const (
	BankOther Bank = iota
	BankHBL
	BankUBL
	BankMCB
	BankAlfalah
	BankMeezan
)

type Product int

const (
	ProductOther Product = iota
	ProductCreditCard
	ProductPersonalLoan
	ProductAutoLoan
	ProductHomeLoan
)

// Attributes is what a chart needs to draw one series entry.
type Attributes struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

const DefaultColor = "#9ca3af"

var bankNames = map[string]Bank{
	"hbl":          BankHBL,
	"ubl":          BankUBL,
	"mcb":          BankMCB,
	"alfalah":      BankAlfalah,
	"bank alfalah": BankAlfalah,
	"meezan":       BankMeezan,
	"meezan bank":  BankMeezan,
}

var productNames = map[string]Product{
	"credit card":   ProductCreditCard,
	"personal loan": ProductPersonalLoan,
	"auto loan":     ProductAutoLoan,
	"car loan":      ProductAutoLoan,
	"home loan":     ProductHomeLoan,
	"mortgage":      ProductHomeLoan,
}

// palette holds one colour per bank, shaded per product.
var palette = map[Bank][4]string{
	BankHBL:     {"#047857", "#059669", "#10b981", "#6ee7b7"},
	BankUBL:     {"#1d4ed8", "#2563eb", "#3b82f6", "#93c5fd"},
	BankMCB:     {"#b45309", "#d97706", "#f59e0b", "#fcd34d"},
	BankAlfalah: {"#b91c1c", "#dc2626", "#ef4444", "#fca5a5"},
	BankMeezan:  {"#6d28d9", "#7c3aed", "#8b5cf6", "#c4b5fd"},
}

var statusColors = map[dto.FileStatus]string{
	dto.StatusActive:       "#16a34a",
	dto.StatusExpiringSoon: "#f59e0b",
	dto.StatusExpired:      "#dc2626",
}

func ParseBank(name string) Bank {
	return bankNames[normalize(name)]
}

func ParseProduct(name string) Product {
	return productNames[normalize(name)]
}

// For returns the attributes of a bank and product pair. Unrecognised banks
// get DefaultColor; unrecognised products get the bank's base colour.
func For(bank, product string) Attributes {
	label := strings.TrimSpace(bank)
	if p := strings.TrimSpace(product); p != "" {
		if label == "" {
			label = p
		} else {
			label += " - " + p
		}
	}
	if label == "" {
		label = "Other"
	}
	return Attributes{Label: label, Color: colorFor(ParseBank(bank), ParseProduct(product))}
}

func colorFor(b Bank, p Product) string {
	shades, ok := palette[b]
	if !ok {
		return DefaultColor
	}
	switch p {
	case ProductCreditCard, ProductPersonalLoan, ProductAutoLoan, ProductHomeLoan:
		return shades[int(p)-1]
	default:
		return shades[0]
	}
}

func ForStatus(s dto.FileStatus) Attributes {
	color, ok := statusColors[s]
	if !ok {
		return Attributes{Label: string(s), Color: DefaultColor}
	}
	return Attributes{Label: string(s), Color: color}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
