package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptStatus is the lifecycle state of a donation receipt.
type ReceiptStatus string

const (
	ReceiptStatusIssued   ReceiptStatus = "ISSUED"
	ReceiptStatusCanceled ReceiptStatus = "CANCELED"
)

// Donation records a gift from a donor to a project.
type Donation struct {
	Base
	DonorID       string          `gorm:"type:uuid;not null;index" json:"donor_id"`
	ProjectID     string          `gorm:"type:uuid;not null;index" json:"project_id"`
	DonatedAt     time.Time       `gorm:"not null" json:"donated_at"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Purpose       string          `json:"purpose,omitempty"`
	PaymentMethod string          `gorm:"not null" json:"payment_method"`
	ReceiptIssued bool            `gorm:"not null;default:false" json:"receipt_issued"`
}

// DonationReceipt is the tax receipt issued for a donation. A donation gets
// at most one ISSUED receipt; receipt numbers are unique and sequential
// within a year.
type DonationReceipt struct {
	Base
	DonationID   string          `gorm:"type:uuid;not null;uniqueIndex" json:"donation_id"`
	ReceiptNo    string          `gorm:"uniqueIndex;not null" json:"receipt_no"`
	IssuedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"issued_amount"`
	Status       ReceiptStatus   `gorm:"type:varchar(20);not null" json:"status"`
}
