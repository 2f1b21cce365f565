package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HeadStatus is the approval state of a transaction head.
type HeadStatus string

const (
	HeadStatusDraft    HeadStatus = "DRAFT"
	HeadStatusApproved HeadStatus = "APPROVED"
	HeadStatusRejected HeadStatus = "REJECTED"
)

// TransactionHead is one economic event. It owns a set of lines which are
// created once by the posting engine and never mutated afterwards; only the
// approval workflow touches the status fields.
type TransactionHead struct {
	Base
	TxDate      time.Time  `gorm:"not null" json:"tx_date"`
	Description string     `json:"description"`
	Status      HeadStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedBy   string     `gorm:"type:uuid;not null" json:"created_by"`
	ApprovedBy  *string    `gorm:"type:uuid" json:"approved_by,omitempty"`

	// Relationships
	Lines []TransactionLine `gorm:"foreignKey:HeadID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// TransactionLine is one debit-or-credit posting against a project and
// account code. Exactly one of DebitAmount/CreditAmount is expected to be
// positive per line; reporting treats debit minus credit as the signed
// movement.
type TransactionLine struct {
	Base
	HeadID        string          `gorm:"type:uuid;not null;index" json:"head_id"`
	ProjectID     string          `gorm:"type:uuid;not null;index" json:"project_id"`
	AccountCodeID string          `gorm:"type:uuid;not null;index" json:"account_code_id"`
	DebitAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"debit_amount"`
	CreditAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"credit_amount"`
	EvidenceURL   string          `json:"evidence_url,omitempty"`

	// Relationships
	Project     Project     `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AccountCode AccountCode `gorm:"foreignKey:AccountCodeID" json:"account_code,omitempty"`
}

// Amount returns whichever side of the line is non-zero and whether it is
// the debit side.
func (l *TransactionLine) Amount() (decimal.Decimal, bool) {
	if l.DebitAmount.IsPositive() {
		return l.DebitAmount, true
	}
	return l.CreditAmount, false
}
