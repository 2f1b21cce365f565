package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationRule is a dated policy mapping one source project's common
// expenses to a weighted set of target projects. At most one rule should be
// effective for a project on a given date; the resolver breaks ties by the
// latest EffectiveFrom.
type AllocationRule struct {
	Base
	Name          string          `gorm:"not null" json:"name"`
	BasisType     string          `gorm:"not null" json:"basis_type"`
	BasisValue    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"basis_value"`
	ProjectID     string          `gorm:"type:uuid;not null;index" json:"project_id"`
	EffectiveFrom time.Time       `gorm:"not null" json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`

	// Relationships
	Items []AllocationRuleItem `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// AllocationRuleItem is one weighted target of an allocation rule. Item order
// is significant: the rounding remainder is folded into the last item.
type AllocationRuleItem struct {
	Base
	RuleID          string          `gorm:"type:uuid;not null;index" json:"rule_id"`
	TargetProjectID string          `gorm:"type:uuid;not null" json:"target_project_id"`
	Ratio           decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"ratio"`
	Position        int             `gorm:"not null" json:"position"`
}

// AllocationResult links a source common-expense line to one of the lines it
// was expanded into, recording which rule produced it and how much was
// allocated.
type AllocationResult struct {
	Base
	SourceLineID    string          `gorm:"type:uuid;not null;index" json:"source_line_id"`
	AllocatedLineID string          `gorm:"type:uuid;not null" json:"allocated_line_id"`
	RuleID          string          `gorm:"type:uuid;not null" json:"rule_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"allocated_amount"`
}
