package models

import "github.com/shopspring/decimal"

// Budget is the annual spending ceiling for one project. TotalSpent is a
// running total mutated only by the posting engine's commit step; it is the
// sole source of truth for remaining capacity. One row per
// (project, fiscal year).
type Budget struct {
	Base
	ProjectID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_budget_project_year" json:"project_id"`
	FiscalYear  int             `gorm:"not null;uniqueIndex:idx_budget_project_year" json:"fiscal_year"`
	TotalBudget decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_budget"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_spent"`
}

// Remaining returns the capacity still available under this budget.
func (b *Budget) Remaining() decimal.Decimal {
	return b.TotalBudget.Sub(b.TotalSpent)
}
