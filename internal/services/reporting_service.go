package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
)

// publicSpendRatio is the statutory share of previous-year revenue that must
// be spent on public-interest projects.
var publicSpendRatio = decimal.NewFromFloat(0.8)

// reportingService runs the read-side aggregate queries. Everything here is
// computed freshly from committed, approved postings on each call.
type reportingService struct {
	db *gorm.DB
}

// NewReportingService creates a new ReportingServicer.
func NewReportingService(db *gorm.DB) ReportingServicer {
	return &reportingService{db: db}
}

// statementRow is the scan target shared by both statement groupings.
type statementRow struct {
	ProjectType models.ProjectType
	Level1      models.AccountClass
	Level2      string
	Level3      string
	Amount      decimal.Decimal
}

// FinancialStatements builds the balance sheet (debit minus credit over
// asset/liability/net-asset accounts) and the operating statement (credit
// minus debit over revenue/expense accounts), both grouped by project type.
func (s *reportingService) FinancialStatements(start, end time.Time) (*FinancialStatements, error) {
	var bsRows []statementRow
	err := s.approvedLines(start, end).
		Select("projects.type AS project_type, account_codes.level1, account_codes.level2, account_codes.level3, " +
			"SUM(transaction_lines.debit_amount - transaction_lines.credit_amount) AS amount").
		Where("account_codes.level1 IN ?", classStrings(models.BalanceSheetClasses)).
		Group("projects.type, account_codes.level1, account_codes.level2, account_codes.level3").
		Order("projects.type, account_codes.level1, account_codes.level2, account_codes.level3").
		Scan(&bsRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var osRows []statementRow
	err = s.approvedLines(start, end).
		Select("projects.type AS project_type, account_codes.level1, account_codes.level2, " +
			"SUM(transaction_lines.credit_amount - transaction_lines.debit_amount) AS amount").
		Where("account_codes.level1 IN ?", classStrings(models.OperatingClasses)).
		Group("projects.type, account_codes.level1, account_codes.level2").
		Order("projects.type, account_codes.level1, account_codes.level2").
		Scan(&osRows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &FinancialStatements{
		BalanceSheet:       make(map[models.ProjectType][]BalanceSheetRow),
		OperatingStatement: make(map[models.ProjectType][]OperatingRow),
	}
	for _, row := range bsRows {
		result.BalanceSheet[row.ProjectType] = append(result.BalanceSheet[row.ProjectType], BalanceSheetRow{
			Level1: row.Level1,
			Level2: row.Level2,
			Level3: row.Level3,
			Amount: row.Amount,
		})
	}
	for _, row := range osRows {
		result.OperatingStatement[row.ProjectType] = append(result.OperatingStatement[row.ProjectType], OperatingRow{
			Level1: row.Level1,
			Level2: row.Level2,
			Amount: row.Amount,
		})
	}
	return result, nil
}

// ReserveSimulation computes commercial profit in range and derives the
// maximum reserve and the expected penalty for unused reserve, all in exact
// decimal arithmetic.
func (s *reportingService) ReserveSimulation(
	start, end time.Time,
	limitRate, penaltyRate, unusedAmount decimal.Decimal,
) (*ReserveSimulation, error) {
	var profit decimal.NullDecimal
	err := s.approvedLines(start, end).
		Select("SUM(transaction_lines.credit_amount - transaction_lines.debit_amount)").
		Where("projects.type = ?", models.ProjectTypeProfit).
		Where("account_codes.level1 IN ?", classStrings(models.OperatingClasses)).
		Scan(&profit).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	profitValue := decimal.Zero
	if profit.Valid {
		profitValue = profit.Decimal
	}

	return &ReserveSimulation{
		Profit:          profitValue,
		LimitRate:       limitRate,
		MaxReserve:      profitValue.Mul(limitRate),
		UnusedAmount:    unusedAmount,
		PenaltyRate:     penaltyRate,
		ExpectedPenalty: unusedAmount.Mul(penaltyRate),
	}, nil
}

// PublicSpendingCompliance checks the 80% public spending floor against the
// externally supplied figures.
func (s *reportingService) PublicSpendingCompliance(prevYearRevenue, currentPublicSpend decimal.Decimal) *ComplianceResult {
	required := prevYearRevenue.Mul(publicSpendRatio)
	status := "FAIL"
	if currentPublicSpend.GreaterThanOrEqual(required) {
		status = "PASS"
	}
	return &ComplianceResult{
		RequiredAmount: required,
		ActualAmount:   currentPublicSpend,
		Status:         status,
	}
}

// approvedLines is the base query every report shares: lines of APPROVED
// heads dated within [start, end], joined to their project and account code.
func (s *reportingService) approvedLines(start, end time.Time) *gorm.DB {
	return s.db.Model(&models.TransactionLine{}).
		Joins("JOIN transaction_heads ON transaction_heads.id = transaction_lines.head_id").
		Joins("JOIN projects ON projects.id = transaction_lines.project_id").
		Joins("JOIN account_codes ON account_codes.id = transaction_lines.account_code_id").
		Where("transaction_heads.status = ?", models.HeadStatusApproved).
		Where("transaction_heads.tx_date BETWEEN ? AND ?", start, end)
}

func classStrings(classes []models.AccountClass) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = string(c)
	}
	return out
}
