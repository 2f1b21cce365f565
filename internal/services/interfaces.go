package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// LineInput is one proposed ledger line as submitted by a caller, before
// allocation fan-out. Exactly one of DebitAmount/CreditAmount must be
// positive.
type LineInput struct {
	ProjectID     string          `json:"project_id"`
	AccountCodeID string          `json:"account_code_id"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	EvidenceURL   string          `json:"evidence_url,omitempty"`
}

// HeadInput carries the head fields for a posting attempt.
type HeadInput struct {
	TxDate      time.Time
	Description string
	Status      models.HeadStatus
	CreatedBy   string
}

// PostingServicer turns a proposed transaction into durable, balanced ledger
// entries: it creates the head, fans common-expense lines out across projects,
// gates the expanded set against per-project budgets, and commits everything
// in one transaction.
type PostingServicer interface {
	Post(head HeadInput, lines []LineInput, actorRole string, overrideRequested bool) (*models.TransactionHead, error)
	GetHead(headID string) (*models.TransactionHead, error)
	Approve(headID, approverID string) (*models.TransactionHead, error)
	Reject(headID, approverID string) (*models.TransactionHead, error)
}

// RuleItemInput is one weighted target when creating an allocation rule.
type RuleItemInput struct {
	TargetProjectID string
	Ratio           decimal.Decimal
}

// AllocationServicer manages allocation rules and resolves the rule in force
// for a project on a given date.
type AllocationServicer interface {
	CreateRule(name, basisType string, basisValue decimal.Decimal, projectID string, effectiveFrom time.Time, effectiveTo *time.Time, items []RuleItemInput) (*models.AllocationRule, error)
	GetRule(ruleID string) (*models.AllocationRule, error)
	ListRules(projectID string, page pagination.PageRequest) (*pagination.PageResponse[models.AllocationRule], error)
	Resolve(projectID string, onDate time.Time) (*models.AllocationRule, bool, error)
	Preview(projectID string, onDate time.Time, line LineInput) ([]LineInput, error)
}

// CapacityResult is the outcome of a read-only budget capacity check.
type CapacityResult struct {
	OK        bool            `json:"ok"`
	Remaining decimal.Decimal `json:"remaining"`
	Unlimited bool            `json:"unlimited"`
}

// BudgetServicer manages per-(project, fiscal year) budget rows. TotalSpent
// is mutated only through the posting engine's commit step, never directly.
type BudgetServicer interface {
	CreateBudget(projectID string, fiscalYear int, totalBudget decimal.Decimal) (*models.Budget, error)
	GetBudget(projectID string, fiscalYear int) (*models.Budget, error)
	ListBudgets(fiscalYear int, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	CheckCapacity(projectID string, fiscalYear int, amount decimal.Decimal) (*CapacityResult, error)
}

// BalanceSheetRow is one grouped balance-sheet aggregate.
type BalanceSheetRow struct {
	Level1 models.AccountClass `json:"level1"`
	Level2 string              `json:"level2"`
	Level3 string              `json:"level3"`
	Amount decimal.Decimal     `json:"amount"`
}

// OperatingRow is one grouped operating-statement aggregate.
type OperatingRow struct {
	Level1 models.AccountClass `json:"level1"`
	Level2 string              `json:"level2"`
	Amount decimal.Decimal     `json:"amount"`
}

// FinancialStatements groups aggregates by project type. Keys with no
// matching rows are absent.
type FinancialStatements struct {
	BalanceSheet       map[models.ProjectType][]BalanceSheetRow `json:"balance_sheet"`
	OperatingStatement map[models.ProjectType][]OperatingRow    `json:"operating_statement"`
}

// ReserveSimulation is the statutory reserve calculation over commercial
// project profit.
type ReserveSimulation struct {
	Profit          decimal.Decimal `json:"profit"`
	LimitRate       decimal.Decimal `json:"limit_rate"`
	MaxReserve      decimal.Decimal `json:"max_reserve"`
	UnusedAmount    decimal.Decimal `json:"unused_amount"`
	PenaltyRate     decimal.Decimal `json:"penalty_rate"`
	ExpectedPenalty decimal.Decimal `json:"expected_penalty"`
}

// ComplianceResult is the public spending ratio check outcome.
type ComplianceResult struct {
	RequiredAmount decimal.Decimal `json:"required_amount"`
	ActualAmount   decimal.Decimal `json:"actual_amount"`
	Status         string          `json:"status"`
}

// ReportingServicer runs read-only aggregate queries over committed,
// approved postings. Results are computed freshly on every call.
type ReportingServicer interface {
	FinancialStatements(start, end time.Time) (*FinancialStatements, error)
	ReserveSimulation(start, end time.Time, limitRate, penaltyRate, unusedAmount decimal.Decimal) (*ReserveSimulation, error)
	PublicSpendingCompliance(prevYearRevenue, currentPublicSpend decimal.Decimal) *ComplianceResult
}

// ProjectServicer manages project reference data.
type ProjectServicer interface {
	CreateProject(code, name string, projectType models.ProjectType, startDate, endDate *time.Time) (*models.Project, error)
	GetProjectByID(projectID string) (*models.Project, error)
	ListProjects(projectType *models.ProjectType, isActive *bool, page pagination.PageRequest) (*pagination.PageResponse[models.Project], error)
}

// AccountCodeServicer manages the chart of accounts.
type AccountCodeServicer interface {
	CreateAccountCode(level1 models.AccountClass, level2, level3, code string, isCommonExpense bool) (*models.AccountCode, error)
	GetAccountCodeByID(accountCodeID string) (*models.AccountCode, error)
	GetAccountCodeByCode(code string) (*models.AccountCode, error)
	ListAccountCodes(page pagination.PageRequest) (*pagination.PageResponse[models.AccountCode], error)
}

// DonationServicer records donations and issues receipts.
type DonationServicer interface {
	CreateDonation(donorID, projectID string, donatedAt time.Time, amount decimal.Decimal, purpose, paymentMethod string) (*models.Donation, error)
	GetDonationByID(donationID string) (*models.Donation, error)
	ListDonations(projectID string, page pagination.PageRequest) (*pagination.PageResponse[models.Donation], error)
	IssueReceipt(donationID string) (*models.DonationReceipt, error)
}

// ComplianceIssue is one finding from the board composition checks.
type ComplianceIssue struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// BoardStats summarizes the board composition.
type BoardStats struct {
	DirectorCount        int64 `json:"director_count"`
	AuditorCount         int64 `json:"auditor_count"`
	SpecialRelationCount int64 `json:"special_relation_count"`
	ForeignDirectorCount int64 `json:"foreign_director_count"`
}

// BoardServicer evaluates board composition against statutory limits.
type BoardServicer interface {
	AddMember(name, role, occupation string, termStart, termEnd time.Time, isForeigner bool, specialRelationTo *string) (*models.BoardMember, error)
	EvaluateComposition() (*BoardStats, []ComplianceIssue, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actorID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
	LogBudgetOverride(actorID, projectID string, amount, remaining decimal.Decimal)
}
