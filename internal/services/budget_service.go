package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates the annual ceiling row for a project. One row per
// (project, fiscal year).
func (s *budgetService) CreateBudget(projectID string, fiscalYear int, totalBudget decimal.Decimal) (*models.Budget, error) {
	if fiscalYear <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fiscal year is required")
	}
	if totalBudget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total budget must not be negative")
	}

	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var existing int64
	if err := s.db.Model(&models.Budget{}).
		Where("project_id = ? AND fiscal_year = ?", projectID, fiscalYear).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		ProjectID:   projectID,
		FiscalYear:  fiscalYear,
		TotalBudget: totalBudget,
		TotalSpent:  decimal.Zero,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetBudget returns the budget row for a project and fiscal year.
func (s *budgetService) GetBudget(projectID string, fiscalYear int) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("project_id = ? AND fiscal_year = ?", projectID, fiscalYear).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// ListBudgets returns a paginated list of budgets for a fiscal year.
func (s *budgetService) ListBudgets(fiscalYear int, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("fiscal_year = ?", fiscalYear)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CheckCapacity is the read-only capacity probe. A missing budget row means
// no limit is configured for that project and year.
func (s *budgetService) CheckCapacity(projectID string, fiscalYear int, amount decimal.Decimal) (*CapacityResult, error) {
	var budget models.Budget
	err := s.db.Where("project_id = ? AND fiscal_year = ?", projectID, fiscalYear).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CapacityResult{OK: true, Unlimited: true}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	remaining := budget.Remaining()
	return &CapacityResult{OK: remaining.GreaterThanOrEqual(amount), Remaining: remaining}, nil
}

// budgetKey identifies one lockable budget aggregate.
type budgetKey struct {
	projectID  string
	fiscalYear int
}

// budgetReservation serializes the check-then-commit sequence of one posting
// against the budget rows it touches. Rows are loaded at most once per
// posting, locked for the duration of the surrounding transaction, and the
// demand reserved so far is counted against later checks on the same row so
// a single head cannot jointly overshoot a budget.
type budgetReservation struct {
	budgets  map[budgetKey]*models.Budget
	reserved map[budgetKey]decimal.Decimal
}

func newBudgetReservation() *budgetReservation {
	return &budgetReservation{
		budgets:  make(map[budgetKey]*models.Budget),
		reserved: make(map[budgetKey]decimal.Decimal),
	}
}

// load fetches and caches the budget row for the key, taking a row lock on
// dialects that support it. SQLite serializes writers on its own.
func (r *budgetReservation) load(tx *gorm.DB, key budgetKey) (*models.Budget, error) {
	if budget, ok := r.budgets[key]; ok {
		return budget, nil
	}

	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var budget models.Budget
	err := q.Where("project_id = ? AND fiscal_year = ?", key.projectID, key.fiscalYear).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.budgets[key] = nil
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	r.budgets[key] = &budget
	return &budget, nil
}

// reserveOutcome reports how a reserve call passed.
type reserveOutcome struct {
	overrode  bool
	remaining decimal.Decimal
}

// reserve runs the capacity check for one expanded debit line and records
// its demand. When capacity is insufficient the elevated role may still pass
// with an explicit override; every other caller gets BudgetExceeded.
func (r *budgetReservation) reserve(
	tx *gorm.DB,
	key budgetKey,
	amount decimal.Decimal,
	actorRole string,
	overrideRequested bool,
	elevatedRole string,
) (*reserveOutcome, error) {
	budget, err := r.load(tx, key)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		// No budget configured: capacity is unconstrained and nothing to commit.
		return &reserveOutcome{}, nil
	}

	remaining := budget.Remaining().Sub(r.reserved[key])
	outcome := &reserveOutcome{remaining: remaining}
	if remaining.LessThan(amount) {
		if !overrideRequested || !strings.EqualFold(actorRole, elevatedRole) {
			return nil, apperrors.BudgetExceeded(key.projectID, remaining, amount)
		}
		outcome.overrode = true
	}

	r.reserved[key] = r.reserved[key].Add(amount)
	return outcome, nil
}

// commit accumulates every reservation into its budget row's running total.
// Only called after all lines of the head passed their checks.
func (r *budgetReservation) commit(tx *gorm.DB) error {
	for key, amount := range r.reserved {
		budget := r.budgets[key]
		if budget == nil || amount.IsZero() {
			continue
		}
		if err := tx.Model(budget).
			Update("total_spent", budget.TotalSpent.Add(amount)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}
