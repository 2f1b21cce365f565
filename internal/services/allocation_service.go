package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// AllocateLine expands one common-expense line into one line per rule item.
// Each part is round-half-away-from-zero at 2 decimal places; whatever the
// rounded parts fail to cover is folded into the last line so the expanded
// amounts always sum to the source amount exactly. With no items the source
// line is returned unchanged (a direct, non-allocated posting).
func AllocateLine(line LineInput, items []models.AllocationRuleItem) []LineInput {
	if len(items) == 0 {
		return []LineInput{line}
	}

	amount := line.DebitAmount
	isDebit := amount.IsPositive()
	if !isDebit {
		amount = line.CreditAmount
	}

	allocated := make([]LineInput, 0, len(items))
	sum := decimal.Zero
	for _, item := range items {
		part := amount.Mul(item.Ratio).Round(2)
		sum = sum.Add(part)

		out := LineInput{
			ProjectID:     item.TargetProjectID,
			AccountCodeID: line.AccountCodeID,
			EvidenceURL:   line.EvidenceURL,
		}
		if isDebit {
			out.DebitAmount = part
		} else {
			out.CreditAmount = part
		}
		allocated = append(allocated, out)
	}

	remainder := amount.Sub(sum)
	if !remainder.IsZero() {
		last := &allocated[len(allocated)-1]
		if isDebit {
			last.DebitAmount = last.DebitAmount.Add(remainder)
		} else {
			last.CreditAmount = last.CreditAmount.Add(remainder)
		}
	}

	return allocated
}

// allocationService manages allocation rules and rule resolution.
type allocationService struct {
	db *gorm.DB
}

// NewAllocationService creates a new AllocationServicer.
func NewAllocationService(db *gorm.DB) AllocationServicer {
	return &allocationService{db: db}
}

// CreateRule creates an allocation rule with its weighted items. Item order
// is preserved; the engine applies the rounding remainder to the last item.
func (s *allocationService) CreateRule(
	name, basisType string,
	basisValue decimal.Decimal,
	projectID string,
	effectiveFrom time.Time,
	effectiveTo *time.Time,
	items []RuleItemInput,
) (*models.AllocationRule, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rule name is required")
	}
	if len(items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one rule item is required")
	}
	for _, item := range items {
		if item.Ratio.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item ratios must not be negative")
		}
	}

	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rule := &models.AllocationRule{
		Name:          name,
		BasisType:     basisType,
		BasisValue:    basisValue,
		ProjectID:     projectID,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i, item := range items {
			ruleItem := &models.AllocationRuleItem{
				RuleID:          rule.ID,
				TargetProjectID: item.TargetProjectID,
				Ratio:           item.Ratio,
				Position:        i,
			}
			if err := tx.Create(ruleItem).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			rule.Items = append(rule.Items, *ruleItem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetRule returns a rule with its items in application order.
func (s *allocationService) GetRule(ruleID string) (*models.AllocationRule, error) {
	var rule models.AllocationRule
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", ruleID).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// ListRules returns a paginated list of rules for a project.
func (s *allocationService) ListRules(projectID string, page pagination.PageRequest) (*pagination.PageResponse[models.AllocationRule], error) {
	page.Defaults()

	base := s.db.Model(&models.AllocationRule{}).Where("project_id = ?", projectID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.AllocationRule
	if err := base.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Scopes(pagination.Paginate(page)).
		Order("effective_from DESC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Resolve finds the rule in force for a project on the given date. When
// several rules qualify the one with the latest effective_from wins. Absence
// is a valid state, reported through the bool, not an error.
func (s *allocationService) Resolve(projectID string, onDate time.Time) (*models.AllocationRule, bool, error) {
	return resolveRule(s.db, projectID, onDate)
}

// resolveRule is the shared resolver used by both the allocation service and
// the posting engine (which runs it inside its own transaction).
func resolveRule(db *gorm.DB, projectID string, onDate time.Time) (*models.AllocationRule, bool, error) {
	var rule models.AllocationRule
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Where("project_id = ?", projectID).
		Where("effective_from <= ?", onDate).
		Where("effective_to IS NULL OR effective_to >= ?", onDate).
		Order("effective_from DESC").
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, true, nil
}

// Preview resolves the applicable rule and returns the lines the given input
// would expand into, without persisting anything.
func (s *allocationService) Preview(projectID string, onDate time.Time, line LineInput) ([]LineInput, error) {
	if err := validateLine(line); err != nil {
		return nil, err
	}

	rule, found, err := resolveRule(s.db, projectID, onDate)
	if err != nil {
		return nil, err
	}
	if !found {
		return []LineInput{line}, nil
	}
	return AllocateLine(line, rule.Items), nil
}

// validateLine checks the one-positive-side contract every proposed line
// must satisfy.
func validateLine(line LineInput) error {
	if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidLine, "amounts must not be negative")
	}
	if line.DebitAmount.IsPositive() == line.CreditAmount.IsPositive() {
		return apperrors.ErrInvalidLine
	}
	return nil
}
