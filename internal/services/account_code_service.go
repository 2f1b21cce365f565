package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// accountCodeService manages the chart of accounts. Codes are configuration
// data: created out of band and treated as immutable by the posting engine.
type accountCodeService struct {
	db *gorm.DB
}

// NewAccountCodeService creates a new AccountCodeServicer.
func NewAccountCodeService(db *gorm.DB) AccountCodeServicer {
	return &accountCodeService{db: db}
}

// CreateAccountCode creates one chart-of-accounts entry.
func (s *accountCodeService) CreateAccountCode(
	level1 models.AccountClass,
	level2, level3, code string,
	isCommonExpense bool,
) (*models.AccountCode, error) {
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "code is required")
	}

	var existing int64
	if err := s.db.Model(&models.AccountCode{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateCode
	}

	accountCode := &models.AccountCode{
		Level1:          level1,
		Level2:          level2,
		Level3:          level3,
		Code:            code,
		IsCommonExpense: isCommonExpense,
		IsActive:        true,
	}
	if err := s.db.Create(accountCode).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accountCode, nil
}

// GetAccountCodeByID returns an account code by ID.
func (s *accountCodeService) GetAccountCodeByID(accountCodeID string) (*models.AccountCode, error) {
	return getAccountCode(s.db, accountCodeID)
}

// GetAccountCodeByCode returns an account code by its unique code.
func (s *accountCodeService) GetAccountCodeByCode(code string) (*models.AccountCode, error) {
	var accountCode models.AccountCode
	if err := s.db.Where("code = ?", code).First(&accountCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountCodeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &accountCode, nil
}

// ListAccountCodes returns a paginated list of the chart of accounts.
func (s *accountCodeService) ListAccountCodes(page pagination.PageRequest) (*pagination.PageResponse[models.AccountCode], error) {
	page.Defaults()

	base := s.db.Model(&models.AccountCode{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var codes []models.AccountCode
	if err := base.Scopes(pagination.Paginate(page)).Order("code").Find(&codes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(codes, page.Page, page.PageSize, totalItems)
	return &result, nil
}
