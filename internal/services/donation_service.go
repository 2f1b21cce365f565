package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// donationService records donations and issues tax receipts.
type donationService struct {
	db *gorm.DB
}

// NewDonationService creates a new DonationServicer.
func NewDonationService(db *gorm.DB) DonationServicer {
	return &donationService{db: db}
}

// CreateDonation records a donation against a project.
func (s *donationService) CreateDonation(
	donorID, projectID string,
	donatedAt time.Time,
	amount decimal.Decimal,
	purpose, paymentMethod string,
) (*models.Donation, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if donatedAt.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "donation date is required")
	}

	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	donation := &models.Donation{
		DonorID:       donorID,
		ProjectID:     projectID,
		DonatedAt:     donatedAt,
		Amount:        amount,
		Purpose:       purpose,
		PaymentMethod: paymentMethod,
	}
	if err := s.db.Create(donation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return donation, nil
}

// GetDonationByID returns a donation by ID.
func (s *donationService) GetDonationByID(donationID string) (*models.Donation, error) {
	var donation models.Donation
	if err := s.db.Where("id = ?", donationID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDonationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &donation, nil
}

// ListDonations returns a paginated list of donations, optionally filtered
// by project.
func (s *donationService) ListDonations(projectID string, page pagination.PageRequest) (*pagination.PageResponse[models.Donation], error) {
	page.Defaults()

	base := s.db.Model(&models.Donation{})
	if projectID != "" {
		base = base.Where("project_id = ?", projectID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var donations []models.Donation
	if err := base.Scopes(pagination.Paginate(page)).Order("donated_at DESC").Find(&donations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(donations, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// IssueReceipt issues the receipt for a donation. A donation gets at most
// one issued receipt; the receipt number is sequential within the donation
// year. The issued flag is re-read inside the transaction, under a row lock
// on dialects that support it, so two racing calls cannot both pass the
// check; the unique indexes on donation_id and receipt_no back the same
// contract at the schema level.
func (s *donationService) IssueReceipt(donationID string) (*models.DonationReceipt, error) {
	var receipt *models.DonationReceipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var donation models.Donation
		if err := q.Where("id = ?", donationID).First(&donation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDonationNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if donation.ReceiptIssued {
			return apperrors.ErrReceiptAlreadyIssued
		}

		year := donation.DonatedAt.Year()
		prefix := fmt.Sprintf("RCPT-%d-", year)

		var issued int64
		if err := tx.Model(&models.DonationReceipt{}).
			Where("receipt_no LIKE ?", prefix+"%").
			Count(&issued).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		receipt = &models.DonationReceipt{
			DonationID:   donation.ID,
			ReceiptNo:    fmt.Sprintf("%s%06d", prefix, issued+1),
			IssuedAmount: donation.Amount,
			Status:       models.ReceiptStatusIssued,
		}
		if err := tx.Create(receipt).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&donation).Update("receipt_issued", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
