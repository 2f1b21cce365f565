package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// DonationHandler handles donation and receipt requests.
type DonationHandler struct {
	donationService services.DonationServicer
	auditService    services.AuditServicer
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donationService services.DonationServicer, auditService services.AuditServicer) *DonationHandler {
	return &DonationHandler{donationService: donationService, auditService: auditService}
}

// CreateDonationRequest represents the request payload for recording a
// donation.
type CreateDonationRequest struct {
	DonorID       string          `json:"donor_id" binding:"required,uuid"`
	ProjectID     string          `json:"project_id" binding:"required,uuid"`
	DonatedAt     time.Time       `json:"donated_at" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Purpose       string          `json:"purpose" binding:"omitempty,max=500"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
}

// CreateDonation records a donation.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	donation, err := h.donationService.CreateDonation(
		req.DonorID, req.ProjectID, req.DonatedAt, req.Amount, req.Purpose, req.PaymentMethod,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "CREATE_DONATION", "donation", donation.ID, c.ClientIP(),
		map[string]interface{}{"project_id": req.ProjectID, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"donation": donation})
}

// GetDonation retrieves a donation by ID.
func (h *DonationHandler) GetDonation(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	donationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	donation, err := h.donationService.GetDonationByID(donationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

// ListDonations lists donations, optionally filtered by project.
func (h *DonationHandler) ListDonations(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.donationService.ListDonations(c.Query("project_id"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// IssueReceipt issues the receipt for a donation.
func (h *DonationHandler) IssueReceipt(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	donationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	receipt, err := h.donationService.IssueReceipt(donationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "ISSUE_RECEIPT", "donation_receipt", receipt.ID, c.ClientIP(),
		map[string]interface{}{"receipt_no": receipt.ReceiptNo})

	c.JSON(http.StatusCreated, gin.H{"receipt": receipt})
}
