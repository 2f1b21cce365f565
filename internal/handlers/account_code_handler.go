package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// AccountCodeHandler handles chart-of-accounts requests.
type AccountCodeHandler struct {
	accountCodeService services.AccountCodeServicer
	auditService       services.AuditServicer
}

// NewAccountCodeHandler creates a new AccountCodeHandler.
func NewAccountCodeHandler(accountCodeService services.AccountCodeServicer, auditService services.AuditServicer) *AccountCodeHandler {
	return &AccountCodeHandler{accountCodeService: accountCodeService, auditService: auditService}
}

// CreateAccountCodeRequest represents the request payload for creating an
// account code.
type CreateAccountCodeRequest struct {
	Level1          models.AccountClass `json:"level1" binding:"required,account_class"`
	Level2          string              `json:"level2" binding:"required,min=1,max=100"`
	Level3          string              `json:"level3" binding:"omitempty,max=100"`
	Code            string              `json:"code" binding:"required,min=1,max=20"`
	IsCommonExpense bool                `json:"is_common_expense"`
}

// CreateAccountCode creates a new account code.
func (h *AccountCodeHandler) CreateAccountCode(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	code, err := h.accountCodeService.CreateAccountCode(req.Level1, req.Level2, req.Level3, req.Code, req.IsCommonExpense)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "CREATE_ACCOUNT_CODE", "account_code", code.ID, c.ClientIP(),
		map[string]interface{}{"code": req.Code, "level1": req.Level1})

	c.JSON(http.StatusCreated, gin.H{"account_code": code})
}

// GetAccountCode retrieves an account code by ID.
func (h *AccountCodeHandler) GetAccountCode(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	codeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	code, err := h.accountCodeService.GetAccountCodeByID(codeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_code": code})
}

// ListAccountCodes lists the chart of accounts.
func (h *AccountCodeHandler) ListAccountCodes(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.accountCodeService.ListAccountCodes(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
