package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// BudgetHandler handles budget requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	ProjectID   string          `json:"project_id" binding:"required,uuid"`
	FiscalYear  int             `json:"fiscal_year" binding:"required,min=2000,max=2100"`
	TotalBudget decimal.Decimal `json:"total_budget" binding:"required"`
}

// CheckCapacityRequest represents the request payload for a read-only
// capacity check.
type CheckCapacityRequest struct {
	ProjectID  string          `json:"project_id" binding:"required,uuid"`
	FiscalYear int             `json:"fiscal_year" binding:"required,min=2000,max=2100"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// CreateBudget creates a budget for a project and fiscal year.
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(req.ProjectID, req.FiscalYear, req.TotalBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"project_id": req.ProjectID, "fiscal_year": req.FiscalYear})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudget retrieves the budget for a project and fiscal year.
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	fiscalYear, err := strconv.Atoi(c.Query("fiscal_year"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "fiscal_year must be an integer"))
		return
	}

	projectID, err := parsePathID(c, "projectId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudget(projectID, fiscalYear)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// ListBudgets lists budgets, optionally filtered by fiscal year.
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fiscalYear := 0
	if v := c.Query("fiscal_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "fiscal_year must be an integer"))
			return
		}
		fiscalYear = year
	}

	result, err := h.budgetService.ListBudgets(fiscalYear, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckCapacity reports whether a project could absorb the given spend
// without mutating anything.
func (h *BudgetHandler) CheckCapacity(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.CheckCapacity(req.ProjectID, req.FiscalYear, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
