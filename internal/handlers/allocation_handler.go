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

// AllocationHandler handles allocation rule requests.
type AllocationHandler struct {
	allocationService services.AllocationServicer
	auditService      services.AuditServicer
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(allocationService services.AllocationServicer, auditService services.AuditServicer) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService, auditService: auditService}
}

// RuleItemRequest is one weighted target in a rule creation request.
type RuleItemRequest struct {
	TargetProjectID string          `json:"target_project_id" binding:"required,uuid"`
	Ratio           decimal.Decimal `json:"ratio" binding:"required"`
}

// CreateRuleRequest represents the request payload for creating an
// allocation rule.
type CreateRuleRequest struct {
	Name          string            `json:"name" binding:"required,min=1,max=200"`
	BasisType     string            `json:"basis_type" binding:"required"`
	BasisValue    decimal.Decimal   `json:"basis_value"`
	ProjectID     string            `json:"project_id" binding:"required,uuid"`
	EffectiveFrom time.Time         `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time        `json:"effective_to"`
	Items         []RuleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PreviewRequest represents the request payload for previewing an allocation
// without posting.
type PreviewRequest struct {
	ProjectID     string          `json:"project_id" binding:"required,uuid"`
	AccountCodeID string          `json:"account_code_id" binding:"required,uuid"`
	OnDate        time.Time       `json:"on_date" binding:"required"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
}

// CreateRule creates an allocation rule with its weighted targets.
func (h *AllocationHandler) CreateRule(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items := make([]services.RuleItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = services.RuleItemInput{
			TargetProjectID: item.TargetProjectID,
			Ratio:           item.Ratio,
		}
	}

	rule, err := h.allocationService.CreateRule(
		req.Name, req.BasisType, req.BasisValue, req.ProjectID, req.EffectiveFrom, req.EffectiveTo, items,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "CREATE_ALLOCATION_RULE", "allocation_rule", rule.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "project_id": req.ProjectID, "items": len(req.Items)})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetRule retrieves an allocation rule with its items.
func (h *AllocationHandler) GetRule(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.allocationService.GetRule(ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// ListRules lists allocation rules, optionally filtered by source project.
func (h *AllocationHandler) ListRules(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.allocationService.ListRules(c.Query("project_id"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Preview computes the allocation fan-out for a hypothetical line without
// touching the ledger.
func (h *AllocationHandler) Preview(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	lines, err := h.allocationService.Preview(req.ProjectID, req.OnDate, services.LineInput{
		ProjectID:     req.ProjectID,
		AccountCodeID: req.AccountCodeID,
		DebitAmount:   req.DebitAmount,
		CreditAmount:  req.CreditAmount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}
