package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/services"
)

// PostingHandler handles transaction posting and lifecycle requests.
type PostingHandler struct {
	postingService services.PostingServicer
	auditService   services.AuditServicer
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingService services.PostingServicer, auditService services.AuditServicer) *PostingHandler {
	return &PostingHandler{postingService: postingService, auditService: auditService}
}

// LineRequest is one proposed ledger line in a posting request.
type LineRequest struct {
	ProjectID     string          `json:"project_id" binding:"required,uuid"`
	AccountCodeID string          `json:"account_code_id" binding:"required,uuid"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	EvidenceURL   string          `json:"evidence_url" binding:"omitempty,url"`
}

// CreateTransactionRequest represents the request payload for posting a
// transaction.
type CreateTransactionRequest struct {
	TxDate      time.Time     `json:"tx_date" binding:"required"`
	Description string        `json:"description" binding:"omitempty,max=500"`
	Lines       []LineRequest `json:"lines" binding:"required,min=1,dive"`
	Override    bool          `json:"override"`
}

// CreateTransaction posts a new transaction head with its lines.
func (h *PostingHandler) CreateTransaction(c *gin.Context) {
	actorID, role, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	lines := make([]services.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = services.LineInput{
			ProjectID:     line.ProjectID,
			AccountCodeID: line.AccountCodeID,
			DebitAmount:   line.DebitAmount,
			CreditAmount:  line.CreditAmount,
			EvidenceURL:   line.EvidenceURL,
		}
	}

	head, err := h.postingService.Post(services.HeadInput{
		TxDate:      req.TxDate,
		Description: req.Description,
		CreatedBy:   actorID,
	}, lines, role, req.Override)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "CREATE_TRANSACTION", "transaction", head.ID, c.ClientIP(),
		map[string]interface{}{"tx_date": req.TxDate, "lines": len(head.Lines), "override": req.Override})

	c.JSON(http.StatusCreated, gin.H{"transaction": head})
}

// GetTransaction retrieves a transaction head with its lines.
func (h *PostingHandler) GetTransaction(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	headID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	head, err := h.postingService.GetHead(headID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": head})
}

// ApproveTransaction moves a draft transaction to APPROVED.
func (h *PostingHandler) ApproveTransaction(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	headID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	head, err := h.postingService.Approve(headID, actorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "APPROVE_TRANSACTION", "transaction", head.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": head})
}

// RejectTransaction moves a draft transaction to REJECTED.
func (h *PostingHandler) RejectTransaction(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	headID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	head, err := h.postingService.Reject(headID, actorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "REJECT_TRANSACTION", "transaction", head.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": head})
}
