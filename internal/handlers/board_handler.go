package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/services"
)

// BoardHandler handles board membership and composition requests.
type BoardHandler struct {
	boardService services.BoardServicer
	auditService services.AuditServicer
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService services.BoardServicer, auditService services.AuditServicer) *BoardHandler {
	return &BoardHandler{boardService: boardService, auditService: auditService}
}

// AddBoardMemberRequest represents the request payload for registering a
// board member.
type AddBoardMemberRequest struct {
	Name              string    `json:"name" binding:"required,min=1,max=100"`
	Role              string    `json:"role" binding:"required"`
	Occupation        string    `json:"occupation" binding:"omitempty,max=100"`
	TermStart         time.Time `json:"term_start" binding:"required"`
	TermEnd           time.Time `json:"term_end" binding:"required"`
	IsForeigner       bool      `json:"is_foreigner"`
	SpecialRelationTo *string   `json:"special_relation_to" binding:"omitempty,uuid"`
}

// AddMember registers a board member.
func (h *BoardHandler) AddMember(c *gin.Context) {
	actorID, _, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddBoardMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.boardService.AddMember(
		req.Name, req.Role, req.Occupation, req.TermStart, req.TermEnd, req.IsForeigner, req.SpecialRelationTo,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "ADD_BOARD_MEMBER", "board_member", member.ID, c.ClientIP(),
		map[string]interface{}{"role": req.Role})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// GetComposition evaluates the board composition against statutory limits.
func (h *BoardHandler) GetComposition(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	stats, issues, err := h.boardService.EvaluateComposition()
	if err != nil {
		respondWithError(c, err)
		return
	}

	if issues == nil {
		issues = []services.ComplianceIssue{}
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "issues": issues})
}
