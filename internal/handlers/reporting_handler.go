package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/services"
)

// ReportingHandler handles read-only reporting requests.
type ReportingHandler struct {
	reportingService services.ReportingServicer
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingService services.ReportingServicer) *ReportingHandler {
	return &ReportingHandler{reportingService: reportingService}
}

// ReserveSimulationRequest represents the request payload for the reserve
// simulation.
type ReserveSimulationRequest struct {
	Start        time.Time       `json:"start" binding:"required"`
	End          time.Time       `json:"end" binding:"required"`
	LimitRate    decimal.Decimal `json:"limit_rate" binding:"required"`
	PenaltyRate  decimal.Decimal `json:"penalty_rate" binding:"required"`
	UnusedAmount decimal.Decimal `json:"unused_amount"`
}

// ComplianceRequest represents the request payload for the public spending
// check.
type ComplianceRequest struct {
	PrevYearRevenue    decimal.Decimal `json:"prev_year_revenue" binding:"required"`
	CurrentPublicSpend decimal.Decimal `json:"current_public_spend"`
}

// parseDateRange reads start and end query parameters in RFC 3339 date form.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "start must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "end must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "end must not precede start")
	}
	return start, end, nil
}

// GetFinancialStatements builds the balance sheet and operating statement
// for a date range.
func (h *ReportingHandler) GetFinancialStatements(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statements, err := h.reportingService.FinancialStatements(start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, statements)
}

// SimulateReserve runs the statutory reserve calculation.
func (h *ReportingHandler) SimulateReserve(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req ReserveSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sim, err := h.reportingService.ReserveSimulation(req.Start, req.End, req.LimitRate, req.PenaltyRate, req.UnusedAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sim)
}

// CheckPublicSpending evaluates the public spending floor.
func (h *ReportingHandler) CheckPublicSpending(c *gin.Context) {
	if _, _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req ComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.reportingService.PublicSpendingCompliance(req.PrevYearRevenue, req.CurrentPublicSpend))
}
