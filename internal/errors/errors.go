// Package errors provides custom error types for the fundledger API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
	Detail     any    `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// BudgetExceededDetail identifies the budget that rejected a posting.
type BudgetExceededDetail struct {
	ProjectID string          `json:"project_id"`
	Remaining decimal.Decimal `json:"remaining"`
	Amount    decimal.Decimal `json:"amount"`
}

// BudgetExceeded creates the business failure returned when a posting's
// demand does not fit the remaining budget capacity and no valid override
// was supplied.
func BudgetExceeded(projectID string, remaining, amount decimal.Decimal) *AppError {
	return &AppError{
		Code:       ErrBudgetExceeded.Code,
		Message:    ErrBudgetExceeded.Message,
		StatusCode: ErrBudgetExceeded.StatusCode,
		Detail:     BudgetExceededDetail{ProjectID: projectID, Remaining: remaining, Amount: amount},
	}
}

// General errors.
var (
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden      = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Reference data errors.
var (
	ErrProjectNotFound     = &AppError{Code: "PROJECT_NOT_FOUND", Message: "Project not found", StatusCode: http.StatusNotFound}
	ErrAccountCodeNotFound = &AppError{Code: "ACCOUNT_CODE_NOT_FOUND", Message: "Account code not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCode       = &AppError{Code: "DUPLICATE_CODE", Message: "A record with this code already exists", StatusCode: http.StatusConflict}
	ErrRuleNotFound        = &AppError{Code: "RULE_NOT_FOUND", Message: "Allocation rule not found", StatusCode: http.StatusNotFound}
)

// Posting errors.
var (
	ErrBudgetExceeded  = &AppError{Code: "BUDGET_EXCEEDED", Message: "Budget capacity exceeded", StatusCode: http.StatusUnprocessableEntity}
	ErrHeadNotFound    = &AppError{Code: "HEAD_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidLine     = &AppError{Code: "INVALID_LINE", Message: "A line must carry exactly one positive side", StatusCode: http.StatusBadRequest}
	ErrUnbalancedHead  = &AppError{Code: "UNBALANCED_HEAD", Message: "Debit and credit totals do not balance", StatusCode: http.StatusBadRequest}
	ErrInvalidStatus   = &AppError{Code: "INVALID_STATUS", Message: "Transaction is not in a state that allows this operation", StatusCode: http.StatusConflict}
	ErrBudgetNotFound  = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBudget = &AppError{Code: "DUPLICATE_BUDGET", Message: "A budget for this project and fiscal year already exists", StatusCode: http.StatusConflict}
)

// Donation errors.
var (
	ErrDonationNotFound     = &AppError{Code: "DONATION_NOT_FOUND", Message: "Donation not found", StatusCode: http.StatusNotFound}
	ErrReceiptAlreadyIssued = &AppError{Code: "RECEIPT_ALREADY_ISSUED", Message: "A receipt has already been issued for this donation", StatusCode: http.StatusConflict}
)

// Board errors.
var (
	ErrMemberNotFound = &AppError{Code: "MEMBER_NOT_FOUND", Message: "Board member not found", StatusCode: http.StatusNotFound}
)
