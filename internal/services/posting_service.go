package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/config"
	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
)

// postingService orchestrates one posting attempt: head creation, allocation
// fan-out, budget gating, and the all-or-nothing commit of the expanded lines.
type postingService struct {
	db           *gorm.DB
	auditService AuditServicer
}

// NewPostingService creates a new PostingServicer.
func NewPostingService(db *gorm.DB, auditService AuditServicer) PostingServicer {
	return &postingService{db: db, auditService: auditService}
}

// expandedLine is one persisted-to-be line plus the allocation bookkeeping
// needed to record where it came from.
type expandedLine struct {
	line      models.TransactionLine
	sourceIdx int
	ruleID    string
}

// overrideEvent is one exercised budget override, held until the posting
// transaction commits. Audit rows are written afterwards on a separate
// connection, so a rolled-back posting leaves none and the write never
// contends with the posting transaction's locks.
type overrideEvent struct {
	projectID string
	amount    decimal.Decimal
	remaining decimal.Decimal
}

// Post runs the posting state machine inside one database transaction. On
// any failure before commit nothing durable remains; BudgetExceeded is the
// only expected business failure.
func (s *postingService) Post(
	head HeadInput,
	lines []LineInput,
	actorRole string,
	overrideRequested bool,
) (*models.TransactionHead, error) {
	if head.TxDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}
	if head.CreatedBy == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "created_by is required")
	}
	if len(lines) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one line is required")
	}
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return nil, err
		}
	}

	cfg := config.Get()
	if cfg.RequireBalancedHeads {
		if err := checkBalanced(lines); err != nil {
			return nil, err
		}
	}

	status := head.Status
	if status == "" {
		status = models.HeadStatusDraft
	}

	result := &models.TransactionHead{
		TxDate:      head.TxDate,
		Description: head.Description,
		Status:      status,
		CreatedBy:   head.CreatedBy,
	}

	var overrides []overrideEvent
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1) Persist the head; this assigns its identity.
		if err := tx.Create(result).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// 2) Expand common-expense lines through the allocation engine.
		expanded, err := s.expandLines(tx, result, lines)
		if err != nil {
			return err
		}

		// 3) Gate every expanded debit line against its project's budget.
		reservation := newBudgetReservation()
		fiscalYear := result.TxDate.Year()
		for _, el := range expanded {
			amount := el.line.DebitAmount
			if !amount.IsPositive() {
				continue
			}
			key := budgetKey{projectID: el.line.ProjectID, fiscalYear: fiscalYear}
			outcome, err := reservation.reserve(tx, key, amount, actorRole, overrideRequested, cfg.ElevatedRole)
			if err != nil {
				return err
			}
			if outcome.overrode {
				overrides = append(overrides, overrideEvent{
					projectID: el.line.ProjectID,
					amount:    amount,
					remaining: outcome.remaining,
				})
			}
		}

		// 4) Persist the expanded lines and their allocation trail.
		for i := range expanded {
			if err := tx.Create(&expanded[i].line).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := s.recordAllocations(tx, lines, expanded); err != nil {
			return err
		}

		// 5) Fold the reserved demand into the budget running totals.
		if err := reservation.commit(tx); err != nil {
			return err
		}

		for _, el := range expanded {
			result.Lines = append(result.Lines, el.line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ov := range overrides {
		s.auditService.LogBudgetOverride(result.CreatedBy, ov.projectID, ov.amount, ov.remaining)
	}
	return result, nil
}

// expandLines maps each proposed line to its expanded set: common-expense
// lines fan out per the resolved rule, everything else passes through.
func (s *postingService) expandLines(tx *gorm.DB, head *models.TransactionHead, lines []LineInput) ([]expandedLine, error) {
	var expanded []expandedLine
	for i, line := range lines {
		accountCode, err := getAccountCode(tx, line.AccountCodeID)
		if err != nil {
			return nil, err
		}
		if err := checkProjectExists(tx, line.ProjectID); err != nil {
			return nil, err
		}

		if !accountCode.IsCommonExpense {
			expanded = append(expanded, expandedLine{line: toLine(head.ID, line), sourceIdx: i})
			continue
		}

		rule, found, err := resolveRule(tx, line.ProjectID, head.TxDate)
		if err != nil {
			return nil, err
		}
		if !found || len(rule.Items) == 0 {
			// Fail open: no policy means a direct posting.
			expanded = append(expanded, expandedLine{line: toLine(head.ID, line), sourceIdx: i})
			continue
		}

		for _, out := range AllocateLine(line, rule.Items) {
			expanded = append(expanded, expandedLine{line: toLine(head.ID, out), sourceIdx: i, ruleID: rule.ID})
		}
	}
	return expanded, nil
}

// recordAllocations stores one AllocationResult per fanned-out line, keyed to
// the first persisted line of its source. The source common-expense line is
// not persisted itself, so the trail hangs off the head's line set.
func (s *postingService) recordAllocations(tx *gorm.DB, lines []LineInput, expanded []expandedLine) error {
	firstBySource := make(map[int]string)
	for _, el := range expanded {
		if _, ok := firstBySource[el.sourceIdx]; !ok {
			firstBySource[el.sourceIdx] = el.line.ID
		}
	}

	for _, el := range expanded {
		if el.ruleID == "" {
			continue
		}
		amount := el.line.DebitAmount
		if !amount.IsPositive() {
			amount = el.line.CreditAmount
		}
		result := &models.AllocationResult{
			SourceLineID:    firstBySource[el.sourceIdx],
			AllocatedLineID: el.line.ID,
			RuleID:          el.ruleID,
			AllocatedAmount: amount,
		}
		if err := tx.Create(result).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// GetHead returns a head with its persisted lines.
func (s *postingService) GetHead(headID string) (*models.TransactionHead, error) {
	var head models.TransactionHead
	if err := s.db.Preload("Lines").Where("id = ?", headID).First(&head).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHeadNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &head, nil
}

// Approve moves a draft head to APPROVED. Only approved heads feed reporting.
func (s *postingService) Approve(headID, approverID string) (*models.TransactionHead, error) {
	return s.transition(headID, approverID, models.HeadStatusApproved)
}

// Reject moves a draft head to REJECTED.
func (s *postingService) Reject(headID, approverID string) (*models.TransactionHead, error) {
	return s.transition(headID, approverID, models.HeadStatusRejected)
}

func (s *postingService) transition(headID, approverID string, to models.HeadStatus) (*models.TransactionHead, error) {
	if approverID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "approver is required")
	}

	head, err := s.GetHead(headID)
	if err != nil {
		return nil, err
	}
	if head.Status != models.HeadStatusDraft {
		return nil, apperrors.ErrInvalidStatus
	}

	updates := map[string]interface{}{
		"status":      to,
		"approved_by": approverID,
	}
	if err := s.db.Model(head).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	head.Status = to
	head.ApprovedBy = &approverID
	return head, nil
}

// checkBalanced enforces the optional balanced-head precondition: debit and
// credit totals over the proposed lines must match.
func checkBalanced(lines []LineInput) error {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}
	if !totalDebit.Equal(totalCredit) {
		return apperrors.ErrUnbalancedHead
	}
	return nil
}

func toLine(headID string, line LineInput) models.TransactionLine {
	return models.TransactionLine{
		HeadID:        headID,
		ProjectID:     line.ProjectID,
		AccountCodeID: line.AccountCodeID,
		DebitAmount:   line.DebitAmount,
		CreditAmount:  line.CreditAmount,
		EvidenceURL:   line.EvidenceURL,
	}
}

func getAccountCode(tx *gorm.DB, accountCodeID string) (*models.AccountCode, error) {
	var accountCode models.AccountCode
	if err := tx.Where("id = ?", accountCodeID).First(&accountCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountCodeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &accountCode, nil
}

func checkProjectExists(tx *gorm.DB, projectID string) error {
	var count int64
	if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}
