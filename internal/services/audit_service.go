package services

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/logger"
	"fundledger/internal/models"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(actorID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"actor_id", actorID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// LogBudgetOverride records an exercised budget override bypass. The posting
// engine must call this whenever a failed capacity check is passed through
// the elevated-role override.
func (s *auditService) LogBudgetOverride(actorID, projectID string, amount, remaining decimal.Decimal) {
	logger.Get().Warnw("budget override exercised",
		"actor_id", actorID,
		"project_id", projectID,
		"amount", amount.String(),
		"remaining", remaining.String(),
	)
	s.Log(actorID, "BUDGET_OVERRIDE", "budget", projectID, "", map[string]interface{}{
		"amount":    amount.String(),
		"remaining": remaining.String(),
	})
}
