package models

// AuditLog records a mutating action against a ledger resource, including
// budget override bypasses which must always leave a trace.
type AuditLog struct {
	Base
	ActorID      string `gorm:"type:uuid;not null" json:"actor_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address,omitempty"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
