package models

import "time"

// Board roles recognized by the composition checks.
const (
	BoardRoleDirector = "director"
	BoardRoleCEO      = "ceo"
	BoardRoleAuditor  = "auditor"
)

// BoardMember is one member of the organization's board. Only the fields the
// composition checks need are modeled here; personally identifying details
// live behind an external encryption service.
type BoardMember struct {
	Base
	Name              string    `gorm:"not null" json:"name"`
	Role              string    `gorm:"not null" json:"role"`
	Occupation        string    `json:"occupation,omitempty"`
	TermStart         time.Time `gorm:"not null" json:"term_start"`
	TermEnd           time.Time `gorm:"not null" json:"term_end"`
	IsForeigner       bool      `gorm:"not null;default:false" json:"is_foreigner"`
	SpecialRelationTo *string   `gorm:"type:uuid" json:"special_relation_to,omitempty"`
}
