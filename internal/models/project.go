package models

import "time"

// ProjectType distinguishes publicly funded projects from commercial ones.
// The type decides which reports and reserve rules apply.
type ProjectType string

const (
	ProjectTypePublic ProjectType = "Public"
	ProjectTypeProfit ProjectType = "Profit"
)

// Project is one organizational project postings are booked against.
type Project struct {
	Base
	Code      string      `gorm:"uniqueIndex;not null" json:"code"`
	Name      string      `gorm:"not null" json:"name"`
	Type      ProjectType `gorm:"type:varchar(10);not null" json:"type"`
	StartDate *time.Time  `json:"start_date,omitempty"`
	EndDate   *time.Time  `json:"end_date,omitempty"`
	IsActive  bool        `gorm:"not null;default:true" json:"is_active"`
}
