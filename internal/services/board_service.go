package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/models"
)

// Statutory board composition limits.
const (
	minDirectors = 5
	maxDirectors = 15
	minAuditors  = 2
)

var directorRoles = []string{models.BoardRoleDirector, models.BoardRoleCEO}

// boardService evaluates board composition against statutory limits.
type boardService struct {
	db *gorm.DB
}

// NewBoardService creates a new BoardServicer.
func NewBoardService(db *gorm.DB) BoardServicer {
	return &boardService{db: db}
}

// AddMember registers a board member.
func (s *boardService) AddMember(
	name, role, occupation string,
	termStart, termEnd time.Time,
	isForeigner bool,
	specialRelationTo *string,
) (*models.BoardMember, error) {
	if name == "" || role == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and role are required")
	}
	if termEnd.Before(termStart) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "term end must not precede term start")
	}

	member := &models.BoardMember{
		Name:              name,
		Role:              role,
		Occupation:        occupation,
		TermStart:         termStart,
		TermEnd:           termEnd,
		IsForeigner:       isForeigner,
		SpecialRelationTo: specialRelationTo,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// EvaluateComposition checks director and auditor headcounts and the
// special-relation and foreigner ratios, returning the stats alongside any
// findings.
func (s *boardService) EvaluateComposition() (*BoardStats, []ComplianceIssue, error) {
	stats := &BoardStats{}

	if err := s.db.Model(&models.BoardMember{}).
		Where("role IN ?", directorRoles).
		Count(&stats.DirectorCount).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.BoardMember{}).
		Where("role = ?", models.BoardRoleAuditor).
		Count(&stats.AuditorCount).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.BoardMember{}).
		Where("role IN ?", directorRoles).
		Where("special_relation_to IS NOT NULL").
		Count(&stats.SpecialRelationCount).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.BoardMember{}).
		Where("role IN ?", directorRoles).
		Where("is_foreigner = ?", true).
		Count(&stats.ForeignDirectorCount).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var issues []ComplianceIssue
	if stats.DirectorCount < minDirectors {
		issues = append(issues, ComplianceIssue{Level: "ERROR", Message: "Board has fewer than the minimum of 5 directors"})
	}
	if stats.DirectorCount > maxDirectors {
		issues = append(issues, ComplianceIssue{Level: "ERROR", Message: "Board exceeds the maximum of 15 directors"})
	}
	if stats.AuditorCount < minAuditors {
		issues = append(issues, ComplianceIssue{Level: "ERROR", Message: "Board has fewer than the minimum of 2 auditors"})
	}
	if stats.DirectorCount > 0 {
		// Ratios are statutory: special-relation directors above 1/5,
		// foreign directors above 1/2.
		if stats.SpecialRelationCount*5 > stats.DirectorCount {
			issues = append(issues, ComplianceIssue{Level: "WARNING", Message: "Special-relation directors exceed one fifth of the board"})
		}
		if stats.ForeignDirectorCount*2 > stats.DirectorCount {
			issues = append(issues, ComplianceIssue{Level: "ERROR", Message: "Foreign directors exceed one half of the board"})
		}
	}

	return stats, issues, nil
}
