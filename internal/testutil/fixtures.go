package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/models"
	"fundledger/internal/uuid"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// ActorID returns a fresh actor UUID for use as created_by/approved_by.
func ActorID() string {
	return uuid.New()
}

// Date builds a UTC date, the form transaction and effective dates take.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Money parses a decimal amount string, failing the test on bad input.
func Money(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("invalid money fixture %q: %v", value, err)
	}
	return d
}

// CreateTestProject creates a project of the given type with a unique code.
func CreateTestProject(t *testing.T, db *gorm.DB, projectType models.ProjectType) *models.Project {
	t.Helper()

	project := &models.Project{
		Code:     fmt.Sprintf("PRJ-%03d", nextID()),
		Name:     fmt.Sprintf("Test Project %d", nextID()),
		Type:     projectType,
		IsActive: true,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTestAccountCode creates an account code of the given class.
func CreateTestAccountCode(t *testing.T, db *gorm.DB, level1 models.AccountClass, isCommonExpense bool) *models.AccountCode {
	t.Helper()

	code := &models.AccountCode{
		Level1:          level1,
		Level2:          fmt.Sprintf("Group %d", nextID()),
		Level3:          fmt.Sprintf("Detail %d", nextID()),
		Code:            fmt.Sprintf("AC-%04d", nextID()),
		IsCommonExpense: isCommonExpense,
		IsActive:        true,
	}
	if err := db.Create(code).Error; err != nil {
		t.Fatalf("failed to create test account code: %v", err)
	}
	return code
}

// CreateTestBudget creates a budget row for the project and fiscal year.
func CreateTestBudget(t *testing.T, db *gorm.DB, projectID string, fiscalYear int, totalBudget, totalSpent string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		ProjectID:   projectID,
		FiscalYear:  fiscalYear,
		TotalBudget: Money(t, totalBudget),
		TotalSpent:  Money(t, totalSpent),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestRule creates an allocation rule with the given target ratios,
// in item order.
func CreateTestRule(t *testing.T, db *gorm.DB, projectID string, effectiveFrom time.Time, targets []string, ratios []string) *models.AllocationRule {
	t.Helper()

	if len(targets) != len(ratios) {
		t.Fatalf("targets and ratios must have the same length")
	}

	rule := &models.AllocationRule{
		Name:          fmt.Sprintf("Test Rule %d", nextID()),
		BasisType:     "fixed_ratio",
		BasisValue:    decimal.Zero,
		ProjectID:     projectID,
		EffectiveFrom: effectiveFrom,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}

	for i := range targets {
		item := &models.AllocationRuleItem{
			RuleID:          rule.ID,
			TargetProjectID: targets[i],
			Ratio:           Money(t, ratios[i]),
			Position:        i,
		}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("failed to create test rule item: %v", err)
		}
		rule.Items = append(rule.Items, *item)
	}
	return rule
}

// CreateTestBoardMember creates a board member with the given role.
func CreateTestBoardMember(t *testing.T, db *gorm.DB, role string, isForeigner bool, specialRelationTo *string) *models.BoardMember {
	t.Helper()

	member := &models.BoardMember{
		Name:              fmt.Sprintf("Member %d", nextID()),
		Role:              role,
		Occupation:        "Professional",
		TermStart:         Date(2024, time.January, 1),
		TermEnd:           Date(2027, time.December, 31),
		IsForeigner:       isForeigner,
		SpecialRelationTo: specialRelationTo,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test board member: %v", err)
	}
	return member
}

// CreateTestDonation creates a donation against a project.
func CreateTestDonation(t *testing.T, db *gorm.DB, projectID string, amount string) *models.Donation {
	t.Helper()

	donation := &models.Donation{
		DonorID:       uuid.New(),
		ProjectID:     projectID,
		DonatedAt:     Date(2025, time.March, 10),
		Amount:        Money(t, amount),
		PaymentMethod: "bank_transfer",
	}
	if err := db.Create(donation).Error; err != nil {
		t.Fatalf("failed to create test donation: %v", err)
	}
	return donation
}
