package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundledger/internal/models"
	"fundledger/internal/testutil"
)

// postApproved posts a head and approves it so it becomes visible to reports.
func postApproved(t *testing.T, db *gorm.DB, svc PostingServicer, txDate time.Time, lines []LineInput) {
	t.Helper()

	committed, err := svc.Post(HeadInput{
		TxDate:    txDate,
		CreatedBy: testutil.ActorID(),
	}, lines, "staff", false)
	testutil.AssertNoError(t, err)
	_, err = svc.Approve(committed.ID, testutil.ActorID())
	testutil.AssertNoError(t, err)
}

func TestFinancialStatements(t *testing.T) {
	start := testutil.Date(2025, time.January, 1)
	end := testutil.Date(2025, time.December, 31)

	t.Run("groups_by_project_type_and_class", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		posting := NewPostingService(db, NewAuditService(db))
		reporting := NewReportingService(db)

		public := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		profit := testutil.CreateTestProject(t, db, models.ProjectTypeProfit)
		cash := testutil.CreateTestAccountCode(t, db, models.AccountClassAsset, false)
		revenue := testutil.CreateTestAccountCode(t, db, models.AccountClassRevenue, false)
		expense := testutil.CreateTestAccountCode(t, db, models.AccountClassExpense, false)

		postApproved(t, db, posting, testutil.Date(2025, time.March, 1), []LineInput{
			{ProjectID: public.ID, AccountCodeID: cash.ID, DebitAmount: testutil.Money(t, "500.00")},
			{ProjectID: public.ID, AccountCodeID: revenue.ID, CreditAmount: testutil.Money(t, "500.00")},
		})
		postApproved(t, db, posting, testutil.Date(2025, time.June, 1), []LineInput{
			{ProjectID: profit.ID, AccountCodeID: expense.ID, DebitAmount: testutil.Money(t, "120.50")},
			{ProjectID: profit.ID, AccountCodeID: cash.ID, CreditAmount: testutil.Money(t, "120.50")},
		})

		statements, err := reporting.FinancialStatements(start, end)
		testutil.AssertNoError(t, err)

		publicBS := statements.BalanceSheet[models.ProjectTypePublic]
		if len(publicBS) != 1 {
			t.Fatalf("expected 1 balance sheet row for public, got %d", len(publicBS))
		}
		if publicBS[0].Level1 != models.AccountClassAsset {
			t.Errorf("expected asset row, got %s", publicBS[0].Level1)
		}
		testutil.AssertDecimalEqual(t, publicBS[0].Amount, "500.00")

		profitBS := statements.BalanceSheet[models.ProjectTypeProfit]
		if len(profitBS) != 1 {
			t.Fatalf("expected 1 balance sheet row for profit, got %d", len(profitBS))
		}
		testutil.AssertDecimalEqual(t, profitBS[0].Amount, "-120.50")

		publicOS := statements.OperatingStatement[models.ProjectTypePublic]
		if len(publicOS) != 1 {
			t.Fatalf("expected 1 operating row for public, got %d", len(publicOS))
		}
		if publicOS[0].Level1 != models.AccountClassRevenue {
			t.Errorf("expected revenue row, got %s", publicOS[0].Level1)
		}
		testutil.AssertDecimalEqual(t, publicOS[0].Amount, "500.00")

		profitOS := statements.OperatingStatement[models.ProjectTypeProfit]
		if len(profitOS) != 1 {
			t.Fatalf("expected 1 operating row for profit, got %d", len(profitOS))
		}
		// Operating statement is credit minus debit, so an expense shows negative.
		testutil.AssertDecimalEqual(t, profitOS[0].Amount, "-120.50")
	})

	t.Run("draft_heads_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		posting := NewPostingService(db, NewAuditService(db))
		reporting := NewReportingService(db)

		public := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		revenue := testutil.CreateTestAccountCode(t, db, models.AccountClassRevenue, false)

		_, err := posting.Post(HeadInput{
			TxDate:    testutil.Date(2025, time.March, 1),
			CreatedBy: testutil.ActorID(),
		}, []LineInput{
			{ProjectID: public.ID, AccountCodeID: revenue.ID, CreditAmount: testutil.Money(t, "100.00")},
		}, "staff", false)
		testutil.AssertNoError(t, err)

		statements, err := reporting.FinancialStatements(start, end)
		testutil.AssertNoError(t, err)
		if len(statements.OperatingStatement) != 0 {
			t.Errorf("expected no operating rows from a draft head, got %d project types", len(statements.OperatingStatement))
		}
	})

	t.Run("date_range_bounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		posting := NewPostingService(db, NewAuditService(db))
		reporting := NewReportingService(db)

		public := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		revenue := testutil.CreateTestAccountCode(t, db, models.AccountClassRevenue, false)

		postApproved(t, db, posting, testutil.Date(2024, time.December, 31), []LineInput{
			{ProjectID: public.ID, AccountCodeID: revenue.ID, CreditAmount: testutil.Money(t, "100.00")},
		})
		postApproved(t, db, posting, testutil.Date(2025, time.January, 1), []LineInput{
			{ProjectID: public.ID, AccountCodeID: revenue.ID, CreditAmount: testutil.Money(t, "25.25")},
		})

		statements, err := reporting.FinancialStatements(start, end)
		testutil.AssertNoError(t, err)

		rows := statements.OperatingStatement[models.ProjectTypePublic]
		if len(rows) != 1 {
			t.Fatalf("expected only the in-range posting, got %d rows", len(rows))
		}
		testutil.AssertDecimalEqual(t, rows[0].Amount, "25.25")
	})

	t.Run("empty_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		reporting := NewReportingService(db)

		statements, err := reporting.FinancialStatements(start, end)
		testutil.AssertNoError(t, err)
		if len(statements.BalanceSheet) != 0 || len(statements.OperatingStatement) != 0 {
			t.Error("expected empty statements with no postings")
		}
	})
}

func TestReserveSimulation(t *testing.T) {
	start := testutil.Date(2025, time.January, 1)
	end := testutil.Date(2025, time.December, 31)

	t.Run("profit_and_penalty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		posting := NewPostingService(db, NewAuditService(db))
		reporting := NewReportingService(db)

		profit := testutil.CreateTestProject(t, db, models.ProjectTypeProfit)
		public := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		revenue := testutil.CreateTestAccountCode(t, db, models.AccountClassRevenue, false)
		expense := testutil.CreateTestAccountCode(t, db, models.AccountClassExpense, false)

		postApproved(t, db, posting, testutil.Date(2025, time.March, 1), []LineInput{
			{ProjectID: profit.ID, AccountCodeID: revenue.ID, CreditAmount: testutil.Money(t, "1000.00")},
			{ProjectID: profit.ID, AccountCodeID: expense.ID, DebitAmount: testutil.Money(t, "200.00")},
		})
		// Public project activity must not count toward commercial profit.
		postApproved(t, db, posting, testutil.Date(2025, time.April, 1), []LineInput{
			{ProjectID: public.ID, AccountCodeID: revenue.ID, CreditAmount: testutil.Money(t, "9000.00")},
		})

		sim, err := reporting.ReserveSimulation(start, end,
			testutil.Money(t, "0.5"), testutil.Money(t, "0.1"), testutil.Money(t, "300.00"))
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, sim.Profit, "800.00")
		testutil.AssertDecimalEqual(t, sim.MaxReserve, "400.00")
		testutil.AssertDecimalEqual(t, sim.ExpectedPenalty, "30.00")
	})

	t.Run("no_commercial_activity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		reporting := NewReportingService(db)

		sim, err := reporting.ReserveSimulation(start, end,
			testutil.Money(t, "0.5"), testutil.Money(t, "0.1"), decimal.Zero)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, sim.Profit, "0")
		testutil.AssertDecimalEqual(t, sim.MaxReserve, "0")
		testutil.AssertDecimalEqual(t, sim.ExpectedPenalty, "0")
	})
}

func TestPublicSpendingCompliance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	reporting := NewReportingService(db)

	t.Run("passes_at_exact_floor", func(t *testing.T) {
		result := reporting.PublicSpendingCompliance(testutil.Money(t, "1000.00"), testutil.Money(t, "800.00"))
		if result.Status != "PASS" {
			t.Errorf("expected PASS at the exact floor, got %s", result.Status)
		}
		testutil.AssertDecimalEqual(t, result.RequiredAmount, "800.00")
	})

	t.Run("fails_one_cent_short", func(t *testing.T) {
		result := reporting.PublicSpendingCompliance(testutil.Money(t, "1000.00"), testutil.Money(t, "799.99"))
		if result.Status != "FAIL" {
			t.Errorf("expected FAIL below the floor, got %s", result.Status)
		}
	})

	t.Run("zero_revenue_passes", func(t *testing.T) {
		result := reporting.PublicSpendingCompliance(decimal.Zero, decimal.Zero)
		if result.Status != "PASS" {
			t.Errorf("expected PASS with zero revenue, got %s", result.Status)
		}
	})
}
