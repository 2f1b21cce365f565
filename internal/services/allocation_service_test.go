package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/models"
	"fundledger/internal/testutil"
)

func items(t *testing.T, ratios ...string) []models.AllocationRuleItem {
	t.Helper()
	out := make([]models.AllocationRuleItem, len(ratios))
	for i, r := range ratios {
		out[i] = models.AllocationRuleItem{
			TargetProjectID: "project-" + string(rune('A'+i)),
			Ratio:           testutil.Money(t, r),
			Position:        i,
		}
	}
	return out
}

func debitLine(t *testing.T, amount string) LineInput {
	t.Helper()
	return LineInput{
		ProjectID:     "source-project",
		AccountCodeID: "common-account",
		DebitAmount:   testutil.Money(t, amount),
		EvidenceURL:   "https://evidence.example/receipt.pdf",
	}
}

func TestAllocateLine(t *testing.T) {
	t.Run("simple_split", func(t *testing.T) {
		out := AllocateLine(debitLine(t, "100.00"), items(t, "0.6", "0.4"))

		if len(out) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(out))
		}
		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "60.00")
		testutil.AssertDecimalEqual(t, out[1].DebitAmount, "40.00")
	})

	t.Run("no_items_returns_original", func(t *testing.T) {
		line := debitLine(t, "100.00")
		out := AllocateLine(line, nil)

		if len(out) != 1 {
			t.Fatalf("expected 1 line, got %d", len(out))
		}
		if out[0] != line {
			t.Errorf("expected original line back, got %+v", out[0])
		}
	})

	t.Run("exact_thirds_no_remainder", func(t *testing.T) {
		out := AllocateLine(debitLine(t, "10.00"), items(t, "0.33", "0.33", "0.34"))

		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "3.30")
		testutil.AssertDecimalEqual(t, out[1].DebitAmount, "3.30")
		testutil.AssertDecimalEqual(t, out[2].DebitAmount, "3.40")
	})

	t.Run("remainder_added_to_last", func(t *testing.T) {
		third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
		ruleItems := []models.AllocationRuleItem{
			{TargetProjectID: "p1", Ratio: third, Position: 0},
			{TargetProjectID: "p2", Ratio: third, Position: 1},
			{TargetProjectID: "p3", Ratio: third, Position: 2},
		}

		out := AllocateLine(debitLine(t, "10.00"), ruleItems)

		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "3.33")
		testutil.AssertDecimalEqual(t, out[1].DebitAmount, "3.33")
		testutil.AssertDecimalEqual(t, out[2].DebitAmount, "3.34")
	})

	t.Run("negative_remainder_subtracted_from_last", func(t *testing.T) {
		// 10.01 * 0.5 = 5.005 rounds half away from zero to 5.01 twice,
		// overshooting by 0.01.
		out := AllocateLine(debitLine(t, "10.01"), items(t, "0.5", "0.5"))

		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "5.01")
		testutil.AssertDecimalEqual(t, out[1].DebitAmount, "5.00")
	})

	t.Run("ratios_not_summing_to_one", func(t *testing.T) {
		out := AllocateLine(debitLine(t, "100.00"), items(t, "0.3", "0.3"))

		// Parts follow the supplied ratios; the remainder correction still
		// forces the expanded total back to the source amount.
		sum := decimal.Zero
		for _, l := range out {
			sum = sum.Add(l.DebitAmount)
		}
		testutil.AssertDecimalEqual(t, sum, "100.00")
		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "30.00")
		testutil.AssertDecimalEqual(t, out[1].DebitAmount, "70.00")
	})

	t.Run("single_item", func(t *testing.T) {
		out := AllocateLine(debitLine(t, "42.37"), items(t, "1"))

		if len(out) != 1 {
			t.Fatalf("expected 1 line, got %d", len(out))
		}
		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "42.37")
	})

	t.Run("credit_side_preserved", func(t *testing.T) {
		line := LineInput{
			ProjectID:     "source-project",
			AccountCodeID: "common-account",
			CreditAmount:  testutil.Money(t, "10.00"),
		}

		out := AllocateLine(line, items(t, "0.5", "0.5"))

		testutil.AssertDecimalEqual(t, out[0].CreditAmount, "5.00")
		testutil.AssertDecimalEqual(t, out[1].CreditAmount, "5.00")
		if out[0].DebitAmount.IsPositive() || out[1].DebitAmount.IsPositive() {
			t.Error("expected debit side to stay zero")
		}
	})

	t.Run("conservation_over_many_inputs", func(t *testing.T) {
		amounts := []string{"0.01", "0.02", "1.00", "9.99", "123.45", "1000.00", "99999.97"}
		ratioSets := [][]string{
			{"0.5", "0.5"},
			{"0.333", "0.333", "0.334"},
			{"0.1", "0.2", "0.7"},
			{"0.2499", "0.2499", "0.2499", "0.2503"},
			{"1"},
		}

		for _, amount := range amounts {
			for _, ratios := range ratioSets {
				out := AllocateLine(debitLine(t, amount), items(t, ratios...))
				sum := decimal.Zero
				for _, l := range out {
					sum = sum.Add(l.DebitAmount)
				}
				if !sum.Equal(testutil.Money(t, amount)) {
					t.Errorf("amount %s ratios %v: allocated sum %s", amount, ratios, sum)
				}
			}
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("rule_in_window_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		target := testutil.CreateTestProject(t, db, models.ProjectTypePublic)

		rule := testutil.CreateTestRule(t, db, source.ID, testutil.Date(2025, time.January, 1),
			[]string{target.ID}, []string{"1"})

		resolved, found, err := svc.Resolve(source.ID, testutil.Date(2025, time.June, 15))
		testutil.AssertNoError(t, err)
		if !found {
			t.Fatal("expected a rule to resolve")
		}
		if resolved.ID != rule.ID {
			t.Errorf("expected rule %s, got %s", rule.ID, resolved.ID)
		}
		if len(resolved.Items) != 1 {
			t.Errorf("expected items preloaded, got %d", len(resolved.Items))
		}
	})

	t.Run("latest_effective_from_wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		target := testutil.CreateTestProject(t, db, models.ProjectTypePublic)

		testutil.CreateTestRule(t, db, source.ID, testutil.Date(2024, time.January, 1),
			[]string{target.ID}, []string{"1"})
		newer := testutil.CreateTestRule(t, db, source.ID, testutil.Date(2025, time.March, 1),
			[]string{target.ID}, []string{"1"})

		resolved, found, err := svc.Resolve(source.ID, testutil.Date(2025, time.June, 15))
		testutil.AssertNoError(t, err)
		if !found {
			t.Fatal("expected a rule to resolve")
		}
		if resolved.ID != newer.ID {
			t.Errorf("expected the newer rule %s, got %s", newer.ID, resolved.ID)
		}
	})

	t.Run("expired_rule_not_resolved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		target := testutil.CreateTestProject(t, db, models.ProjectTypePublic)

		rule := testutil.CreateTestRule(t, db, source.ID, testutil.Date(2024, time.January, 1),
			[]string{target.ID}, []string{"1"})
		until := testutil.Date(2024, time.December, 31)
		if err := db.Model(rule).Update("effective_to", until).Error; err != nil {
			t.Fatalf("failed to expire rule: %v", err)
		}

		_, found, err := svc.Resolve(source.ID, testutil.Date(2025, time.June, 15))
		testutil.AssertNoError(t, err)
		if found {
			t.Error("expected no rule after the effective window")
		}
	})

	t.Run("no_rule_is_not_an_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		project := testutil.CreateTestProject(t, db, models.ProjectTypePublic)

		_, found, err := svc.Resolve(project.ID, testutil.Date(2025, time.June, 15))
		testutil.AssertNoError(t, err)
		if found {
			t.Error("expected no rule")
		}
	})
}

func TestCreateRule(t *testing.T) {
	t.Run("items_keep_insertion_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		p1 := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		p2 := testutil.CreateTestProject(t, db, models.ProjectTypeProfit)

		rule, err := svc.CreateRule("Office costs", "fixed_ratio", decimal.Zero, source.ID,
			testutil.Date(2025, time.January, 1), nil,
			[]RuleItemInput{
				{TargetProjectID: p1.ID, Ratio: testutil.Money(t, "0.6")},
				{TargetProjectID: p2.ID, Ratio: testutil.Money(t, "0.4")},
			})
		testutil.AssertNoError(t, err)

		fetched, err := svc.GetRule(rule.ID)
		testutil.AssertNoError(t, err)
		if len(fetched.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(fetched.Items))
		}
		if fetched.Items[0].TargetProjectID != p1.ID || fetched.Items[1].TargetProjectID != p2.ID {
			t.Error("expected items in insertion order")
		}
	})

	t.Run("empty_items_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)

		_, err := svc.CreateRule("Empty", "fixed_ratio", decimal.Zero, source.ID,
			testutil.Date(2025, time.January, 1), nil, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_project_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)

		_, err := svc.CreateRule("Orphan", "fixed_ratio", decimal.Zero, "00000000-0000-0000-0000-000000000000",
			testutil.Date(2025, time.January, 1), nil,
			[]RuleItemInput{{TargetProjectID: "x", Ratio: decimal.New(1, 0)}})
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	})

	t.Run("negative_ratio_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)

		_, err := svc.CreateRule("Bad ratio", "fixed_ratio", decimal.Zero, source.ID,
			testutil.Date(2025, time.January, 1), nil,
			[]RuleItemInput{{TargetProjectID: source.ID, Ratio: testutil.Money(t, "-0.1")}})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestPreview(t *testing.T) {
	t.Run("expands_without_persisting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)
		source := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		p1 := testutil.CreateTestProject(t, db, models.ProjectTypePublic)
		p2 := testutil.CreateTestProject(t, db, models.ProjectTypeProfit)

		testutil.CreateTestRule(t, db, source.ID, testutil.Date(2025, time.January, 1),
			[]string{p1.ID, p2.ID}, []string{"0.6", "0.4"})

		line := LineInput{ProjectID: source.ID, AccountCodeID: "any", DebitAmount: testutil.Money(t, "100.00")}
		out, err := svc.Preview(source.ID, testutil.Date(2025, time.June, 1), line)
		testutil.AssertNoError(t, err)

		if len(out) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(out))
		}
		testutil.AssertDecimalEqual(t, out[0].DebitAmount, "60.00")
		testutil.AssertDecimalEqual(t, out[1].DebitAmount, "40.00")

		var lines int64
		if err := db.Model(&models.TransactionLine{}).Count(&lines).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if lines != 0 {
			t.Errorf("expected no persisted lines, got %d", lines)
		}
	})

	t.Run("both_sides_positive_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAllocationService(db)

		line := LineInput{
			ProjectID:     "p",
			AccountCodeID: "a",
			DebitAmount:   testutil.Money(t, "1.00"),
			CreditAmount:  testutil.Money(t, "1.00"),
		}
		_, err := svc.Preview("p", testutil.Date(2025, time.June, 1), line)
		testutil.AssertAppError(t, err, "INVALID_LINE")
	})
}
