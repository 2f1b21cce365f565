package services

import (
	"testing"

	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/testutil"
)

func TestCreateAccountCode(t *testing.T) {
	t.Run("creates_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountCodeService(db)

		code, err := svc.CreateAccountCode(models.AccountClassExpense, "Program Costs", "Materials", "5101", false)
		testutil.AssertNoError(t, err)
		if !code.IsActive {
			t.Error("expected new account code to be active")
		}
	})

	t.Run("duplicate_code_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountCodeService(db)

		_, err := svc.CreateAccountCode(models.AccountClassExpense, "Program Costs", "Materials", "5101", false)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateAccountCode(models.AccountClassAsset, "Cash", "Bank", "5101", false)
		testutil.AssertAppError(t, err, "DUPLICATE_CODE")
	})

	t.Run("missing_code_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountCodeService(db)

		_, err := svc.CreateAccountCode(models.AccountClassExpense, "Program Costs", "Materials", "", false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetAccountCodeByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountCodeService(db)

	created := testutil.CreateTestAccountCode(t, db, models.AccountClassRevenue, false)

	found, err := svc.GetAccountCodeByCode(created.Code)
	testutil.AssertNoError(t, err)
	if found.ID != created.ID {
		t.Errorf("expected ID %s, got %s", created.ID, found.ID)
	}

	_, err = svc.GetAccountCodeByCode("missing")
	testutil.AssertAppError(t, err, "ACCOUNT_CODE_NOT_FOUND")
}

func TestListAccountCodes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountCodeService(db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestAccountCode(t, db, models.AccountClassExpense, false)
	}

	page, err := svc.ListAccountCodes(pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 {
		t.Errorf("expected 3 account codes, got %d", page.TotalItems)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected 2 items on the page, got %d", len(page.Data))
	}
	if page.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", page.TotalPages)
	}
}
