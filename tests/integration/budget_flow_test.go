package integration

import (
	"fmt"
	"net/http"
	"testing"

	"fundledger/internal/models"
)

func TestBudgetFlow_GateAndOverride(t *testing.T) {
	app := setupApp(t)
	staffToken, _ := actorToken(t, "staff")
	adminToken, _ := actorToken(t, "admin")

	projectID := app.createProject(t, staffToken, "EDU", "Public")
	codeID := app.createAccountCode(t, staffToken, "expense", "5200", false)

	// Budget of 100.00 for fiscal year 2025.
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"project_id":%q,"fiscal_year":2025,"total_budget":"100.00"}`, projectID), staffToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}

	// Read-only capacity check passes for an amount inside the ceiling.
	rec = app.request("POST", "/api/v1/budgets/check",
		fmt.Sprintf(`{"project_id":%q,"fiscal_year":2025,"amount":"70.00"}`, projectID), staffToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("capacity check failed: %d %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["ok"] != true {
		t.Error("expected capacity check to pass")
	}

	post := func(token, amount string, override bool) int {
		body := fmt.Sprintf(`{
			"tx_date": "2025-04-01T00:00:00Z",
			"override": %t,
			"lines": [{"project_id": %q, "account_code_id": %q, "debit_amount": %q}]
		}`, override, projectID, codeID, amount)
		rec := app.request("POST", "/api/v1/transactions", body, token)
		return rec.Code
	}

	// First posting consumes 70.00.
	if code := post(staffToken, "70.00", false); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}

	// Second posting of 70.00 no longer fits.
	if code := post(staffToken, "70.00", false); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}

	// Staff cannot override even when requesting it.
	if code := post(staffToken, "70.00", true); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for staff override, got %d", code)
	}

	// Admin override passes and leaves an audit trail.
	if code := post(adminToken, "70.00", true); code != http.StatusCreated {
		t.Fatalf("expected 201 for admin override, got %d", code)
	}

	var overrides int64
	if err := app.DB.Model(&models.AuditLog{}).Where("action = ?", "BUDGET_OVERRIDE").Count(&overrides).Error; err != nil {
		t.Fatalf("count audit logs: %v", err)
	}
	if overrides != 1 {
		t.Errorf("expected 1 override audit event, got %d", overrides)
	}

	// Committed spend reflects both postings.
	rec = app.request("GET", "/api/v1/budgets/"+projectID+"?fiscal_year=2025", "", staffToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget failed: %d %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	if budget["total_spent"] != "140" && budget["total_spent"] != "140.00" {
		t.Errorf("expected total_spent 140.00, got %v", budget["total_spent"])
	}
}
