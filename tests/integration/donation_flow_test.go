package integration

import (
	"fmt"
	"net/http"
	"testing"

	"fundledger/internal/uuid"
)

func TestDonationFlow_RecordAndIssueReceipt(t *testing.T) {
	app := setupApp(t)
	token, _ := actorToken(t, "staff")

	projectID := app.createProject(t, token, "EDU", "Public")
	donorID := uuid.New()

	rec := app.request("POST", "/api/v1/donations", fmt.Sprintf(`{
		"donor_id": %q,
		"project_id": %q,
		"donated_at": "2025-03-10T00:00:00Z",
		"amount": "50000.00",
		"purpose": "general support",
		"payment_method": "bank_transfer"
	}`, donorID, projectID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create donation failed: %d %s", rec.Code, rec.Body.String())
	}
	donation := parseJSON(t, rec)["donation"].(map[string]interface{})
	donationID := donation["id"].(string)
	if donation["receipt_issued"] != false {
		t.Error("expected receipt not yet issued")
	}

	// Issue the receipt.
	rec = app.request("POST", "/api/v1/donations/"+donationID+"/receipt", "", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue receipt failed: %d %s", rec.Code, rec.Body.String())
	}
	receipt := parseJSON(t, rec)["receipt"].(map[string]interface{})
	if receipt["receipt_no"] != "RCPT-2025-000001" {
		t.Errorf("expected RCPT-2025-000001, got %v", receipt["receipt_no"])
	}

	// A second issue attempt conflicts.
	rec = app.request("POST", "/api/v1/donations/"+donationID+"/receipt", "", token)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on second issue, got %d", rec.Code)
	}

	// The donation now reports the issued flag.
	rec = app.request("GET", "/api/v1/donations/"+donationID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get donation failed: %d %s", rec.Code, rec.Body.String())
	}
	donation = parseJSON(t, rec)["donation"].(map[string]interface{})
	if donation["receipt_issued"] != true {
		t.Error("expected receipt_issued true after issue")
	}
}
