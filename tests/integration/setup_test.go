package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fundledger/internal/handlers"
	"fundledger/internal/logger"
	"fundledger/internal/middleware"
	"fundledger/internal/models"
	"fundledger/internal/services"
	"fundledger/internal/uuid"
	"fundledger/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Project{},
		&models.AccountCode{},
		&models.TransactionHead{},
		&models.TransactionLine{},
		&models.AllocationRule{},
		&models.AllocationRuleItem{},
		&models.AllocationResult{},
		&models.Budget{},
		&models.Donation{},
		&models.DonationReceipt{},
		&models.BoardMember{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	auditService := services.NewAuditService(db)
	projectService := services.NewProjectService(db)
	accountCodeService := services.NewAccountCodeService(db)
	allocationService := services.NewAllocationService(db)
	budgetService := services.NewBudgetService(db)
	postingService := services.NewPostingService(db, auditService)
	reportingService := services.NewReportingService(db)
	donationService := services.NewDonationService(db)
	boardService := services.NewBoardService(db)

	// Handlers
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	accountCodeHandler := handlers.NewAccountCodeHandler(accountCodeService, auditService)
	allocationHandler := handlers.NewAllocationHandler(allocationService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	postingHandler := handlers.NewPostingHandler(postingService, auditService)
	reportingHandler := handlers.NewReportingHandler(reportingService)
	donationHandler := handlers.NewDonationHandler(donationService, auditService)
	boardHandler := handlers.NewBoardHandler(boardService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	projects := v1.Group("/projects")
	projects.POST("", projectHandler.CreateProject)
	projects.GET("", projectHandler.ListProjects)
	projects.GET("/:id", projectHandler.GetProject)

	accountCodes := v1.Group("/account-codes")
	accountCodes.POST("", accountCodeHandler.CreateAccountCode)
	accountCodes.GET("", accountCodeHandler.ListAccountCodes)
	accountCodes.GET("/:id", accountCodeHandler.GetAccountCode)

	rules := v1.Group("/allocation-rules")
	rules.POST("", allocationHandler.CreateRule)
	rules.GET("", allocationHandler.ListRules)
	rules.GET("/:id", allocationHandler.GetRule)
	rules.POST("/preview", allocationHandler.Preview)

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.POST("/check", budgetHandler.CheckCapacity)
	budgets.GET("/:projectId", budgetHandler.GetBudget)

	transactions := v1.Group("/transactions")
	transactions.POST("", postingHandler.CreateTransaction)
	transactions.GET("/:id", postingHandler.GetTransaction)
	transactions.POST("/:id/approve", postingHandler.ApproveTransaction)
	transactions.POST("/:id/reject", postingHandler.RejectTransaction)

	reports := v1.Group("/reports")
	reports.GET("/financial-statements", reportingHandler.GetFinancialStatements)
	reports.POST("/reserve-simulation", reportingHandler.SimulateReserve)
	reports.POST("/public-spending", reportingHandler.CheckPublicSpending)

	donations := v1.Group("/donations")
	donations.POST("", donationHandler.CreateDonation)
	donations.GET("", donationHandler.ListDonations)
	donations.GET("/:id", donationHandler.GetDonation)
	donations.POST("/:id/receipt", donationHandler.IssueReceipt)

	board := v1.Group("/board")
	board.POST("/members", boardHandler.AddMember)
	board.GET("/composition", boardHandler.GetComposition)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// actorToken signs a token for a fresh actor with the given role.
func actorToken(t *testing.T, role string) (token, actorID string) {
	t.Helper()
	actorID = uuid.New()
	token, err := middleware.GenerateToken(actorID, role)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token, actorID
}

// createProject creates a project through the API and returns its ID.
func (app *testApp) createProject(t *testing.T, token, code, projectType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"code":%q,"name":"Project %s","type":%q}`, code, code, projectType)
	rec := app.request("POST", "/api/v1/projects", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project failed: %d %s", rec.Code, rec.Body.String())
	}
	project := parseJSON(t, rec)["project"].(map[string]interface{})
	return project["id"].(string)
}

// createAccountCode creates an account code through the API and returns its ID.
func (app *testApp) createAccountCode(t *testing.T, token, level1, code string, common bool) string {
	t.Helper()
	body := fmt.Sprintf(`{"level1":%q,"level2":"Group","level3":"Detail","code":%q,"is_common_expense":%t}`, level1, code, common)
	rec := app.request("POST", "/api/v1/account-codes", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account code failed: %d %s", rec.Code, rec.Body.String())
	}
	accountCode := parseJSON(t, rec)["account_code"].(map[string]interface{})
	return accountCode["id"].(string)
}
