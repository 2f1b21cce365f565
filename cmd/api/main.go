package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"fundledger/internal/config"
	"fundledger/internal/database"
	"fundledger/internal/handlers"
	"fundledger/internal/logger"
	"fundledger/internal/middleware"
	"fundledger/internal/services"
	"fundledger/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validation tags
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	projectService := services.NewProjectService(db)
	accountCodeService := services.NewAccountCodeService(db)
	allocationService := services.NewAllocationService(db)
	budgetService := services.NewBudgetService(db)
	postingService := services.NewPostingService(db, auditService)
	reportingService := services.NewReportingService(db)
	donationService := services.NewDonationService(db)
	boardService := services.NewBoardService(db)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	accountCodeHandler := handlers.NewAccountCodeHandler(accountCodeService, auditService)
	allocationHandler := handlers.NewAllocationHandler(allocationService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	postingHandler := handlers.NewPostingHandler(postingService, auditService)
	reportingHandler := handlers.NewReportingHandler(reportingService)
	donationHandler := handlers.NewDonationHandler(donationService, auditService)
	boardHandler := handlers.NewBoardHandler(boardService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group, all routes require authentication
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	// Project routes
	projects := v1.Group("/projects")
	projects.POST("", projectHandler.CreateProject)
	projects.GET("", projectHandler.ListProjects)
	projects.GET("/:id", projectHandler.GetProject)

	// Account code routes
	accountCodes := v1.Group("/account-codes")
	accountCodes.POST("", accountCodeHandler.CreateAccountCode)
	accountCodes.GET("", accountCodeHandler.ListAccountCodes)
	accountCodes.GET("/:id", accountCodeHandler.GetAccountCode)

	// Allocation rule routes
	rules := v1.Group("/allocation-rules")
	rules.POST("", allocationHandler.CreateRule)
	rules.GET("", allocationHandler.ListRules)
	rules.GET("/:id", allocationHandler.GetRule)
	rules.POST("/preview", allocationHandler.Preview)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.POST("/check", budgetHandler.CheckCapacity)
	budgets.GET("/:projectId", budgetHandler.GetBudget)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", postingHandler.CreateTransaction)
	transactions.GET("/:id", postingHandler.GetTransaction)
	transactions.POST("/:id/approve", postingHandler.ApproveTransaction)
	transactions.POST("/:id/reject", postingHandler.RejectTransaction)

	// Reporting routes
	reports := v1.Group("/reports")
	reports.GET("/financial-statements", reportingHandler.GetFinancialStatements)
	reports.POST("/reserve-simulation", reportingHandler.SimulateReserve)
	reports.POST("/public-spending", reportingHandler.CheckPublicSpending)

	// Donation routes
	donations := v1.Group("/donations")
	donations.POST("", donationHandler.CreateDonation)
	donations.GET("", donationHandler.ListDonations)
	donations.GET("/:id", donationHandler.GetDonation)
	donations.POST("/:id/receipt", donationHandler.IssueReceipt)

	// Board routes
	board := v1.Group("/board")
	board.POST("/members", boardHandler.AddMember)
	board.GET("/composition", boardHandler.GetComposition)

	log.Infof("Starting fundledger server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
