package router

import (
	"time"

	"celengan/api"
	"celengan/config"
	_ "celengan/docs"
	"celengan/middleware"
	"celengan/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// login and reset-mail attempts allowed per client IP
const (
	loginAttempts = 10
	loginWindow   = 15 * time.Minute
)

// SetupRouter wires handlers on top of db. ledger is shared with the
// command line sweep so both use the same clock and reporter.
func SetupRouter(cfg *config.Config, db *gorm.DB, ledger *service.LedgerService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(CORSMiddleware())

	reports := service.NewReportService(db, cfg.App.Location)

	authHandler := api.NewAuthHandler(cfg, service.NewUserService(db))
	resetHandler := api.NewPasswordResetHandler(
		service.NewPasswordResetService(db, service.NewEmailService(&cfg.Email), cfg.Server.BaseURL))
	accountHandler := api.NewAccountHandler(service.NewAccountService(db), ledger)
	categoryHandler := api.NewCategoryHandler(service.NewCategoryService(db))
	transactionHandler := api.NewTransactionHandler(ledger)
	recurringHandler := api.NewRecurringHandler(service.NewRecurringService(db))
	budgetHandler := api.NewBudgetHandler(service.NewBudgetService(db), reports)
	goalHandler := api.NewGoalHandler(service.NewGoalService(db))
	dashboardHandler := api.NewDashboardHandler(reports)
	exportHandler := api.NewExportHandler(reports)
	cronHandler := api.NewCronHandler(ledger)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(loginAttempts, loginWindow), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/password/forgot", middleware.LoginRateLimit(loginAttempts, loginWindow), resetHandler.RequestPasswordReset)
			auth.POST("/password/reset", resetHandler.ResetPassword)
		}

		// scheduler trigger, authenticated by shared secret instead of a session
		cron := apiGroup.Group("/cron")
		cron.Use(middleware.CronAuth(cfg.Cron.Secret))
		{
			cron.GET("/recurring", cronHandler.RunRecurring)
			cron.POST("/recurring", cronHandler.RunRecurring)
		}

		authorized := apiGroup.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			accounts := authorized.Group("/accounts")
			{
				accounts.GET("", accountHandler.List)
				accounts.POST("", accountHandler.Create)
				accounts.GET("/:id", accountHandler.Get)
				accounts.PUT("/:id", accountHandler.Update)
				accounts.DELETE("/:id", accountHandler.Delete)
				accounts.GET("/:id/reconcile", accountHandler.Reconcile)
			}

			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.GET("/:id", categoryHandler.Get)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			transactions := authorized.Group("/transactions")
			{
				transactions.GET("", transactionHandler.List)
				transactions.POST("", transactionHandler.Create)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			recurring := authorized.Group("/recurring")
			{
				recurring.GET("", recurringHandler.List)
				recurring.POST("", recurringHandler.Create)
				recurring.DELETE("/:id", recurringHandler.Delete)
			}

			budgets := authorized.Group("/budgets")
			{
				budgets.GET("", budgetHandler.List)
				budgets.POST("", budgetHandler.Upsert)
				budgets.DELETE("/:id", budgetHandler.Delete)
			}

			goals := authorized.Group("/goals")
			{
				goals.GET("", goalHandler.List)
				goals.POST("", goalHandler.Create)
				goals.PUT("/:id", goalHandler.Update)
				goals.DELETE("/:id", goalHandler.Delete)
				goals.POST("/:id/add-funds", goalHandler.AddFunds)
			}

			authorized.GET("/dashboard/summary", dashboardHandler.Summary)
			authorized.GET("/charts", dashboardHandler.Charts)

			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/xlsx", exportHandler.ExportXLSX)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(503, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS headers for the web client
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Cron-Secret, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
