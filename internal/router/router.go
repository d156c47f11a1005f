package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/internal/handlers"
	"github.com/spendvault/spendvault/internal/middleware"
	"github.com/spendvault/spendvault/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/payment-types", handlers.ListPaymentTypes)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		invitations := api.Group("/invitations", middleware.AuthMiddleware())
		{
			invitations.GET("", handlers.ListPendingInvitations)
			invitations.GET("/sent", handlers.ListSentInvitations)
			invitations.POST("/:invitation_id/accept", handlers.AcceptInvitation)
			invitations.POST("/:invitation_id/decline", handlers.DeclineInvitation)
		}

		vaults := api.Group("/vaults", middleware.AuthMiddleware())
		{
			vaults.POST("", handlers.CreateVault)
			vaults.GET("", handlers.ListVaults)
			vaults.GET("/:vault_id", handlers.GetVault)
			vaults.PATCH("/:vault_id", handlers.UpdateVault)
			vaults.DELETE("/:vault_id", handlers.DeleteVault)
			vaults.POST("/:vault_id/default", handlers.SetDefaultVault)

			// Membership endpoints
			vaults.GET("/:vault_id/members", handlers.ListVaultMembers)
			vaults.POST("/:vault_id/invitations", handlers.CreateInvitation)

			// Dashboard endpoint
			vaults.GET("/:vault_id/dashboard", handlers.GetVaultDashboard)

			// Expense endpoints
			vaults.POST("/:vault_id/expenses", handlers.CreateExpense)
			vaults.GET("/:vault_id/expenses", handlers.ListExpenses)
			vaults.GET("/:vault_id/expenses/:expense_id", handlers.GetExpense)
			vaults.PUT("/:vault_id/expenses/:expense_id", handlers.UpdateExpense)
			vaults.DELETE("/:vault_id/expenses/:expense_id", handlers.DeleteExpense)

			// Template endpoints
			vaults.POST("/:vault_id/templates", handlers.CreateTemplate)
			vaults.GET("/:vault_id/templates", handlers.ListTemplates)
			vaults.PUT("/:vault_id/templates/:template_id", handlers.UpdateTemplate)
			vaults.DELETE("/:vault_id/templates/:template_id", handlers.DeleteTemplate)

			// Budget endpoints
			vaults.POST("/:vault_id/budgets", handlers.CreateBudget)
			vaults.GET("/:vault_id/budgets", handlers.ListBudgets)
			vaults.PUT("/:vault_id/budgets/:budget_id", handlers.UpdateBudget)
			vaults.DELETE("/:vault_id/budgets/:budget_id", handlers.DeleteBudget)
		}
	}

	return r
}
