package routes

import (
	"github.com/gin-gonic/gin"

	"gestionempresa/controllers"
	"gestionempresa/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine) {
	// Public routes (no authentication required)
	public := r.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
		}
	}

	// Protected routes (authentication required)
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/logout", controllers.Logout)
		protected.POST("/auth/refresh", controllers.RefreshToken)

		protected.GET("/profile", controllers.GetProfile)
		protected.PUT("/profile", controllers.UpdateProfile)
		protected.POST("/profile/change-password", controllers.ChangePassword)

		// Clients
		clients := protected.Group("/clients")
		{
			clients.GET("", controllers.GetClients)
			clients.POST("", controllers.CreateClient)
			clients.PUT("/:id", controllers.UpdateClient)
			clients.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteClient)
		}

		// Leads
		leads := protected.Group("/leads")
		{
			leads.GET("", controllers.GetLeads)
			leads.POST("", controllers.CreateLead)
			leads.PUT("/:id", controllers.UpdateLead)
			leads.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteLead)
		}

		// Projects
		projects := protected.Group("/projects")
		{
			projects.GET("", controllers.GetProjects)
			projects.GET("/:id", controllers.GetProjectByID)
			projects.POST("", middleware.ManagerAuthMiddleware(), controllers.CreateProject)
			projects.PUT("/:id", middleware.ManagerAuthMiddleware(), controllers.UpdateProject)
			projects.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteProject)
		}

		// Tasks
		tasks := protected.Group("/tasks")
		{
			tasks.GET("", controllers.GetTasks)
			tasks.POST("", controllers.CreateTask)
			tasks.PUT("/:id", controllers.UpdateTask)
			tasks.PATCH("/:id/complete", controllers.CompleteTask)
			tasks.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteTask)
		}

		// Invoices and payments
		invoices := protected.Group("/invoices")
		{
			invoices.GET("", controllers.GetInvoices)
			invoices.POST("", middleware.ManagerAuthMiddleware(), controllers.CreateInvoice)
			invoices.PUT("/:id", middleware.ManagerAuthMiddleware(), controllers.UpdateInvoice)
			invoices.POST("/:id/payment-order", controllers.GeneratePaymentOrder)
			invoices.POST("/:id/verify-payment", controllers.VerifyPayment)
		}

		// Transactions
		transactions := protected.Group("/transactions")
		{
			transactions.GET("", controllers.GetTransactions)
			transactions.POST("", middleware.ManagerAuthMiddleware(), controllers.CreateTransaction)
			transactions.PUT("/:id", middleware.ManagerAuthMiddleware(), controllers.UpdateTransaction)
		}

		// Notifications
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", controllers.GetMyNotifications)
			notifications.GET("/unread-count", controllers.GetUnreadCount)
			notifications.PATCH("/:id/read", controllers.MarkNotificationRead)
			notifications.PATCH("/read-all", controllers.MarkAllNotificationsRead)

			notifications.GET("/scheduled", middleware.ManagerAuthMiddleware(), controllers.GetScheduledNotifications)
			notifications.POST("/scheduled", middleware.ManagerAuthMiddleware(), controllers.CreateScheduledNotification)
			notifications.POST("/scheduled/:id/cancel", middleware.ManagerAuthMiddleware(), controllers.CancelScheduledNotification)
		}

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.POST("/employees", controllers.Register)

			// Roles and permissions
			admin.GET("/roles", controllers.GetRoles)
			admin.POST("/roles", controllers.CreateRole)
			admin.PUT("/roles/:id", controllers.UpdateRole)
			admin.DELETE("/roles/:id", controllers.DeleteRole)
			admin.GET("/permissions", controllers.GetPermissions)
			admin.POST("/permissions", controllers.CreatePermission)

			// Audit log
			admin.GET("/audit", controllers.GetAuditLogs)
			admin.GET("/audit/statistics", controllers.GetAuditStatistics)
			admin.POST("/audit/retention", controllers.RunAuditRetention)
			admin.POST("/audit/archive", controllers.RunAuditArchive)
			admin.POST("/audit/optimize", controllers.OptimizeAuditIndexes)

			// Scheduler management
			admin.GET("/cron", controllers.GetCronStatus)
			admin.POST("/cron/:name/start", controllers.StartCronTrigger)
			admin.POST("/cron/:name/stop", controllers.StopCronTrigger)
			admin.POST("/cron/:name/run", controllers.RunCronTrigger)
			admin.POST("/notifications/check", controllers.RunChecksNow)
		}
	}
}
