package routes

import (
	"admission-workflow-api/controllers"
	"admission-workflow-api/middleware"
	"admission-workflow-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Admission Workflow API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Notifications
			protected.GET("/notifications", controllers.GetNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			// Admission applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/history", controllers.GetStatusHistory)
				applications.GET("/:id/progress", controllers.GetWorkflowProgress)
				applications.GET("/:id/corrections", controllers.GetOpenCorrections)

				// Applicants create, edit and submit their own drafts and
				// answer correction requests.
				applications.POST("", middleware.RequireRole(models.RoleApplicant), controllers.CreateApplication)
				applications.PUT("/:id", middleware.RequireRole(models.RoleApplicant), controllers.UpdateApplication)
				applications.POST("/:id/submit", middleware.RequireRole(models.RoleApplicant), controllers.SubmitApplication)
				applications.POST("/:id/resubmit", middleware.RequireRole(models.RoleApplicant), controllers.ResubmitCorrections)

				// Staff and admins drive the workflow.
				applications.POST("/:id/transition", middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.RequestTransition)
				applications.POST("/:id/review", middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.OpenReview)

				// Only admins finalize records.
				applications.POST("/:id/lock", middleware.RequireRole(models.RoleAdmin), controllers.LockApplication)
			}

			// Field review sessions
			reviews := protected.Group("/reviews", middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				reviews.PUT("/:session_id/fields", controllers.MarkReviewField)
				reviews.POST("/:session_id/submit", controllers.SubmitReview)
			}

			// Workflow step registry (admin only for mutation)
			steps := protected.Group("/workflow-steps")
			{
				steps.GET("", controllers.GetWorkflowSteps)
				steps.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateWorkflowStep)
				steps.PUT("/:id", middleware.RequireRole(models.RoleAdmin), controllers.UpdateWorkflowStep)
				steps.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeleteWorkflowStep)
				steps.POST("/:id/toggle", middleware.RequireRole(models.RoleAdmin), controllers.ToggleWorkflowStep)
				steps.POST("/reset", middleware.RequireRole(models.RoleAdmin), controllers.ResetWorkflowSteps)
			}

			// Staff attendance rosters
			attendance := protected.Group("/attendance", middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				attendance.GET("", controllers.GetAttendanceDay)
				attendance.POST("", controllers.SaveAttendanceDay)
				attendance.POST("/:id/lock", middleware.RequireRole(models.RoleAdmin), controllers.LockAttendanceDay)
			}
		}

	}

	// 404 handler for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
