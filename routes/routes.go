package routes

import (
	"openbudget-api/controllers"
	"openbudget-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes (citizen-facing, no authentication)
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "OpenBudget API is running",
				})
			})

			// Projects and milestones (read)
			public.GET("/projects", controllers.GetProjects)
			public.GET("/projects/:id", controllers.GetProject)
			public.GET("/milestones", controllers.GetMilestones)

			// Citizen engagement
			public.GET("/ratings", controllers.GetRatings)
			public.POST("/ratings", controllers.SubmitRating)
			public.GET("/comments", controllers.GetComments)
			public.GET("/comments/:id/replies", controllers.GetCommentReplies)
			public.POST("/comments", controllers.CreateComment)
			public.GET("/issues", controllers.GetIssues)
			public.POST("/issues", controllers.CreateIssue)
			public.GET("/watchlist", controllers.GetWatchlist)
			public.POST("/watchlist", controllers.WatchProject)
			public.DELETE("/watchlist", controllers.UnwatchProject)

			// Analytics
			analytics := public.Group("/analytics")
			{
				analytics.GET("/leaderboard", controllers.GetMinistryLeaderboard)
				analytics.GET("/projects-leaderboard", controllers.GetProjectLeaderboard)
				analytics.GET("/projects/:id/metrics", controllers.GetProjectMetrics)
				analytics.GET("/trends", controllers.GetTrends)
				analytics.GET("/anomalies", controllers.GetAnomalies)
			}

			// Public integrity stats
			public.GET("/stats", controllers.GetSystemStats)
		}

		// Protected routes (ministry accounts)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Account management
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)
			protected.GET("/ministry-accounts/:id", controllers.GetMinistryAccount)
			protected.PUT("/ministry-accounts/:id", controllers.UpdateMinistryAccount)

			// Project lifecycle
			protected.POST("/projects", controllers.CreateProject)
			protected.POST("/projects/:id/publish", controllers.PublishProject)

			// Milestones
			protected.POST("/milestones", controllers.CreateMilestone)
			protected.POST("/milestones/:id/release", controllers.ReleaseMilestone)

			// Proof documents
			protected.POST("/uploads/proof", controllers.UploadProof)

			// Performance aggregate
			protected.POST("/analytics/refresh", controllers.RefreshPerformance)

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
				dashboard.GET("/activity", controllers.GetRecentActivity)
			}
		}
	}
}
