package routes

import (
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/handlers"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Workflow Engine is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", handlers.GetTasks)
		protectedRoutes.GET("/tasks/stats", handlers.GetTaskStats)
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.POST("/tasks/bulk-delete", handlers.BulkDeleteTasks)
		protectedRoutes.GET("/tasks/:id", handlers.GetTaskByID)
		protectedRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", handlers.TransitionTaskStatus)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		// Feedback endpoints
		protectedRoutes.POST("/tasks/:id/feedback", handlers.AddFeedback)
		protectedRoutes.GET("/tasks/:id/feedback", handlers.ListFeedback)
		protectedRoutes.GET("/feedback/counts", handlers.GetFeedbackCounts)
		// Users endpoint
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		// Realtime event stream
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
