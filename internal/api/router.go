package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/tracemap-backend-go/internal/config"
	"github.com/jengzang/tracemap-backend-go/internal/handler"
	"github.com/jengzang/tracemap-backend-go/internal/middleware"
	"github.com/jengzang/tracemap-backend-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc *service.GlobeService, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Tracemap API is running",
		})
	})

	globe := handler.NewGlobeHandler(svc)
	history := handler.NewHistoryHandler(svc)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		api.GET("/points", globe.GetPoints)
		api.GET("/points/:id", globe.GetPointByID)
		api.GET("/segments", globe.GetSegments)
		api.GET("/unplaced", globe.GetUnplaced)
		api.GET("/stats", globe.GetStats)
		api.GET("/commands", globe.GetCommands)

		api.GET("/runs", history.GetRuns)
		api.GET("/runs/:id", history.GetRunByID)
		api.GET("/history/points", history.GetStoredPoints)
		api.GET("/history/segments", history.GetStoredSegments)

		// Mutating endpoints
		write := api.Group("")
		write.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			write.POST("/routes/:routeId", globe.ProcessRoute)
			write.POST("/batches", globe.ProcessBatch)
			write.DELETE("/session", globe.ResetSession)
			write.DELETE("/runs", history.ClearRuns)
		}
	}

	return r
}
