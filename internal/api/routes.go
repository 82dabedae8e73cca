package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	router.Use(Recovery())
	router.Use(CORS())
	router.Use(gin.Logger())

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.GET("", handler.ListRuns)
			runs.GET("/latest", handler.GetLatestRun)
			runs.GET("/:id", handler.GetRun)
			runs.GET("/:id/summary", handler.GetRunSummary)
			runs.GET("/:id/repos", handler.GetRunRepos)
		}
	}

	return router
}
