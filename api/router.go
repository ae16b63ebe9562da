package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/downlyapp/downly/api/handlers"
	"github.com/downlyapp/downly/api/middleware"
	"github.com/downlyapp/downly/internal/app"
	"github.com/downlyapp/downly/internal/domain"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	orchestrator *app.Orchestrator,
	repo domain.JobRepository,
	hub *handlers.ProgressHub,
	defaultDownloadDir string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(orchestrator)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	downloadHandler := handlers.NewDownloadHandler(orchestrator, repo, hub, defaultDownloadDir, log)

	v1 := router.Group("/api/v1")
	{
		downloads := v1.Group("/downloads")
		{
			downloads.POST("", downloadHandler.StartDownload)
			downloads.GET("", downloadHandler.ListJobs)
			downloads.GET("/current", downloadHandler.CurrentDownload)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetJob)
			downloads.POST("/:id/cancel", downloadHandler.CancelDownload)
		}

		v1.GET("/presets", downloadHandler.ListPresets)
		v1.GET("/progress/ws", hub.HandleWebSocket)
	}

	return router
}
