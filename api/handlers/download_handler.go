package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/app"
	"github.com/downlyapp/downly/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	orchestrator *app.Orchestrator
	repo         domain.JobRepository
	hub          *ProgressHub
	defaultDir   string
	logger       *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(orchestrator *app.Orchestrator, repo domain.JobRepository, hub *ProgressHub, defaultDir string, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		orchestrator: orchestrator,
		repo:         repo,
		hub:          hub,
		defaultDir:   defaultDir,
		logger:       logger,
	}
}

// StartDownload handles POST /api/v1/downloads
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var opts domain.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if opts.DestinationDir == "" {
		opts.DestinationDir = h.defaultDir
	}

	settings, err := domain.ResolveSettings(opts)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      verr.Error(),
				"violations": verr.Violations,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.orchestrator.Start(settings, h.hub.BroadcastEvent, h.hub.BroadcastResult)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			var depErr *domain.DependencyNotFoundError
			if errors.As(err, &depErr) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": depErr.Error(), "tool": depErr.Tool})
				return
			}
			h.logger.Error("Failed to start download", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, job)
}

// currentResponse reports the in-flight job, if any
type currentResponse struct {
	Running   bool                  `json:"running"`
	Job       *domain.Job           `json:"job,omitempty"`
	LastEvent *domain.ProgressEvent `json:"last_event,omitempty"`
}

// CurrentDownload handles GET /api/v1/downloads/current
func (h *DownloadHandler) CurrentDownload(c *gin.Context) {
	job, event := h.orchestrator.Current()
	c.JSON(http.StatusOK, currentResponse{
		Running:   job != nil,
		Job:       job,
		LastEvent: event,
	})
}

// CancelDownload handles POST /api/v1/downloads/:id/cancel.
// Cancelling a job that already finished is a no-op, not an error.
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	id := c.Param("id")
	if err := h.orchestrator.Cancel(id); err != nil {
		h.logger.Error("Failed to cancel download", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cancellation requested"})
}

// GetJob handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.repo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/downloads
func (h *DownloadHandler) ListJobs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	jobs, err := h.repo.FindRecent(limit)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPresets handles GET /api/v1/presets
func (h *DownloadHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Presets())
}
