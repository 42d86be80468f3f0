package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-insights-orchestrator/internal/pipeline"
)

// Pinger is the slice of the storage interface the health endpoint needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds the manual-trigger HTTP server. The trigger endpoints run
// a pass synchronously and answer 200 with the run report, or 500 when the
// pass itself fails.
func NewServer(p pipeline.PipelineInterface, store Pinger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	h := &Handler{pipeline: p, storage: store}

	r.POST("/run/ingest", h.RunIngest)
	r.POST("/run/refresh", h.RunRefresh)
	r.GET("/health", h.HealthCheck)

	return r
}

type Handler struct {
	pipeline pipeline.PipelineInterface
	storage  Pinger
}

func (h *Handler) RunIngest(c *gin.Context) {
	report, err := h.pipeline.Ingest(c.Request.Context(), c.Query("client"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) RunRefresh(c *gin.Context) {
	report, err := h.pipeline.Refresh(c.Request.Context(), c.Query("client"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.storage.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
