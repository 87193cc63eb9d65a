// Package api exposes the HTTP surface of the monitoring service: health
// and readiness probes, aggregate statistics, ad-hoc classification and a
// manual run trigger.
package api

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/JartiX/Irk-media-monitoring/internal/classifier"
	"github.com/JartiX/Irk-media-monitoring/internal/database"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

// RunTrigger starts a monitoring run in the background. It reports false
// when a run is already in progress.
type RunTrigger func() bool

// Handler handles HTTP requests for the monitoring API.
type Handler struct {
	store    *database.Store
	pipeline *classifier.Pipeline
	backend  classifier.Backend
	trigger  RunTrigger
	logger   logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	store *database.Store,
	pipeline *classifier.Pipeline,
	backend classifier.Backend,
	trigger RunTrigger,
	log logger.Logger,
) *Handler {
	return &Handler{
		store:    store,
		pipeline: pipeline,
		backend:  backend,
		trigger:  trigger,
		logger:   log,
	}
}

// HealthCheck reports process liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck reports whether dependencies can serve traffic.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if _, err := h.store.Stats(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"backend":       h.backend.Name(),
		"backend_ready": h.backend.Ready(),
	})
}

// GetStats returns the aggregate store statistics.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListSources returns all monitored sources.
func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.store.Sources.List(c.Request.Context())
	if err != nil {
		h.logger.Error("sources query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sources"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

const defaultRelevantPostsLimit = 20

// ListRelevantPosts returns the most recent posts judged relevant.
func (h *Handler) ListRelevantPosts(c *gin.Context) {
	limit := defaultRelevantPostsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	posts, err := h.store.Posts.ListRelevant(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("relevant posts query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

type updateSourceRequest struct {
	IsActive bool `json:"is_active"`
}

// UpdateSource toggles a source's active flag.
func (h *Handler) UpdateSource(c *gin.Context) {
	var req updateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	if err := h.store.Sources.SetActive(c.Request.Context(), id, req.IsActive); err != nil {
		if err == database.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
			return
		}
		h.logger.Error("source update failed", logger.String("id", id), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update source"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": req.IsActive})
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// Classify scores one text through the full pipeline. Intended for ruleset
// debugging and ad-hoc checks.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	relevant, score := h.pipeline.Score(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, gin.H{
		"relevant": relevant,
		"score":    score,
	})
}

// TriggerRun starts a monitoring run in the background.
func (h *Handler) TriggerRun(c *gin.Context) {
	if !h.trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "run already in progress"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// NewRunGate returns a RunTrigger that serializes runs: run is executed in
// a goroutine, at most one at a time.
func NewRunGate(run func(ctx context.Context), log logger.Logger) RunTrigger {
	var busy atomic.Bool
	return func() bool {
		if !busy.CompareAndSwap(false, true) {
			return false
		}
		log.Info("manual run triggered")
		go func() {
			defer busy.Store(false)
			run(context.Background())
		}()
		return true
	}
}
