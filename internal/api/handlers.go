package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stationops/nowplayd/internal/monitor"
	"github.com/stationops/nowplayd/pkg/logger"
)

const defaultHistoryLimit = 20

// Handler serves the local status API for the running monitor.
type Handler struct {
	monitor *monitor.Monitor
}

func NewHandler(m *monitor.Monitor) *Handler {
	return &Handler{monitor: m}
}

// HealthCheck reports liveness and the watched path.
func (h *Handler) HealthCheck(c *gin.Context) {
	snapshot := h.monitor.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"watching": snapshot.FilePath,
	})
}

// Status returns the monitor snapshot: counters and the last submission.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Status())
}

// History returns recent journal entries, newest first. Responds 503 when
// the journal is disabled.
func (h *Handler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, enabled, err := h.monitor.History(limit)
	if !enabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "submission journal is not configured"})
		return
	}
	if err != nil {
		logger.Log.Errorf("Failed to read submission journal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
