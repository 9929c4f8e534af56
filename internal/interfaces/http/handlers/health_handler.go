package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	startedAt time.Time
	version   string
}

// NewHealthHandler creates the probe handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
		version:   version,
	}
}

// HealthCheck reports overall service health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"status":         "healthy",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// ReadinessCheck reports whether the service accepts traffic.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck reports whether the process is alive.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"status": "alive"})
}
