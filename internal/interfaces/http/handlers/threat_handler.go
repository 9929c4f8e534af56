package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/naps/internal/application/dto"
	"github.com/turtacn/naps/internal/application/service"
	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// ThreatHandler serves the threat detection query surface.
type ThreatHandler struct {
	orchestrator service.AnalysisOrchestrator
	logger       logger.Logger
}

// NewThreatHandler creates the threat handler.
func NewThreatHandler(orchestrator service.AnalysisOrchestrator, log logger.Logger) *ThreatHandler {
	return &ThreatHandler{
		orchestrator: orchestrator,
		logger:       log.WithComponent(constants.ComponentHTTP),
	}
}

// ListActiveThreats returns every unresolved detection.
func (h *ThreatHandler) ListActiveThreats(c *gin.Context) {
	threats := h.orchestrator.ActiveThreats(c.Request.Context())
	respond(c, http.StatusOK, gin.H{
		"threats": threats,
		"count":   len(threats),
	})
}

// AnalyzeUserBehavior runs threat detection across a user's sessions.
func (h *ThreatHandler) AnalyzeUserBehavior(c *gin.Context) {
	threats, err := h.orchestrator.AnalyzeUserBehavior(c.Request.Context(), c.Param("user_name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"threats": threats,
		"count":   len(threats),
	})
}

// AnalyzeDeviceBehavior runs threat detection across an endpoint's sessions.
func (h *ThreatHandler) AnalyzeDeviceBehavior(c *gin.Context) {
	threats, err := h.orchestrator.AnalyzeDeviceBehavior(c.Request.Context(), c.Param("mac_address"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"threats": threats,
		"count":   len(threats),
	})
}

// ListBySeverity returns recorded detections at one severity.
func (h *ThreatHandler) ListBySeverity(c *gin.Context) {
	severity := models.ThreatSeverity(strings.ToUpper(c.Param("severity")))
	if severity.Level() == 0 {
		respondError(c, errors.ErrInvalidRequest("unknown threat severity: "+c.Param("severity")))
		return
	}
	threats := h.orchestrator.ThreatsBySeverity(c.Request.Context(), severity)
	respond(c, http.StatusOK, gin.H{
		"threats": threats,
		"count":   len(threats),
	})
}

// Statistics summarizes recorded detections.
func (h *ThreatHandler) Statistics(c *gin.Context) {
	respond(c, http.StatusOK, h.orchestrator.ThreatStatistics(c.Request.Context()))
}

// Resolve marks a detection as handled.
func (h *ThreatHandler) Resolve(c *gin.Context) {
	var req dto.ResolveThreatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	detection, err := h.orchestrator.ResolveThreat(c.Request.Context(), c.Param("detection_id"), req.ResolvedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "threat detection resolved", logger.Fields{
		"detection_id": detection.DetectionID,
		"resolved_by":  req.ResolvedBy,
	})
	respond(c, http.StatusOK, detection)
}
