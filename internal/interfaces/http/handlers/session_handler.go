package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/naps/internal/application/dto"
	"github.com/turtacn/naps/internal/application/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// SessionHandler serves session ingestion and the analysis query surface.
type SessionHandler struct {
	orchestrator service.AnalysisOrchestrator
	pipeline     *service.Pipeline
	logger       logger.Logger
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(orchestrator service.AnalysisOrchestrator, pipeline *service.Pipeline, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		orchestrator: orchestrator,
		pipeline:     pipeline,
		logger:       log.WithComponent(constants.ComponentHTTP),
	}
}

// IngestSession queues a session for asynchronous analysis. Responds 202 on
// acceptance and 503 when the pipeline queue is full.
func (h *SessionHandler) IngestSession(c *gin.Context) {
	var req dto.IngestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	session := req.ToSession()
	if !h.pipeline.Submit(c.Request.Context(), session) {
		respondError(c, errors.ErrUnavailable("analysis pipeline queue is full"))
		return
	}

	respond(c, http.StatusAccepted, gin.H{
		"session_id":  session.SessionID,
		"queue_depth": h.pipeline.QueueDepth(),
	})
}

// AnalyzeSession runs the full analysis chain synchronously and returns the
// combined result.
func (h *SessionHandler) AnalyzeSession(c *gin.Context) {
	var req dto.IngestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.orchestrator.AnalyzeSession(c.Request.Context(), req.ToSession())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// ListSessions returns every tracked session.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions := h.orchestrator.ActiveSessions(c.Request.Context())

	if user := c.Query("user"); user != "" {
		sessions = h.orchestrator.SessionsByUser(c.Request.Context(), user)
	} else if mac := c.Query("mac"); mac != "" {
		sessions = h.orchestrator.SessionsByDevice(c.Request.Context(), mac)
	}

	respond(c, http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession returns one tracked session by ID.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.orchestrator.SessionByID(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

// GetRiskHistory returns the recorded assessments for a session.
func (h *SessionHandler) GetRiskHistory(c *gin.Context) {
	history := h.orchestrator.RiskHistory(c.Request.Context(), c.Param("session_id"))
	respond(c, http.StatusOK, gin.H{
		"assessments": history,
		"count":       len(history),
	})
}

// AssessUser aggregates risk across a user's tracked sessions.
func (h *SessionHandler) AssessUser(c *gin.Context) {
	assessment, err := h.orchestrator.AssessUser(c.Request.Context(), c.Param("user_name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, assessment)
}

// AssessDevice aggregates risk across an endpoint's tracked sessions.
func (h *SessionHandler) AssessDevice(c *gin.Context) {
	assessment, err := h.orchestrator.AssessDevice(c.Request.Context(), c.Param("mac_address"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, assessment)
}
