package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/naps/internal/application/dto"
	appservice "github.com/turtacn/naps/internal/application/service"
	"github.com/turtacn/naps/internal/domain/models"
	domainservice "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// PolicyHandler serves the policy store and recommendation history.
type PolicyHandler struct {
	store        domainservice.PolicyStore
	orchestrator appservice.AnalysisOrchestrator
	logger       logger.Logger
}

// NewPolicyHandler creates the policy handler.
func NewPolicyHandler(store domainservice.PolicyStore, orchestrator appservice.AnalysisOrchestrator, log logger.Logger) *PolicyHandler {
	return &PolicyHandler{
		store:        store,
		orchestrator: orchestrator,
		logger:       log.WithComponent(constants.ComponentHTTP),
	}
}

// ListPolicies returns stored policies, optionally filtered by status.
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	var (
		policies []*models.Policy
		err      error
	)
	if status := c.Query("status"); status != "" {
		policies, err = h.store.ListByStatus(c.Request.Context(), models.PolicyStatus(status))
	} else {
		policies, err = h.store.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"policies": policies,
		"count":    len(policies),
	})
}

// GetPolicy returns one policy by ID.
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	policy, err := h.store.FindByID(c.Request.Context(), c.Param("policy_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, policy)
}

// CreatePolicy stores a hand-written policy in DRAFT status.
func (h *PolicyHandler) CreatePolicy(c *gin.Context) {
	var req dto.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	policy := &models.Policy{
		PolicyID:    uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Type:        models.PolicyType(req.Type),
		Status:      models.PolicyDraft,
		Priority:    req.Priority,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		Source:      models.SourceManual,
	}
	if err := h.store.Save(c.Request.Context(), policy); err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "policy created", logger.Fields{
		"policy_id": policy.PolicyID,
		"type":      policy.Type,
	})
	respond(c, http.StatusCreated, policy)
}

// UpdatePolicyStatus moves a policy through its lifecycle.
func (h *PolicyHandler) UpdatePolicyStatus(c *gin.Context) {
	var req dto.PolicyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	status := models.PolicyStatus(req.Status)
	switch status {
	case models.PolicyDraft, models.PolicyPendingApproval, models.PolicyApproved,
		models.PolicyActive, models.PolicyInactive, models.PolicyDeprecated,
		models.PolicyRollbackPending:
	default:
		respondError(c, errors.ErrInvalidRequest("unknown policy status: "+req.Status))
		return
	}

	policyID := c.Param("policy_id")
	if err := h.store.UpdateStatus(c.Request.Context(), policyID, status, req.UpdatedBy); err != nil {
		respondError(c, err)
		return
	}

	policy, err := h.store.FindByID(c.Request.Context(), policyID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, policy)
}

// DeletePolicy removes a policy from the store.
func (h *PolicyHandler) DeletePolicy(c *gin.Context) {
	policyID := c.Param("policy_id")
	if err := h.store.Delete(c.Request.Context(), policyID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"policy_id": policyID, "deleted": true})
}

// ListRecommendations returns the recorded recommendation history.
func (h *PolicyHandler) ListRecommendations(c *gin.Context) {
	recommendations := h.orchestrator.RecommendationHistory(c.Request.Context())
	respond(c, http.StatusOK, gin.H{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// RecommendForUser generates a user-scoped recommendation.
func (h *PolicyHandler) RecommendForUser(c *gin.Context) {
	recommendations, err := h.orchestrator.RecommendForUser(c.Request.Context(), c.Param("user_name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// RecommendForEmergency generates a lockdown recommendation from an
// emergency context.
func (h *PolicyHandler) RecommendForEmergency(c *gin.Context) {
	var req dto.EmergencyRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	recommendations, err := h.orchestrator.RecommendForEmergency(c.Request.Context(), req.Context)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// ImplementRecommendation converts a recommendation into a draft policy.
func (h *PolicyHandler) ImplementRecommendation(c *gin.Context) {
	policy, err := h.orchestrator.ImplementRecommendation(c.Request.Context(), c.Param("recommendation_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "recommendation implemented", logger.Fields{
		"recommendation_id": c.Param("recommendation_id"),
		"policy_id":         policy.PolicyID,
	})
	respond(c, http.StatusCreated, policy)
}

// RejectRecommendation discards a recommendation with feedback.
func (h *PolicyHandler) RejectRecommendation(c *gin.Context) {
	var req dto.RejectRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	recommendationID := c.Param("recommendation_id")
	if err := h.orchestrator.RejectRecommendation(c.Request.Context(), recommendationID, req.Feedback); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recommendation_id": recommendationID, "rejected": true})
}
