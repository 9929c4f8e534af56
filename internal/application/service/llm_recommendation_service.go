package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

const recommendationSystemPrompt = `You are a network access policy advisor. ` +
	`Respond with JSON only, no prose.`

// llmPolicyRecommender asks an external model for assessment-driven
// recommendations and falls back to the heuristic recommender on any failure.
// Threat-, session-, user- and emergency-driven recommendations stay
// heuristic; their rule tables are deterministic and need no model round trip.
type llmPolicyRecommender struct {
	client   ModelClient
	fallback domainService.PolicyRecommender
	logger   logger.Logger
}

// NewLLMPolicyRecommender creates the model-backed recommender with a
// heuristic fallback.
func NewLLMPolicyRecommender(client ModelClient, fallback domainService.PolicyRecommender, log logger.Logger) domainService.PolicyRecommender {
	return &llmPolicyRecommender{
		client:   client,
		fallback: fallback,
		logger:   log.WithComponent(constants.ComponentRecommender),
	}
}

type recommendationResponse struct {
	Recommendations []struct {
		Type           string  `json:"type"`
		Priority       string  `json:"priority"`
		Confidence     float64 `json:"confidence"`
		Reasoning      string  `json:"reasoning"`
		PolicyName     string  `json:"policyName"`
		Description    string  `json:"description"`
		PolicyType     string  `json:"policyType"`
		Conditions     string  `json:"conditions"`
		Actions        string  `json:"actions"`
		PolicyPriority int     `json:"policyPriority"`
		ExpectedImpact float64 `json:"expectedImpact"`
		RiskReduction  float64 `json:"riskReduction"`
	} `json:"recommendations"`
}

func (r *llmPolicyRecommender) RecommendForAssessment(ctx context.Context, assessment *models.RiskAssessment) ([]models.PolicyRecommendation, error) {
	assessmentJSON, err := json.Marshal(assessment)
	if err != nil {
		return r.fallback.RecommendForAssessment(ctx, assessment)
	}

	prompt := fmt.Sprintf(`Given this risk assessment, recommend network access policy changes:

Risk Assessment:
%s

Respond with a JSON object:
{
  "recommendations": [{
    "type": "<NEW_POLICY|POLICY_MODIFICATION|POLICY_DEACTIVATION|POLICY_PRIORITY_CHANGE|EMERGENCY_RESPONSE|OPTIMIZATION>",
    "priority": "<LOW|MEDIUM|HIGH|URGENT|CRITICAL>",
    "confidence": <0-1>,
    "reasoning": "<text>",
    "policyName": "<name>",
    "description": "<text>",
    "policyType": "<AUTHORIZATION|AUTHENTICATION|POSTURE|PROFILING|GUEST_ACCESS|DEVICE_COMPLIANCE|THREAT_RESPONSE>",
    "conditions": "<JSON string>",
    "actions": "<JSON string>",
    "policyPriority": <1-10>,
    "expectedImpact": <0-1>,
    "riskReduction": <0-10>
  }]
}`, assessmentJSON)

	reply, err := r.client.Complete(ctx, recommendationSystemPrompt, prompt)
	if err != nil {
		r.logger.Warn(ctx, "model recommendation failed, using heuristic fallback", logger.Fields{
			"assessment_id": assessment.AssessmentID,
			"error":         err.Error(),
		})
		return r.fallback.RecommendForAssessment(ctx, assessment)
	}

	recs, err := r.parseRecommendations(reply, assessment)
	if err != nil || len(recs) == 0 {
		r.logger.Warn(ctx, "unparseable model recommendations, using heuristic fallback", logger.Fields{
			"assessment_id": assessment.AssessmentID,
		})
		return r.fallback.RecommendForAssessment(ctx, assessment)
	}
	return recs, nil
}

func (r *llmPolicyRecommender) RecommendForThreat(ctx context.Context, detection *models.ThreatDetection) ([]models.PolicyRecommendation, error) {
	return r.fallback.RecommendForThreat(ctx, detection)
}

func (r *llmPolicyRecommender) RecommendForSession(ctx context.Context, session *models.Session) ([]models.PolicyRecommendation, error) {
	return r.fallback.RecommendForSession(ctx, session)
}

func (r *llmPolicyRecommender) RecommendForUser(ctx context.Context, userName string) ([]models.PolicyRecommendation, error) {
	return r.fallback.RecommendForUser(ctx, userName)
}

func (r *llmPolicyRecommender) RecommendForEmergency(ctx context.Context, emergency map[string]string) ([]models.PolicyRecommendation, error) {
	return r.fallback.RecommendForEmergency(ctx, emergency)
}

func (r *llmPolicyRecommender) parseRecommendations(reply string, assessment *models.RiskAssessment) ([]models.PolicyRecommendation, error) {
	var parsed recommendationResponse
	if err := json.Unmarshal([]byte(extractJSON(reply)), &parsed); err != nil {
		return nil, err
	}

	recs := make([]models.PolicyRecommendation, 0, len(parsed.Recommendations))
	for _, pr := range parsed.Recommendations {
		priority := models.Priority(pr.Priority)
		if priority.Level() == 0 {
			priority = models.PriorityMedium
		}
		recs = append(recs, models.PolicyRecommendation{
			RecommendationID:       "model-" + constants.RecommendationIDPrefix + shortID(),
			TriggeredBy:            assessment.SessionID,
			Type:                   models.RecommendationType(pr.Type),
			Confidence:             pr.Confidence,
			Priority:               priority,
			GeneratedAt:            time.Now(),
			AIModelVersion:         constants.RecommendationModelVersion,
			Reasoning:              pr.Reasoning,
			RecommendedPolicyName:  pr.PolicyName,
			RecommendedDescription: pr.Description,
			RecommendedPolicyType:  models.PolicyType(pr.PolicyType),
			RecommendedConditions:  pr.Conditions,
			RecommendedActions:     pr.Actions,
			RecommendedPriority:    pr.PolicyPriority,
			ExpectedImpact:         pr.ExpectedImpact,
			RiskReduction:          pr.RiskReduction,
			Complexity:             models.ComplexityModerate,
		})
	}
	return recs, nil
}
