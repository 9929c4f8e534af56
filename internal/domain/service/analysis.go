// Package service defines the domain-level contracts for session analysis.
// Implementations live under internal/application/service and
// internal/infrastructure.
package service

import (
	"context"

	"github.com/turtacn/naps/internal/domain/models"
)

// RiskScorer produces risk assessments for sessions, users and devices.
type RiskScorer interface {
	// AssessSession scores a single session and classifies it into a risk band.
	AssessSession(ctx context.Context, session *models.Session) (*models.RiskAssessment, error)

	// AssessUser aggregates the risk across all of a user's sessions.
	AssessUser(ctx context.Context, userName string, sessions []*models.Session) (*models.RiskAssessment, error)

	// AssessDevice aggregates the risk across all sessions from one endpoint.
	AssessDevice(ctx context.Context, macAddress string, sessions []*models.Session) (*models.RiskAssessment, error)
}

// ThreatDetector finds threats in session activity.
type ThreatDetector interface {
	// DetectThreats inspects a session and returns zero or more detections.
	// Every detection is returned; callers must not assume at most one.
	DetectThreats(ctx context.Context, session *models.Session) ([]models.ThreatDetection, error)
}

// PolicyRecommender turns analysis results into policy recommendations.
type PolicyRecommender interface {
	// RecommendForAssessment builds recommendations from a risk assessment.
	RecommendForAssessment(ctx context.Context, assessment *models.RiskAssessment) ([]models.PolicyRecommendation, error)

	// RecommendForThreat builds recommendations in response to a detection.
	RecommendForThreat(ctx context.Context, detection *models.ThreatDetection) ([]models.PolicyRecommendation, error)

	// RecommendForSession builds a baseline recommendation from session
	// attributes alone.
	RecommendForSession(ctx context.Context, session *models.Session) ([]models.PolicyRecommendation, error)

	// RecommendForUser builds an adaptive recommendation from a user's
	// observed behavior.
	RecommendForUser(ctx context.Context, userName string) ([]models.PolicyRecommendation, error)

	// RecommendForEmergency builds an immediate lockdown recommendation from
	// an emergency context.
	RecommendForEmergency(ctx context.Context, emergency map[string]string) ([]models.PolicyRecommendation, error)
}

// PolicyStore persists materialized policies.
type PolicyStore interface {
	Save(ctx context.Context, policy *models.Policy) error
	FindByID(ctx context.Context, policyID string) (*models.Policy, error)
	List(ctx context.Context) ([]*models.Policy, error)
	ListByStatus(ctx context.Context, status models.PolicyStatus) ([]*models.Policy, error)
	UpdateStatus(ctx context.Context, policyID string, status models.PolicyStatus, updatedBy string) error
	Delete(ctx context.Context, policyID string) error
}

// EventPublisher forwards security events to external consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *models.NetworkEvent) error
	Close() error
}
