// Package service provides the application-level analysis services that turn
// sessions into risk assessments, threat detections and policy
// recommendations.
package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// heuristicRiskScorer is the rule-based RiskScorer. It scores sessions from
// device identity, authentication strength and posture, with a small noise
// term so repeated assessments of identical sessions vary.
type heuristicRiskScorer struct {
	logger logger.Logger
	rng    *rand.Rand
}

// NewHeuristicRiskScorer creates the rule-based risk scorer.
func NewHeuristicRiskScorer(log logger.Logger) domainService.RiskScorer {
	return &heuristicRiskScorer{
		logger: log.WithComponent(constants.ComponentRiskScorer),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *heuristicRiskScorer) AssessSession(ctx context.Context, session *models.Session) (*models.RiskAssessment, error) {
	score := s.scoreSession(session)
	level := models.RiskLevelFromScore(score)

	assessment := &models.RiskAssessment{
		AssessmentID:     constants.AssessmentIDPrefix + shortID(),
		SessionID:        session.SessionID,
		UserName:         session.UserName,
		MACAddress:       session.MACAddress,
		IPAddress:        session.IPAddress,
		OverallRiskScore: score,
		RiskLevel:        level,
		Confidence:       0.85 + s.rng.Float64()*0.15,
		AssessmentTime:   time.Now(),
		AIModelVersion:   constants.RiskModelVersion,
		RiskFactors:      s.riskFactors(session),
		RawFeatures:      rawFeatures(session),
		Recommendations:  recommendationsForLevel(level),
		AssessmentReason: "AI-based behavioral and contextual analysis",
	}

	s.logger.Debug(ctx, "session risk assessed", logger.Fields{
		"session_id": session.SessionID,
		"risk_score": score,
		"risk_level": level,
	})
	return assessment, nil
}

func (s *heuristicRiskScorer) AssessUser(ctx context.Context, userName string, sessions []*models.Session) (*models.RiskAssessment, error) {
	score := s.meanScore(sessions)
	return &models.RiskAssessment{
		AssessmentID:     "user-" + constants.AssessmentIDPrefix + shortID(),
		UserName:         userName,
		OverallRiskScore: score,
		RiskLevel:        models.RiskLevelFromScore(score),
		Confidence:       0.80,
		AssessmentTime:   time.Now(),
		AIModelVersion:   constants.RiskModelVersion,
		AssessmentReason: "Aggregated user behavior analysis across sessions",
	}, nil
}

func (s *heuristicRiskScorer) AssessDevice(ctx context.Context, macAddress string, sessions []*models.Session) (*models.RiskAssessment, error) {
	score := s.meanScore(sessions)
	return &models.RiskAssessment{
		AssessmentID:     "device-" + constants.AssessmentIDPrefix + shortID(),
		MACAddress:       macAddress,
		OverallRiskScore: score,
		RiskLevel:        models.RiskLevelFromScore(score),
		Confidence:       0.82,
		AssessmentTime:   time.Now(),
		AIModelVersion:   constants.RiskModelVersion,
		AssessmentReason: "Device behavior pattern analysis",
	}, nil
}

// scoreSession applies the additive risk rules to one session and clamps the
// result to [0, 10].
func (s *heuristicRiskScorer) scoreSession(session *models.Session) float64 {
	score := 5.0
	if session.DeviceType == models.DeviceUnknown {
		score += 2.0
	}
	if session.AuthenticationMethod == constants.AuthMethodGuest {
		score += 1.5
	}
	if session.PostureStatus != constants.PostureCompliant {
		score += 1.0
	}
	score += s.rng.Float64()*2.0 - 1.0
	return clamp(score, 0.0, 10.0)
}

func (s *heuristicRiskScorer) meanScore(sessions []*models.Session) float64 {
	if len(sessions) == 0 {
		return 5.0
	}
	sum := 0.0
	for _, session := range sessions {
		sum += s.scoreSession(session)
	}
	return sum / float64(len(sessions))
}

func (s *heuristicRiskScorer) riskFactors(session *models.Session) []models.RiskFactor {
	deviceScore := 3.0
	if session.DeviceType == models.DeviceUnknown {
		deviceScore = 8.0
	}
	authScore := 2.0
	if session.AuthenticationMethod == constants.AuthMethodGuest {
		authScore = 6.0
	}
	return []models.RiskFactor{
		{
			FactorName:  "Device Type",
			Weight:      0.30,
			Score:       deviceScore,
			Description: "Device identification and classification",
			Type:        models.FactorDevice,
		},
		{
			FactorName:  "Authentication Method",
			Weight:      0.25,
			Score:       authScore,
			Description: "Authentication strength and method",
			Type:        models.FactorAuthentication,
		},
		{
			FactorName:  "Behavioral Pattern",
			Weight:      0.45,
			Score:       1.0 + s.rng.Float64()*8.0,
			Description: "User and device behavioral analysis",
			Type:        models.FactorBehavioral,
		},
	}
}

func rawFeatures(session *models.Session) map[string]string {
	return map[string]string{
		"session_duration": session.Duration().String(),
		"device_type":      string(session.DeviceType),
		"auth_method":      string(session.AuthenticationMethod),
		"location":         session.Location,
	}
}

// recommendationsForLevel returns the advisory strings attached to an
// assessment at a given band.
func recommendationsForLevel(level models.RiskLevel) []string {
	switch level {
	case models.RiskVeryHigh, models.RiskCritical:
		return []string{
			"Immediate quarantine recommended",
			"Disconnect session and investigate",
			"Alert security team",
		}
	case models.RiskHigh:
		return []string{
			"Enhanced monitoring required",
			"Restrict network access",
			"Require additional authentication",
		}
	case models.RiskMedium:
		return []string{
			"Increased logging and monitoring",
			"Periodic re-assessment",
		}
	default:
		return []string{"Continue normal monitoring"}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// shortID returns the first 8 characters of a fresh UUID.
func shortID() string {
	return uuid.NewString()[:8]
}
