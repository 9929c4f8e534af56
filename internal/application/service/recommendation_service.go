package service

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// heuristicPolicyRecommender is the rule-based PolicyRecommender. The set of
// recommendations emitted for an assessment depends on its risk band, and for
// a detection on its severity.
type heuristicPolicyRecommender struct {
	logger logger.Logger
}

// NewHeuristicPolicyRecommender creates the rule-based recommender.
func NewHeuristicPolicyRecommender(log logger.Logger) domainService.PolicyRecommender {
	return &heuristicPolicyRecommender{
		logger: log.WithComponent(constants.ComponentRecommender),
	}
}

func (r *heuristicPolicyRecommender) RecommendForAssessment(ctx context.Context, assessment *models.RiskAssessment) ([]models.PolicyRecommendation, error) {
	var recs []models.PolicyRecommendation

	switch assessment.RiskLevel {
	case models.RiskCritical, models.RiskVeryHigh:
		recs = append(recs, emergencyQuarantine(assessment), threatResponse(assessment))
	case models.RiskHigh:
		recs = append(recs, enhancedMonitoring(assessment), accessRestriction(assessment))
	case models.RiskMedium:
		recs = append(recs, postureCompliance(assessment))
	default:
		recs = append(recs, optimization(assessment))
	}

	r.logger.Debug(ctx, "recommendations generated for assessment", logger.Fields{
		"assessment_id": assessment.AssessmentID,
		"risk_level":    assessment.RiskLevel,
		"count":         len(recs),
	})
	return recs, nil
}

func (r *heuristicPolicyRecommender) RecommendForThreat(ctx context.Context, detection *models.ThreatDetection) ([]models.PolicyRecommendation, error) {
	var rec models.PolicyRecommendation

	switch detection.Severity {
	case models.ThreatSeverityCritical:
		rec = criticalThreatResponse(detection)
	case models.ThreatSeverityHigh:
		rec = highThreatContainment(detection)
	case models.ThreatSeverityMedium:
		rec = mediumThreatMonitoring(detection)
	default:
		rec = lowThreatLogging(detection)
	}

	r.logger.Debug(ctx, "recommendation generated for threat", logger.Fields{
		"detection_id": detection.DetectionID,
		"severity":     detection.Severity,
	})
	return []models.PolicyRecommendation{rec}, nil
}

func (r *heuristicPolicyRecommender) RecommendForSession(ctx context.Context, session *models.Session) ([]models.PolicyRecommendation, error) {
	rec := models.PolicyRecommendation{
		RecommendationID:       "session-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            session.SessionID,
		Type:                   models.RecommendNewPolicy,
		Confidence:             0.87,
		Priority:               models.PriorityMedium,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "Session behavior analysis indicates need for enhanced monitoring",
		RecommendedPolicyName:  "Session-Specific Monitoring Policy",
		RecommendedDescription: "Enhanced monitoring for session " + session.SessionID,
		RecommendedPolicyType:  models.PolicyAuthorization,
		RecommendedConditions:  fmt.Sprintf(`{"sessionId": %q}`, session.SessionID),
		RecommendedActions:     `{"action": "monitor", "level": "enhanced"}`,
		RecommendedPriority:    5,
		ExpectedImpact:         0.75,
		RiskReduction:          2.5,
		Complexity:             models.ComplexitySimple,
	}
	return []models.PolicyRecommendation{rec}, nil
}

func (r *heuristicPolicyRecommender) RecommendForUser(ctx context.Context, userName string) ([]models.PolicyRecommendation, error) {
	rec := models.PolicyRecommendation{
		RecommendationID:       "user-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            userName,
		Type:                   models.RecommendPolicyModification,
		Confidence:             0.82,
		Priority:               models.PriorityLow,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "User behavior pattern analysis suggests policy adjustment",
		RecommendedPolicyName:  "User Behavior Policy",
		RecommendedDescription: "Adaptive policy for user " + userName,
		RecommendedPolicyType:  models.PolicyAuthentication,
		RecommendedConditions:  fmt.Sprintf(`{"userName": %q}`, userName),
		RecommendedActions:     `{"action": "adapt", "level": "dynamic"}`,
		RecommendedPriority:    3,
		ExpectedImpact:         0.65,
		RiskReduction:          1.8,
		Complexity:             models.ComplexityModerate,
	}
	return []models.PolicyRecommendation{rec}, nil
}

func (r *heuristicPolicyRecommender) RecommendForEmergency(ctx context.Context, emergency map[string]string) ([]models.PolicyRecommendation, error) {
	rec := models.PolicyRecommendation{
		RecommendationID:            "emergency-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:                 "emergency-system",
		Type:                        models.RecommendEmergencyResponse,
		Confidence:                  0.95,
		Priority:                    models.PriorityCritical,
		GeneratedAt:                 time.Now(),
		AIModelVersion:              constants.RecommendationModelVersion,
		Reasoning:                   "Emergency situation detected requiring immediate policy response",
		Context:                     emergency,
		RecommendedPolicyName:       "Emergency Response Policy",
		RecommendedDescription:      "Immediate response to security emergency",
		RecommendedPolicyType:       models.PolicyThreatResponse,
		RecommendedConditions:       `{"emergency": true}`,
		RecommendedActions:          `{"action": "lockdown", "scope": "network"}`,
		RecommendedPriority:         1,
		ExpectedImpact:              0.98,
		RiskReduction:               8.5,
		Complexity:                  models.ComplexitySimple,
		EstimatedImplementationTime: 300,
	}
	r.logger.Info(ctx, "emergency recommendation generated", logger.Fields{
		"recommendation_id": rec.RecommendationID,
		"context_keys":      len(emergency),
	})
	return []models.PolicyRecommendation{rec}, nil
}

// ============================================================================
// Assessment-driven recommendations
// ============================================================================

func emergencyQuarantine(assessment *models.RiskAssessment) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID: "quarantine-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:      assessment.SessionID,
		Type:             models.RecommendNewPolicy,
		Confidence:       0.95,
		Priority:         models.PriorityCritical,
		GeneratedAt:      time.Now(),
		AIModelVersion:   constants.RecommendationModelVersion,
		Reasoning:        "Critical risk level detected - immediate quarantine required",
		EvidencePoints: []string{
			fmt.Sprintf("Risk score: %v", assessment.OverallRiskScore),
			fmt.Sprintf("Risk level: %s", assessment.RiskLevel),
			fmt.Sprintf("AI confidence: %v", assessment.Confidence),
		},
		RecommendedPolicyName:       "Emergency Quarantine Policy",
		RecommendedDescription:      "Immediate quarantine for high-risk session",
		RecommendedPolicyType:       models.PolicyThreatResponse,
		RecommendedConditions:       `{"riskScore": {"operator": ">", "value": 8.0}}`,
		RecommendedActions:          `{"action": "quarantine", "vlan": "quarantine_vlan"}`,
		RecommendedPriority:         1,
		ExpectedImpact:              0.95,
		RiskReduction:               assessment.OverallRiskScore - 1.0,
		Complexity:                  models.ComplexitySimple,
		EstimatedImplementationTime: 180,
	}
}

func threatResponse(assessment *models.RiskAssessment) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "threat-resp-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            assessment.SessionID,
		Type:                   models.RecommendNewPolicy,
		Confidence:             0.90,
		Priority:               models.PriorityUrgent,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "High-risk session requires automated threat response",
		RecommendedPolicyName:  "Automated Threat Response",
		RecommendedDescription: "Automated response to detected threats",
		RecommendedPolicyType:  models.PolicyThreatResponse,
		RecommendedConditions:  `{"threatDetected": true}`,
		RecommendedActions:     `{"action": "isolate", "notify": "security_team"}`,
		RecommendedPriority:    2,
		ExpectedImpact:         0.88,
		RiskReduction:          6.5,
		Complexity:             models.ComplexityModerate,
	}
}

func enhancedMonitoring(assessment *models.RiskAssessment) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "monitor-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            assessment.SessionID,
		Type:                   models.RecommendPolicyModification,
		Confidence:             0.85,
		Priority:               models.PriorityHigh,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "High risk level requires enhanced monitoring",
		RecommendedPolicyName:  "Enhanced Monitoring Policy",
		RecommendedDescription: "Increased monitoring for high-risk sessions",
		RecommendedPolicyType:  models.PolicyAuthorization,
		RecommendedConditions:  `{"riskScore": {"operator": ">", "value": 6.0}}`,
		RecommendedActions:     `{"action": "monitor", "level": "enhanced", "frequency": "high"}`,
		RecommendedPriority:    3,
		ExpectedImpact:         0.75,
		RiskReduction:          3.2,
		Complexity:             models.ComplexitySimple,
	}
}

func accessRestriction(assessment *models.RiskAssessment) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "restrict-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            assessment.SessionID,
		Type:                   models.RecommendNewPolicy,
		Confidence:             0.82,
		Priority:               models.PriorityHigh,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "Risk level warrants access restrictions",
		RecommendedPolicyName:  "Access Restriction Policy",
		RecommendedDescription: "Restrict access for medium-high risk sessions",
		RecommendedPolicyType:  models.PolicyAuthorization,
		RecommendedConditions:  `{"riskScore": {"operator": "between", "min": 6.0, "max": 8.0}}`,
		RecommendedActions:     `{"action": "restrict", "resources": "sensitive_data"}`,
		RecommendedPriority:    4,
		ExpectedImpact:         0.70,
		RiskReduction:          2.8,
		Complexity:             models.ComplexityModerate,
	}
}

func postureCompliance(assessment *models.RiskAssessment) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "posture-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            assessment.SessionID,
		Type:                   models.RecommendNewPolicy,
		Confidence:             0.78,
		Priority:               models.PriorityMedium,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "Medium risk suggests need for posture compliance check",
		RecommendedPolicyName:  "Posture Compliance Policy",
		RecommendedDescription: "Ensure device compliance for medium risk sessions",
		RecommendedPolicyType:  models.PolicyPosture,
		RecommendedConditions:  `{"riskScore": {"operator": "between", "min": 4.0, "max": 6.0}}`,
		RecommendedActions:     `{"action": "check_posture", "remediate": true}`,
		RecommendedPriority:    5,
		ExpectedImpact:         0.65,
		RiskReduction:          2.0,
		Complexity:             models.ComplexityModerate,
	}
}

func optimization(assessment *models.RiskAssessment) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "optimize-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            assessment.SessionID,
		Type:                   models.RecommendOptimization,
		Confidence:             0.70,
		Priority:               models.PriorityLow,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "Low risk session - opportunity for policy optimization",
		RecommendedPolicyName:  "Policy Optimization",
		RecommendedDescription: "Optimize policies for better performance",
		RecommendedPolicyType:  models.PolicyAuthorization,
		RecommendedConditions:  `{"optimize": true}`,
		RecommendedActions:     `{"action": "optimize", "target": "performance"}`,
		RecommendedPriority:    10,
		ExpectedImpact:         0.60,
		RiskReduction:          0.5,
		Complexity:             models.ComplexityComplex,
	}
}

// ============================================================================
// Threat-driven recommendations
// ============================================================================

func criticalThreatResponse(detection *models.ThreatDetection) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:            "critical-threat-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:                 detection.DetectionID,
		Type:                        models.RecommendEmergencyResponse,
		Confidence:                  0.98,
		Priority:                    models.PriorityCritical,
		GeneratedAt:                 time.Now(),
		AIModelVersion:              constants.RecommendationModelVersion,
		Reasoning:                   fmt.Sprintf("Critical threat detected: %s", detection.ThreatType),
		RecommendedPolicyName:       "Critical Threat Response",
		RecommendedDescription:      "Immediate response to critical threat",
		RecommendedPolicyType:       models.PolicyThreatResponse,
		RecommendedConditions:       fmt.Sprintf(`{"threatType": %q}`, detection.ThreatType),
		RecommendedActions:          `{"action": "emergency_lockdown", "scope": "affected_segment"}`,
		RecommendedPriority:         1,
		ExpectedImpact:              0.99,
		RiskReduction:               9.0,
		Complexity:                  models.ComplexitySimple,
		EstimatedImplementationTime: 120,
	}
}

func highThreatContainment(detection *models.ThreatDetection) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "high-threat-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            detection.DetectionID,
		Type:                   models.RecommendNewPolicy,
		Confidence:             0.92,
		Priority:               models.PriorityUrgent,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "High severity threat requires immediate containment",
		RecommendedPolicyName:  "High Threat Containment",
		RecommendedDescription: "Contain high severity threats",
		RecommendedPolicyType:  models.PolicyThreatResponse,
		RecommendedConditions:  `{"threatSeverity": "HIGH"}`,
		RecommendedActions:     `{"action": "contain", "isolate": true}`,
		RecommendedPriority:    2,
		ExpectedImpact:         0.90,
		RiskReduction:          7.5,
		Complexity:             models.ComplexityModerate,
	}
}

func mediumThreatMonitoring(detection *models.ThreatDetection) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "medium-threat-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            detection.DetectionID,
		Type:                   models.RecommendPolicyModification,
		Confidence:             0.85,
		Priority:               models.PriorityHigh,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "Medium threat requires enhanced monitoring",
		RecommendedPolicyName:  "Medium Threat Monitoring",
		RecommendedDescription: "Enhanced monitoring for medium threats",
		RecommendedPolicyType:  models.PolicyAuthorization,
		RecommendedConditions:  `{"threatSeverity": "MEDIUM"}`,
		RecommendedActions:     `{"action": "monitor", "alert": true}`,
		RecommendedPriority:    5,
		ExpectedImpact:         0.75,
		RiskReduction:          4.0,
		Complexity:             models.ComplexitySimple,
	}
}

func lowThreatLogging(detection *models.ThreatDetection) models.PolicyRecommendation {
	return models.PolicyRecommendation{
		RecommendationID:       "low-threat-" + constants.RecommendationIDPrefix + shortID(),
		TriggeredBy:            detection.DetectionID,
		Type:                   models.RecommendOptimization,
		Confidence:             0.70,
		Priority:               models.PriorityLow,
		GeneratedAt:            time.Now(),
		AIModelVersion:         constants.RecommendationModelVersion,
		Reasoning:              "Low threat - log for analysis",
		RecommendedPolicyName:  "Low Threat Logging",
		RecommendedDescription: "Log low severity threats for analysis",
		RecommendedPolicyType:  models.PolicyAuthorization,
		RecommendedConditions:  `{"threatSeverity": "LOW"}`,
		RecommendedActions:     `{"action": "log", "analyze": true}`,
		RecommendedPriority:    8,
		ExpectedImpact:         0.60,
		RiskReduction:          1.0,
		Complexity:             models.ComplexitySimple,
	}
}
