package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// sessionTTL bounds how long an idle session stays queryable.
const sessionTTL = 24 * time.Hour

// AnalysisResult bundles everything one pipeline run produced for a session.
type AnalysisResult struct {
	Session         *models.Session               `json:"session"`
	Assessment      *models.RiskAssessment        `json:"assessment"`
	Detections      []models.ThreatDetection      `json:"detections"`
	Recommendations []models.PolicyRecommendation `json:"recommendations"`
	Policy          *models.Policy                `json:"policy,omitempty"`
}

// AnalysisOrchestrator runs the full analysis chain for a session: risk
// assessment, threat detection, policy recommendation and conditional policy
// materialization. It also serves as the session registry.
type AnalysisOrchestrator interface {
	// AnalyzeSession runs the full chain synchronously and returns the
	// combined result.
	AnalyzeSession(ctx context.Context, session *models.Session) (*AnalysisResult, error)

	// ActiveSessions returns every session currently tracked.
	ActiveSessions(ctx context.Context) []*models.Session

	// SessionByID looks up one tracked session.
	SessionByID(ctx context.Context, sessionID string) (*models.Session, error)

	// SessionsByUser returns the tracked sessions belonging to a user.
	SessionsByUser(ctx context.Context, userName string) []*models.Session

	// SessionsByDevice returns the tracked sessions from one endpoint.
	SessionsByDevice(ctx context.Context, macAddress string) []*models.Session

	// AssessUser aggregates risk across a user's tracked sessions.
	AssessUser(ctx context.Context, userName string) (*models.RiskAssessment, error)

	// AssessDevice aggregates risk across an endpoint's tracked sessions.
	AssessDevice(ctx context.Context, macAddress string) (*models.RiskAssessment, error)

	// RiskHistory returns the recorded assessments for a session, newest
	// first.
	RiskHistory(ctx context.Context, sessionID string) []*models.RiskAssessment

	// AnalyzeUserBehavior runs threat detection across a user's tracked
	// sessions and rolls the findings into an insider-threat detection.
	AnalyzeUserBehavior(ctx context.Context, userName string) ([]models.ThreatDetection, error)

	// AnalyzeDeviceBehavior runs threat detection across an endpoint's
	// tracked sessions and rolls the findings into a compromise detection.
	AnalyzeDeviceBehavior(ctx context.Context, macAddress string) ([]models.ThreatDetection, error)

	// ActiveThreats returns every unresolved detection.
	ActiveThreats(ctx context.Context) []*models.ThreatDetection

	// ThreatsBySeverity returns recorded detections at the given severity,
	// newest first.
	ThreatsBySeverity(ctx context.Context, severity models.ThreatSeverity) []*models.ThreatDetection

	// ThreatStatistics summarizes recorded detections.
	ThreatStatistics(ctx context.Context) *ThreatStatistics

	// ResolveThreat marks a detection as handled.
	ResolveThreat(ctx context.Context, detectionID, resolvedBy string) (*models.ThreatDetection, error)

	// RecommendationHistory returns recorded recommendations, newest first.
	RecommendationHistory(ctx context.Context) []*models.PolicyRecommendation

	// RecommendForUser generates and records a user-scoped recommendation.
	RecommendForUser(ctx context.Context, userName string) ([]models.PolicyRecommendation, error)

	// RecommendForEmergency generates and records an emergency lockdown
	// recommendation from the given context.
	RecommendForEmergency(ctx context.Context, emergency map[string]string) ([]models.PolicyRecommendation, error)

	// ImplementRecommendation converts a recorded recommendation into a
	// draft policy and persists it.
	ImplementRecommendation(ctx context.Context, recommendationID string) (*models.Policy, error)

	// RejectRecommendation discards a recorded recommendation, keeping the
	// operator's feedback in the log.
	RejectRecommendation(ctx context.Context, recommendationID, feedback string) error
}

type analysisOrchestrator struct {
	riskScorer  domainService.RiskScorer
	detector    domainService.ThreatDetector
	recommender domainService.PolicyRecommender
	policyStore domainService.PolicyStore
	sessions    *gocache.Cache
	history     *analysisHistory
	metrics     *monitoring.Metrics
	logger      logger.Logger
}

// NewAnalysisOrchestrator wires the analysis chain together.
func NewAnalysisOrchestrator(
	riskScorer domainService.RiskScorer,
	detector domainService.ThreatDetector,
	recommender domainService.PolicyRecommender,
	policyStore domainService.PolicyStore,
	metrics *monitoring.Metrics,
	log logger.Logger,
) AnalysisOrchestrator {
	return &analysisOrchestrator{
		riskScorer:  riskScorer,
		detector:    detector,
		recommender: recommender,
		policyStore: policyStore,
		sessions:    gocache.New(sessionTTL, time.Hour),
		history:     newAnalysisHistory(),
		metrics:     metrics,
		logger:      log.WithComponent(constants.ComponentOrchestrator),
	}
}

func (o *analysisOrchestrator) AnalyzeSession(ctx context.Context, session *models.Session) (*AnalysisResult, error) {
	start := time.Now()
	o.sessions.SetDefault(session.SessionID, session)

	assessment, err := o.riskScorer.AssessSession(ctx, session)
	if err != nil {
		o.metrics.RecordAnalysis("error", time.Since(start))
		return nil, errors.ErrInternal("risk assessment failed").WithCause(err)
	}
	o.metrics.RiskAssessments.WithLabelValues(string(assessment.RiskLevel)).Inc()
	o.history.recordAssessment(assessment)

	detections, err := o.detector.DetectThreats(ctx, session)
	if err != nil {
		o.metrics.RecordAnalysis("error", time.Since(start))
		return nil, errors.ErrInternal("threat detection failed").WithCause(err)
	}
	o.recordDetections(detections)

	recommendations, err := o.recommend(ctx, session, assessment, detections)
	if err != nil {
		o.metrics.RecordAnalysis("error", time.Since(start))
		return nil, errors.ErrInternal("policy recommendation failed").WithCause(err)
	}
	o.recordRecommendations(recommendations)

	o.annotate(session, assessment, detections, recommendations)

	result := &AnalysisResult{
		Session:         session,
		Assessment:      assessment,
		Detections:      detections,
		Recommendations: recommendations,
	}

	if policy := o.maybeCreatePolicy(ctx, session, assessment, detections, recommendations); policy != nil {
		result.Policy = policy
	}

	o.metrics.RecordAnalysis("ok", time.Since(start))
	o.logger.Info(ctx, "analysis pipeline finished", logger.Fields{
		"session_id":      session.SessionID,
		"risk_score":      assessment.OverallRiskScore,
		"risk_level":      assessment.RiskLevel,
		"threat_count":    len(detections),
		"recommendations": len(recommendations),
		"policy_created":  result.Policy != nil,
	})
	return result, nil
}

// recommend collects recommendations from all triggers: one baseline
// session recommendation, the risk-band set for the assessment, plus one set
// per detection.
func (o *analysisOrchestrator) recommend(
	ctx context.Context,
	session *models.Session,
	assessment *models.RiskAssessment,
	detections []models.ThreatDetection,
) ([]models.PolicyRecommendation, error) {
	recommendations, err := o.recommender.RecommendForSession(ctx, session)
	if err != nil {
		return nil, err
	}
	assessmentRecs, err := o.recommender.RecommendForAssessment(ctx, assessment)
	if err != nil {
		return nil, err
	}
	recommendations = append(recommendations, assessmentRecs...)
	for i := range detections {
		threatRecs, err := o.recommender.RecommendForThreat(ctx, &detections[i])
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, threatRecs...)
	}
	return recommendations, nil
}

func (o *analysisOrchestrator) recordDetections(detections []models.ThreatDetection) {
	for i := range detections {
		o.metrics.ThreatsDetected.WithLabelValues(string(detections[i].Severity)).Inc()
		o.history.recordDetection(&detections[i])
	}
}

func (o *analysisOrchestrator) recordRecommendations(recommendations []models.PolicyRecommendation) {
	for i := range recommendations {
		o.metrics.Recommendations.WithLabelValues(string(recommendations[i].Priority)).Inc()
		o.history.recordRecommendation(&recommendations[i])
	}
}

// annotate writes the analysis outcome back onto the session. The threat
// level reflects the worst detection, not an arbitrary one.
func (o *analysisOrchestrator) annotate(
	session *models.Session,
	assessment *models.RiskAssessment,
	detections []models.ThreatDetection,
	recommendations []models.PolicyRecommendation,
) {
	session.RiskScore = assessment.OverallRiskScore
	if len(detections) > 0 {
		session.ThreatLevel = string(models.MaxSeverity(detections))
	}
	if len(recommendations) > 0 {
		session.AIRecommendation = recommendations[0].RecommendedActions
	}
	session.LastUpdateTime = time.Now()
	o.sessions.SetDefault(session.SessionID, session)
}

// maybeCreatePolicy materializes a draft policy when the analysis results
// warrant enforcement: high risk score, a HIGH or CRITICAL detection, or a
// recommendation whose actions quarantine or block.
func (o *analysisOrchestrator) maybeCreatePolicy(
	ctx context.Context,
	session *models.Session,
	assessment *models.RiskAssessment,
	detections []models.ThreatDetection,
	recommendations []models.PolicyRecommendation,
) *models.Policy {
	if !shouldCreatePolicy(assessment, detections, recommendations) {
		return nil
	}

	maxSeverity := models.MaxSeverity(detections)
	lead := leadRecommendation(recommendations)

	policy := &models.Policy{
		PolicyID: fmt.Sprintf("AI-Policy-%s-%d",
			strings.ReplaceAll(session.DeviceType.DisplayName(), " ", "-"),
			time.Now().UnixMilli()),
		Name: fmt.Sprintf("AI-Policy-%s-%d",
			strings.ReplaceAll(session.DeviceType.DisplayName(), " ", "-"),
			time.Now().UnixMilli()),
		Description: fmt.Sprintf(
			"AI-generated policy for %s device with risk score %.2f and threat severity %s. Recommendation: %s",
			session.DeviceType.DisplayName(), assessment.OverallRiskScore, maxSeverity, lead.RecommendedActions),
		Type:         lead.RecommendedPolicyType,
		Status:       models.PolicyDraft,
		Priority:     lead.RecommendedPriority,
		Conditions:   lead.RecommendedConditions,
		Actions:      lead.RecommendedActions,
		RiskScore:    assessment.OverallRiskScore,
		AIConfidence: lead.Confidence,
		Source:       models.SourceAIRecommended,
		CreatedBy:    "AI-PolicyEngine",
		CreatedAt:    time.Now(),
	}

	if err := o.policyStore.Save(ctx, policy); err != nil {
		o.logger.Error(ctx, "failed to persist materialized policy", err, logger.Fields{
			"session_id": session.SessionID,
			"policy_id":  policy.PolicyID,
		})
		return nil
	}

	o.metrics.PoliciesCreated.WithLabelValues(string(policy.Type)).Inc()
	o.logger.Info(ctx, "policy materialized from analysis", logger.Fields{
		"session_id": session.SessionID,
		"policy_id":  policy.PolicyID,
		"severity":   maxSeverity,
	})
	return policy
}

// shouldCreatePolicy is the materialization gate.
func shouldCreatePolicy(
	assessment *models.RiskAssessment,
	detections []models.ThreatDetection,
	recommendations []models.PolicyRecommendation,
) bool {
	if assessment.OverallRiskScore > 7.0 {
		return true
	}
	if models.MaxSeverity(detections).AtLeast(models.ThreatSeverityHigh) && len(detections) > 0 {
		return true
	}
	for _, rec := range recommendations {
		actions := strings.ToLower(rec.RecommendedActions)
		if strings.Contains(actions, "quarantine") || strings.Contains(actions, "block") {
			return true
		}
	}
	return false
}

// leadRecommendation picks the highest-priority recommendation to shape the
// materialized policy.
func leadRecommendation(recommendations []models.PolicyRecommendation) models.PolicyRecommendation {
	if len(recommendations) == 0 {
		return models.PolicyRecommendation{
			RecommendedPolicyType: models.PolicyThreatResponse,
			RecommendedPriority:   1,
			RecommendedActions:    `{"action": "monitor"}`,
		}
	}
	lead := recommendations[0]
	for _, rec := range recommendations[1:] {
		if rec.Priority.Level() > lead.Priority.Level() {
			lead = rec
		}
	}
	return lead
}

// ============================================================================
// Session registry
// ============================================================================

func (o *analysisOrchestrator) ActiveSessions(ctx context.Context) []*models.Session {
	items := o.sessions.Items()
	sessions := make([]*models.Session, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.Object.(*models.Session))
	}
	return sessions
}

func (o *analysisOrchestrator) SessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	if v, found := o.sessions.Get(sessionID); found {
		return v.(*models.Session), nil
	}
	return nil, errors.ErrNotFound("session", sessionID)
}

func (o *analysisOrchestrator) SessionsByUser(ctx context.Context, userName string) []*models.Session {
	var matched []*models.Session
	for _, session := range o.ActiveSessions(ctx) {
		if session.UserName == userName {
			matched = append(matched, session)
		}
	}
	return matched
}

func (o *analysisOrchestrator) SessionsByDevice(ctx context.Context, macAddress string) []*models.Session {
	var matched []*models.Session
	for _, session := range o.ActiveSessions(ctx) {
		if session.MACAddress == macAddress {
			matched = append(matched, session)
		}
	}
	return matched
}

func (o *analysisOrchestrator) AssessUser(ctx context.Context, userName string) (*models.RiskAssessment, error) {
	return o.riskScorer.AssessUser(ctx, userName, o.SessionsByUser(ctx, userName))
}

func (o *analysisOrchestrator) AssessDevice(ctx context.Context, macAddress string) (*models.RiskAssessment, error) {
	return o.riskScorer.AssessDevice(ctx, macAddress, o.SessionsByDevice(ctx, macAddress))
}

// ============================================================================
// Behavior analysis
// ============================================================================

func (o *analysisOrchestrator) AnalyzeUserBehavior(ctx context.Context, userName string) ([]models.ThreatDetection, error) {
	detections, err := o.detectAcross(ctx, o.SessionsByUser(ctx, userName))
	if err != nil {
		return nil, errors.ErrInternal("user behavior analysis failed").WithCause(err)
	}
	if len(detections) > 0 {
		detections = append(detections, userBehaviorThreat(userName, detections))
	}
	o.recordDetections(detections)

	o.logger.Info(ctx, "user behavior analyzed", logger.Fields{
		"user_name":    userName,
		"threat_count": len(detections),
	})
	return detections, nil
}

func (o *analysisOrchestrator) AnalyzeDeviceBehavior(ctx context.Context, macAddress string) ([]models.ThreatDetection, error) {
	detections, err := o.detectAcross(ctx, o.SessionsByDevice(ctx, macAddress))
	if err != nil {
		return nil, errors.ErrInternal("device behavior analysis failed").WithCause(err)
	}
	if len(detections) > 0 {
		detections = append(detections, deviceBehaviorThreat(macAddress))
	}
	o.recordDetections(detections)

	o.logger.Info(ctx, "device behavior analyzed", logger.Fields{
		"mac_address":  macAddress,
		"threat_count": len(detections),
	})
	return detections, nil
}

func (o *analysisOrchestrator) detectAcross(ctx context.Context, sessions []*models.Session) ([]models.ThreatDetection, error) {
	var detections []models.ThreatDetection
	for _, session := range sessions {
		found, err := o.detector.DetectThreats(ctx, session)
		if err != nil {
			return nil, err
		}
		detections = append(detections, found...)
	}
	return detections, nil
}

// ============================================================================
// Recommendation lifecycle
// ============================================================================

func (o *analysisOrchestrator) RecommendForUser(ctx context.Context, userName string) ([]models.PolicyRecommendation, error) {
	recommendations, err := o.recommender.RecommendForUser(ctx, userName)
	if err != nil {
		return nil, errors.ErrInternal("user recommendation failed").WithCause(err)
	}
	o.recordRecommendations(recommendations)
	return recommendations, nil
}

func (o *analysisOrchestrator) RecommendForEmergency(ctx context.Context, emergency map[string]string) ([]models.PolicyRecommendation, error) {
	recommendations, err := o.recommender.RecommendForEmergency(ctx, emergency)
	if err != nil {
		return nil, errors.ErrInternal("emergency recommendation failed").WithCause(err)
	}
	o.recordRecommendations(recommendations)
	return recommendations, nil
}

func (o *analysisOrchestrator) ImplementRecommendation(ctx context.Context, recommendationID string) (*models.Policy, error) {
	v, found := o.history.recommendations.Get(recommendationID)
	if !found {
		return nil, errors.ErrNotFound("recommendation", recommendationID)
	}
	rec := v.(*models.PolicyRecommendation)

	policy := &models.Policy{
		PolicyID:     "policy-from-" + constants.RecommendationIDPrefix + shortID(),
		Name:         rec.RecommendedPolicyName,
		Description:  rec.RecommendedDescription,
		Type:         rec.RecommendedPolicyType,
		Status:       models.PolicyDraft,
		Priority:     rec.RecommendedPriority,
		Conditions:   rec.RecommendedConditions,
		Actions:      rec.RecommendedActions,
		RiskScore:    10.0 - rec.RiskReduction,
		AIConfidence: rec.Confidence,
		Source:       models.SourceAIRecommended,
		CreatedBy:    "AI-PolicyEngine",
		CreatedAt:    time.Now(),
	}
	if err := o.policyStore.Save(ctx, policy); err != nil {
		return nil, errors.ErrInternal("failed to persist implemented policy").WithCause(err)
	}

	o.metrics.PoliciesCreated.WithLabelValues(string(policy.Type)).Inc()
	o.logger.Info(ctx, "recommendation implemented as policy", logger.Fields{
		"recommendation_id": recommendationID,
		"policy_id":         policy.PolicyID,
	})
	return policy, nil
}

func (o *analysisOrchestrator) RejectRecommendation(ctx context.Context, recommendationID, feedback string) error {
	if _, found := o.history.recommendations.Get(recommendationID); !found {
		return errors.ErrNotFound("recommendation", recommendationID)
	}
	o.history.recommendations.Delete(recommendationID)

	o.logger.Info(ctx, "recommendation rejected", logger.Fields{
		"recommendation_id": recommendationID,
		"feedback":          feedback,
	})
	return nil
}
