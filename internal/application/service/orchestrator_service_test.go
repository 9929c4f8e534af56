package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/internal/infrastructure/persistence/memory"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// promauto registers collectors against the default registry, so the test
// binary constructs the metrics once and shares them across tests.
var testMetrics = monitoring.NewMetrics()

// stubScorer returns a fixed score so the materialization gate can be tested
// deterministically.
type stubScorer struct {
	score float64
}

func (s *stubScorer) AssessSession(ctx context.Context, session *models.Session) (*models.RiskAssessment, error) {
	return &models.RiskAssessment{
		AssessmentID:     "risk-" + shortID(),
		SessionID:        session.SessionID,
		UserName:         session.UserName,
		MACAddress:       session.MACAddress,
		OverallRiskScore: s.score,
		RiskLevel:        models.RiskLevelFromScore(s.score),
		Confidence:       0.9,
		AssessmentTime:   time.Now(),
	}, nil
}

func (s *stubScorer) AssessUser(ctx context.Context, userName string, sessions []*models.Session) (*models.RiskAssessment, error) {
	return &models.RiskAssessment{
		AssessmentID:     "user-risk-" + shortID(),
		UserName:         userName,
		OverallRiskScore: s.score,
		RiskLevel:        models.RiskLevelFromScore(s.score),
		AssessmentTime:   time.Now(),
	}, nil
}

func (s *stubScorer) AssessDevice(ctx context.Context, macAddress string, sessions []*models.Session) (*models.RiskAssessment, error) {
	return &models.RiskAssessment{
		AssessmentID:     "device-risk-" + shortID(),
		MACAddress:       macAddress,
		OverallRiskScore: s.score,
		RiskLevel:        models.RiskLevelFromScore(s.score),
		AssessmentTime:   time.Now(),
	}, nil
}

// stubDetector emits a fixed set of severities for every session.
type stubDetector struct {
	severities []models.ThreatSeverity
}

func (d *stubDetector) DetectThreats(ctx context.Context, session *models.Session) ([]models.ThreatDetection, error) {
	detections := make([]models.ThreatDetection, 0, len(d.severities))
	for _, severity := range d.severities {
		detections = append(detections, models.ThreatDetection{
			DetectionID: "threat-" + shortID(),
			SessionID:   session.SessionID,
			ThreatType:  models.ThreatMalware,
			Severity:    severity,
			DetectedAt:  time.Now(),
			Active:      true,
		})
	}
	return detections, nil
}

// stubRecommender emits one session recommendation with configurable actions
// and one recommendation per detection.
type stubRecommender struct {
	sessionActions string
}

func (r *stubRecommender) RecommendForAssessment(ctx context.Context, assessment *models.RiskAssessment) ([]models.PolicyRecommendation, error) {
	return nil, nil
}

func (r *stubRecommender) RecommendForThreat(ctx context.Context, detection *models.ThreatDetection) ([]models.PolicyRecommendation, error) {
	return []models.PolicyRecommendation{{
		RecommendationID:      "rec-" + shortID(),
		TriggeredBy:           detection.DetectionID,
		Type:                  models.RecommendNewPolicy,
		Priority:              models.PriorityUrgent,
		GeneratedAt:           time.Now(),
		RecommendedPolicyType: models.PolicyThreatResponse,
		RecommendedActions:    `{"action": "contain"}`,
		RecommendedPriority:   2,
		Confidence:            0.9,
	}}, nil
}

func (r *stubRecommender) RecommendForSession(ctx context.Context, session *models.Session) ([]models.PolicyRecommendation, error) {
	return []models.PolicyRecommendation{{
		RecommendationID:      "rec-" + shortID(),
		TriggeredBy:           session.SessionID,
		Type:                  models.RecommendNewPolicy,
		Priority:              models.PriorityMedium,
		GeneratedAt:           time.Now(),
		RecommendedPolicyType: models.PolicyAuthorization,
		RecommendedActions:    r.sessionActions,
		RecommendedPriority:   5,
		Confidence:            0.87,
	}}, nil
}

func (r *stubRecommender) RecommendForUser(ctx context.Context, userName string) ([]models.PolicyRecommendation, error) {
	return []models.PolicyRecommendation{{
		RecommendationID:      "rec-" + shortID(),
		TriggeredBy:           userName,
		Type:                  models.RecommendPolicyModification,
		Priority:              models.PriorityLow,
		GeneratedAt:           time.Now(),
		RecommendedPolicyType: models.PolicyAuthentication,
		RecommendedActions:    `{"action": "adapt"}`,
		Confidence:            0.82,
	}}, nil
}

func (r *stubRecommender) RecommendForEmergency(ctx context.Context, emergency map[string]string) ([]models.PolicyRecommendation, error) {
	return []models.PolicyRecommendation{{
		RecommendationID:      "rec-" + shortID(),
		TriggeredBy:           "emergency-system",
		Type:                  models.RecommendEmergencyResponse,
		Priority:              models.PriorityCritical,
		GeneratedAt:           time.Now(),
		Context:               emergency,
		RecommendedPolicyName: "Emergency Response Policy",
		RecommendedPolicyType: models.PolicyThreatResponse,
		RecommendedActions:    `{"action": "lockdown"}`,
		RecommendedPriority:   1,
		Confidence:            0.95,
		RiskReduction:         8.5,
	}}, nil
}

func newTestOrchestrator(score float64, severities []models.ThreatSeverity, sessionActions string) (AnalysisOrchestrator, domainService.PolicyStore) {
	store := memory.NewPolicyStore()
	orch := NewAnalysisOrchestrator(
		&stubScorer{score: score},
		&stubDetector{severities: severities},
		&stubRecommender{sessionActions: sessionActions},
		store,
		testMetrics,
		logger.NewNoopLogger(),
	)
	return orch, store
}

func TestAnalyzeSessionHighRiskMaterializesPolicy(t *testing.T) {
	orch, store := newTestOrchestrator(9.0, nil, `{"action": "monitor"}`)
	session := quietSession()

	result, err := orch.AnalyzeSession(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, result.Policy)

	assert.Equal(t, models.PolicyDraft, result.Policy.Status)
	assert.Equal(t, models.SourceAIRecommended, result.Policy.Source)
	assert.Equal(t, "AI-PolicyEngine", result.Policy.CreatedBy)
	assert.Equal(t, 9.0, result.Policy.RiskScore)

	policies, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, policies, 1)
}

func TestAnalyzeSessionLowRiskSkipsPolicy(t *testing.T) {
	orch, store := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)

	result, err := orch.AnalyzeSession(context.Background(), quietSession())
	require.NoError(t, err)
	assert.Nil(t, result.Policy)

	policies, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, policies)
}

func TestAnalyzeSessionHighSeverityThreatMaterializesPolicy(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityHigh}, `{"action": "monitor"}`)

	result, err := orch.AnalyzeSession(context.Background(), quietSession())
	require.NoError(t, err)
	require.NotNil(t, result.Policy)

	// The threat-driven recommendation outranks the session baseline, so
	// it shapes the materialized policy.
	assert.Equal(t, models.PolicyThreatResponse, result.Policy.Type)
	assert.Equal(t, 2, result.Policy.Priority)
}

func TestAnalyzeSessionQuarantineRecommendationMaterializesPolicy(t *testing.T) {
	orch, _ := newTestOrchestrator(2.0, nil, `{"action": "quarantine"}`)

	result, err := orch.AnalyzeSession(context.Background(), quietSession())
	require.NoError(t, err)
	assert.NotNil(t, result.Policy)
}

func TestAnalyzeSessionAnnotatesWorstSeverity(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityMedium, models.ThreatSeverityCritical, models.ThreatSeverityLow},
		`{"action": "monitor"}`)
	session := quietSession()

	result, err := orch.AnalyzeSession(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, string(models.ThreatSeverityCritical), session.ThreatLevel)
	assert.Equal(t, 3.0, session.RiskScore)
	assert.Len(t, result.Detections, 3)
	// One baseline session recommendation plus one per detection.
	assert.Len(t, result.Recommendations, 4)
}

func TestAnalyzeSessionIncludesAssessmentRecommendations(t *testing.T) {
	orch := NewAnalysisOrchestrator(
		&stubScorer{score: 9.2},
		&stubDetector{},
		NewHeuristicPolicyRecommender(logger.NewNoopLogger()),
		memory.NewPolicyStore(),
		testMetrics,
		logger.NewNoopLogger(),
	)

	result, err := orch.AnalyzeSession(context.Background(), quietSession())
	require.NoError(t, err)

	var names []string
	for _, rec := range result.Recommendations {
		names = append(names, rec.RecommendedPolicyName)
	}
	// The session baseline plus the VERY_HIGH risk-band pair.
	assert.Contains(t, names, "Session-Specific Monitoring Policy")
	assert.Contains(t, names, "Emergency Quarantine Policy")
	assert.Contains(t, names, "Automated Threat Response")
}

func TestSessionRegistry(t *testing.T) {
	orch, _ := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)
	ctx := context.Background()

	first := quietSession()
	second := riskySession()
	_, err := orch.AnalyzeSession(ctx, first)
	require.NoError(t, err)
	_, err = orch.AnalyzeSession(ctx, second)
	require.NoError(t, err)

	assert.Len(t, orch.ActiveSessions(ctx), 2)

	got, err := orch.SessionByID(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, got.SessionID)

	_, err = orch.SessionByID(ctx, "sess-missing")
	assert.True(t, errors.IsNotFound(err))

	byUser := orch.SessionsByUser(ctx, second.UserName)
	require.Len(t, byUser, 1)
	assert.Equal(t, second.SessionID, byUser[0].SessionID)

	byDevice := orch.SessionsByDevice(ctx, first.MACAddress)
	require.Len(t, byDevice, 1)
	assert.Equal(t, first.SessionID, byDevice[0].SessionID)
}

func TestRiskHistoryReturnsNewestFirst(t *testing.T) {
	orch, _ := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)
	ctx := context.Background()
	session := quietSession()

	_, err := orch.AnalyzeSession(ctx, session)
	require.NoError(t, err)
	_, err = orch.AnalyzeSession(ctx, session)
	require.NoError(t, err)

	history := orch.RiskHistory(ctx, session.SessionID)
	require.Len(t, history, 2)
	assert.False(t, history[0].AssessmentTime.Before(history[1].AssessmentTime))
	assert.Empty(t, orch.RiskHistory(ctx, "sess-missing"))
}

func TestActiveThreatsAndResolve(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityHigh}, `{"action": "monitor"}`)
	ctx := context.Background()

	result, err := orch.AnalyzeSession(ctx, quietSession())
	require.NoError(t, err)
	require.Len(t, result.Detections, 1)

	active := orch.ActiveThreats(ctx)
	require.Len(t, active, 1)
	detectionID := active[0].DetectionID

	resolved, err := orch.ResolveThreat(ctx, detectionID, "analyst-1")
	require.NoError(t, err)
	assert.False(t, resolved.Active)
	assert.Equal(t, "analyst-1", resolved.ResolvedBy)
	assert.False(t, resolved.ResolvedAt.IsZero())

	assert.Empty(t, orch.ActiveThreats(ctx))

	// Resolving again keeps the original resolver.
	again, err := orch.ResolveThreat(ctx, detectionID, "analyst-2")
	require.NoError(t, err)
	assert.Equal(t, "analyst-1", again.ResolvedBy)

	_, err = orch.ResolveThreat(ctx, "threat-missing", "analyst-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestThreatStatistics(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityHigh, models.ThreatSeverityMedium},
		`{"action": "monitor"}`)
	ctx := context.Background()

	_, err := orch.AnalyzeSession(ctx, quietSession())
	require.NoError(t, err)

	active := orch.ActiveThreats(ctx)
	require.Len(t, active, 2)
	_, err = orch.ResolveThreat(ctx, active[0].DetectionID, "analyst-1")
	require.NoError(t, err)

	stats := orch.ThreatStatistics(ctx)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.BySeverity[string(models.ThreatSeverityHigh)])
	assert.Equal(t, 1, stats.BySeverity[string(models.ThreatSeverityMedium)])
	assert.Equal(t, 2, stats.ByType[string(models.ThreatMalware)])
}

func TestRecommendationHistory(t *testing.T) {
	orch, _ := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)
	ctx := context.Background()

	_, err := orch.AnalyzeSession(ctx, quietSession())
	require.NoError(t, err)

	history := orch.RecommendationHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, models.RecommendNewPolicy, history[0].Type)
}

func TestAnalyzeUserBehaviorRollsUpSessionThreats(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityHigh}, `{"action": "monitor"}`)
	ctx := context.Background()
	session := riskySession()

	_, err := orch.AnalyzeSession(ctx, session)
	require.NoError(t, err)

	detections, err := orch.AnalyzeUserBehavior(ctx, session.UserName)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	rollup := detections[len(detections)-1]
	assert.Equal(t, models.ThreatInsiderThreat, rollup.ThreatType)
	assert.Equal(t, models.ThreatSeverityHigh, rollup.Severity)
	assert.Equal(t, 0.78, rollup.Confidence)
	assert.Equal(t, session.UserName, rollup.UserName)
	assert.True(t, strings.HasPrefix(rollup.DetectionID, "user-behavior-threat-"))

	// A user with no tracked sessions yields nothing to roll up.
	none, err := orch.AnalyzeUserBehavior(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnalyzeDeviceBehaviorFlagsPossibleCompromise(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityLow}, `{"action": "monitor"}`)
	ctx := context.Background()
	session := riskySession()

	_, err := orch.AnalyzeSession(ctx, session)
	require.NoError(t, err)

	detections, err := orch.AnalyzeDeviceBehavior(ctx, session.MACAddress)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	rollup := detections[len(detections)-1]
	assert.Equal(t, models.ThreatMalware, rollup.ThreatType)
	assert.Equal(t, models.ThreatSeverityHigh, rollup.Severity)
	assert.Equal(t, 0.85, rollup.Confidence)
	assert.Equal(t, session.MACAddress, rollup.MACAddress)
	assert.True(t, strings.HasPrefix(rollup.DetectionID, "device-behavior-threat-"))
}

func TestThreatsBySeverityFiltersHistory(t *testing.T) {
	orch, _ := newTestOrchestrator(3.0,
		[]models.ThreatSeverity{models.ThreatSeverityHigh, models.ThreatSeverityMedium},
		`{"action": "monitor"}`)
	ctx := context.Background()

	_, err := orch.AnalyzeSession(ctx, quietSession())
	require.NoError(t, err)

	high := orch.ThreatsBySeverity(ctx, models.ThreatSeverityHigh)
	require.Len(t, high, 1)
	assert.Equal(t, models.ThreatSeverityHigh, high[0].Severity)

	assert.Empty(t, orch.ThreatsBySeverity(ctx, models.ThreatSeverityCritical))
}

func TestRecommendForUserRecordsHistory(t *testing.T) {
	orch, _ := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)
	ctx := context.Background()

	recs, err := orch.RecommendForUser(ctx, "jdoe")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "jdoe", recs[0].TriggeredBy)

	assert.Len(t, orch.RecommendationHistory(ctx), 1)
}

func TestImplementRecommendationCreatesDraftPolicy(t *testing.T) {
	orch, store := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)
	ctx := context.Background()

	recs, err := orch.RecommendForEmergency(ctx, map[string]string{"incident": "INC-1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	policy, err := orch.ImplementRecommendation(ctx, recs[0].RecommendationID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyDraft, policy.Status)
	assert.Equal(t, models.SourceAIRecommended, policy.Source)
	assert.Equal(t, "AI-PolicyEngine", policy.CreatedBy)
	assert.Equal(t, recs[0].Confidence, policy.AIConfidence)
	assert.InDelta(t, 10.0-recs[0].RiskReduction, policy.RiskScore, 1e-9)

	stored, err := store.FindByID(ctx, policy.PolicyID)
	require.NoError(t, err)
	assert.Equal(t, policy.Name, stored.Name)

	_, err = orch.ImplementRecommendation(ctx, "rec-missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestRejectRecommendationRemovesItFromHistory(t *testing.T) {
	orch, _ := newTestOrchestrator(2.0, nil, `{"action": "monitor"}`)
	ctx := context.Background()

	recs, err := orch.RecommendForUser(ctx, "jdoe")
	require.NoError(t, err)

	require.NoError(t, orch.RejectRecommendation(ctx, recs[0].RecommendationID, "too broad"))
	assert.Empty(t, orch.RecommendationHistory(ctx))

	err = orch.RejectRecommendation(ctx, recs[0].RecommendationID, "again")
	assert.True(t, errors.IsNotFound(err))
}

func TestAssessUserAndDevice(t *testing.T) {
	orch, _ := newTestOrchestrator(6.5, nil, `{"action": "monitor"}`)
	ctx := context.Background()
	session := riskySession()

	_, err := orch.AnalyzeSession(ctx, session)
	require.NoError(t, err)

	userAssessment, err := orch.AssessUser(ctx, session.UserName)
	require.NoError(t, err)
	assert.Equal(t, session.UserName, userAssessment.UserName)
	assert.Equal(t, models.RiskHigh, userAssessment.RiskLevel)

	deviceAssessment, err := orch.AssessDevice(ctx, session.MACAddress)
	require.NoError(t, err)
	assert.Equal(t, session.MACAddress, deviceAssessment.MACAddress)
}

func TestLeadRecommendationPicksHighestPriority(t *testing.T) {
	recs := []models.PolicyRecommendation{
		{Priority: models.PriorityMedium, RecommendedPolicyName: "baseline"},
		{Priority: models.PriorityCritical, RecommendedPolicyName: "quarantine"},
		{Priority: models.PriorityHigh, RecommendedPolicyName: "monitoring"},
	}
	assert.Equal(t, "quarantine", leadRecommendation(recs).RecommendedPolicyName)

	fallback := leadRecommendation(nil)
	assert.Equal(t, models.PolicyThreatResponse, fallback.RecommendedPolicyType)
}

func TestShouldCreatePolicyGate(t *testing.T) {
	low := &models.RiskAssessment{OverallRiskScore: 3.0}
	high := &models.RiskAssessment{OverallRiskScore: 7.5}
	mediumDetection := []models.ThreatDetection{{Severity: models.ThreatSeverityMedium}}
	highDetection := []models.ThreatDetection{{Severity: models.ThreatSeverityHigh}}
	benignRecs := []models.PolicyRecommendation{{RecommendedActions: `{"action": "monitor"}`}}
	blockRecs := []models.PolicyRecommendation{{RecommendedActions: `{"action": "BLOCK"}`}}

	assert.True(t, shouldCreatePolicy(high, nil, nil))
	assert.False(t, shouldCreatePolicy(low, nil, benignRecs))
	assert.False(t, shouldCreatePolicy(low, mediumDetection, benignRecs))
	assert.True(t, shouldCreatePolicy(low, highDetection, benignRecs))
	assert.True(t, shouldCreatePolicy(low, nil, blockRecs))
}
