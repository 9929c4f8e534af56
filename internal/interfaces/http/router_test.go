package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/naps/internal/application/service"
	"github.com/turtacn/naps/internal/config"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/internal/infrastructure/persistence/memory"
	"github.com/turtacn/naps/internal/infrastructure/publish"
	"github.com/turtacn/naps/internal/interfaces/http/handlers"
	"github.com/turtacn/naps/internal/simulator"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// promauto registers collectors against the default registry, so the test
// binary constructs the metrics once and shares them across tests.
var testMetrics = monitoring.NewMetrics()

type testEnv struct {
	engine       *gin.Engine
	orchestrator service.AnalysisOrchestrator
	store        domainService.PolicyStore
	pipeline     *service.Pipeline
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNoopLogger()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, ReadTimeout: 30, WriteTimeout: 30},
		Simulator: config.SimulatorConfig{
			Enabled:                     false,
			Interval:                    30,
			Devices:                     5,
			Scenario:                    string(constants.ScenarioOffice),
			SecurityIncidentProbability: 0.3,
			NetworkEventProbability:     0.1,
			MaxEventsPerCycle:           10,
			Distributions: map[string]config.DeviceDistribution{
				string(constants.ScenarioOffice): {Laptop: 40, Mobile: 20, Tablet: 15, Server: 10, IoT: 10, Other: 5},
			},
		},
	}

	store := memory.NewPolicyStore()
	orchestrator := service.NewAnalysisOrchestrator(
		service.NewHeuristicRiskScorer(log),
		service.NewHeuristicThreatDetector(log),
		service.NewHeuristicPolicyRecommender(log),
		store,
		testMetrics,
		log,
	)
	pipeline := service.NewPipeline(orchestrator, 16, 2, testMetrics, log)
	pipeline.Start(context.Background())
	t.Cleanup(func() { _ = pipeline.Stop() })

	pool := simulator.NewDevicePool(testMetrics, log)
	events := simulator.NewEventGenerator(publish.NewNoopPublisher(), pipeline, testMetrics, log)
	sim := simulator.New(cfg.Simulator, pool, events, testMetrics, log)

	middleware := handlers.NewMiddleware(log, testMetrics)
	router := NewRouter(cfg, log, middleware,
		handlers.NewHealthHandler("test"),
		handlers.NewSessionHandler(orchestrator, pipeline, log),
		handlers.NewSimulatorHandler(sim, pool, events, log),
		handlers.NewThreatHandler(orchestrator, log),
		handlers.NewPolicyHandler(store, orchestrator, log),
	)

	return &testEnv{
		engine:       router.Engine(),
		orchestrator: orchestrator,
		store:        store,
		pipeline:     pipeline,
	}
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *errorBody      `json:"error"`
	RequestID string          `json:"request_id"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && json.Unmarshal(rec.Body.Bytes(), &env) == nil {
		return rec, &env
	}
	return rec, nil
}

func ingestBody(sessionID string) map[string]interface{} {
	return map[string]interface{}{
		"session_id":            sessionID,
		"user_name":             "jdoe",
		"mac_address":           "aa:bb:cc:dd:ee:10",
		"ip_address":            "10.2.0.4",
		"device_type":           "UNKNOWN",
		"authentication_method": "GUEST",
		"posture_status":        "NON_COMPLIANT",
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/ready", "/live"} {
		rec, _ := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestIngestSessionAccepted(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/sessions", ingestBody("sess-http-1"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, body)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.RequestID)
}

func TestIngestSessionRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/sessions",
		map[string]interface{}{"user_name": "jdoe"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "invalid_request", body.Error.Code)
}

func TestAnalyzeSessionAndQueryBack(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/sessions/analyze", ingestBody("sess-http-2"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body)

	var result service.AnalysisResult
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.NotNil(t, result.Assessment)
	assert.Equal(t, "sess-http-2", result.Assessment.SessionID)
	assert.GreaterOrEqual(t, result.Assessment.OverallRiskScore, 8.5)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/sessions/sess-http-2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/sessions/sess-http-2/risk-history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/risk/users/jdoe", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/sessions/sess-missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body)
	assert.Equal(t, "not_found", body.Error.Code)
}

func TestSimulatorStatusAndConfigure(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/simulator/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status simulator.Status
	require.NoError(t, json.Unmarshal(body.Data, &status))
	assert.False(t, status.Running)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/simulator/config",
		map[string]interface{}{"interval": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/simulator/config",
		map[string]interface{}{"interval": 60, "devices": 10, "scenario": "datacenter"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/v1/simulator/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &status))
	assert.Equal(t, 60, status.IntervalSeconds)
	assert.Equal(t, 10, status.TargetDevices)
	assert.Equal(t, "datacenter", status.Scenario)
}

func TestSimulatorDeviceAndEventListings(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/simulator/devices", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/simulator/devices/SIM-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/simulator/events", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPolicyLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/policies", map[string]interface{}{
		"name":        "Guest VLAN Policy",
		"type":        "AUTHORIZATION",
		"description": "Route guests to the guest VLAN",
		"priority":    5,
		"conditions":  `{"authMethod": "GUEST"}`,
		"actions":     `{"vlan": "guest"}`,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &created))
	policyID, _ := created["policy_id"].(string)
	require.NotEmpty(t, policyID)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/policies/"+policyID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/policies/"+policyID+"/status",
		map[string]interface{}{"status": "SOMEDAY", "updated_by": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, http.MethodPut, "/api/v1/policies/"+policyID+"/status",
		map[string]interface{}{"status": "ACTIVE", "updated_by": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, "ACTIVE", created["status"])

	rec, _ = env.do(t, http.MethodGet, "/api/v1/policies?status=ACTIVE", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/policies/"+policyID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/policies/"+policyID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePolicyRejectsMissingName(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/policies",
		map[string]interface{}{"type": "AUTHORIZATION"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreatEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/threats/active", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/threats/statistics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats service.ThreatStatistics
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Zero(t, stats.Total)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/threats/threat-missing/resolve",
		map[string]interface{}{"resolved_by": "analyst-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/sessions/analyze", ingestBody("sess-http-3"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &listing))
	assert.Greater(t, listing.Count, 0)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/threats/active", nil)
	req.Header.Set("X-Request-ID", "req-fixed-1")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-fixed-1", rec.Header().Get("X-Request-ID"))
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "naps_")
}

func TestThreatBehaviorEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/sessions/analyze", ingestBody("sess-behavior-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Threats []struct {
			DetectionID string `json:"detection_id"`
			UserName    string `json:"user_name"`
		} `json:"threats"`
		Count int `json:"count"`
	}

	rec, body := env.do(t, http.MethodGet, "/api/v1/threats/users/jdoe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &payload))
	assert.Len(t, payload.Threats, payload.Count)

	rec, body = env.do(t, http.MethodGet, "/api/v1/threats/devices/aa:bb:cc:dd:ee:10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Data, &payload))
	assert.Len(t, payload.Threats, payload.Count)
}

func TestThreatsBySeverityEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/threats/severity/high", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/threats/severity/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "invalid_request", body.Error.Code)
}

func TestRecommendationLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/recommendations/users/jdoe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var userPayload struct {
		Recommendations []struct {
			RecommendationID string `json:"recommendation_id"`
			TriggeredBy      string `json:"triggered_by"`
		} `json:"recommendations"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &userPayload))
	require.Equal(t, 1, userPayload.Count)
	assert.Equal(t, "jdoe", userPayload.Recommendations[0].TriggeredBy)

	rec, body = env.do(t, http.MethodPost, "/api/v1/recommendations/emergency",
		map[string]interface{}{"context": map[string]string{"incident": "INC-7"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var emergencyPayload struct {
		Recommendations []struct {
			RecommendationID string `json:"recommendation_id"`
			Priority         string `json:"priority"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &emergencyPayload))
	require.Len(t, emergencyPayload.Recommendations, 1)
	assert.Equal(t, "CRITICAL", emergencyPayload.Recommendations[0].Priority)
	emergencyID := emergencyPayload.Recommendations[0].RecommendationID

	rec, body = env.do(t, http.MethodPost, "/api/v1/recommendations/"+emergencyID+"/implement", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var policy struct {
		PolicyID string `json:"policy_id"`
		Status   string `json:"status"`
		Source   string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &policy))
	assert.Equal(t, "DRAFT", policy.Status)
	assert.Equal(t, "AI_RECOMMENDED", policy.Source)

	stored, err := env.store.FindByID(context.Background(), policy.PolicyID)
	require.NoError(t, err)
	assert.Equal(t, "Emergency Response Policy", stored.Name)

	userID := userPayload.Recommendations[0].RecommendationID
	rec, _ = env.do(t, http.MethodPost, "/api/v1/recommendations/"+userID+"/reject",
		map[string]string{"feedback": "scope too broad"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/v1/recommendations/"+userID+"/reject",
		map[string]string{"feedback": "again"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/recommendations/"+emergencyID+"/reject",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/recommendations/emergency", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
