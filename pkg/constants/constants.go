// Package constants defines system-wide constants for the NAPS service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Scenario Constants
// ================================================================================

// Scenario identifies the simulated network environment.
type Scenario string

const (
	ScenarioOffice        Scenario = "office"
	ScenarioCampus        Scenario = "campus"
	ScenarioDatacenter    Scenario = "datacenter"
	ScenarioHealthcare    Scenario = "healthcare"
	ScenarioManufacturing Scenario = "manufacturing"
	ScenarioRetail        Scenario = "retail"
	ScenarioGuest         Scenario = "guest"
)

// DefaultScenario is used when an unrecognized scenario name is configured.
const DefaultScenario = ScenarioOffice

// ================================================================================
// Authentication / Posture Constants
// ================================================================================

// AuthMethod is the network authentication method reported for a session.
type AuthMethod string

const (
	AuthMethodDot1X AuthMethod = "DOT1X"
	AuthMethodMAB   AuthMethod = "MAB"
	AuthMethodGuest AuthMethod = "GUEST"
)

// PostureStatus is the compliance state of a device against security policy.
type PostureStatus string

const (
	PostureCompliant    PostureStatus = "COMPLIANT"
	PostureNonCompliant PostureStatus = "NON_COMPLIANT"
	PostureUnknown      PostureStatus = "UNKNOWN"
)

// SessionState marks a session as attached or detached.
type SessionState string

const (
	SessionStateActive   SessionState = "ACTIVE"
	SessionStateInactive SessionState = "INACTIVE"
)

// ================================================================================
// Simulator Defaults
// ================================================================================

const (
	// DefaultTickInterval is the simulation loop period.
	DefaultTickInterval = 30 * time.Second

	// MinTickInterval is the lowest interval accepted by configuration validation.
	MinTickInterval = 5 * time.Second

	// DefaultDeviceCount is the target pool size when none is configured.
	DefaultDeviceCount = 50

	// MinDeviceCount and MaxDeviceCount bound the configurable pool size.
	MinDeviceCount = 1
	MaxDeviceCount = 10000

	// DefaultPipelineQueueSize bounds the session intake channel of the
	// analysis pipeline.
	DefaultPipelineQueueSize = 256

	// DefaultPipelineWorkers is the number of concurrent session analyses.
	DefaultPipelineWorkers = 8
)

// ================================================================================
// AI Model Tags
// ================================================================================

const (
	// RiskModelVersion tags assessments produced by the heuristic risk scorer.
	RiskModelVersion = "RiskModel-v2.1.0"

	// ThreatModelVersion tags detections produced by the heuristic detector.
	ThreatModelVersion = "ThreatAI-v3.2.1"

	// RecommendationModelVersion tags recommendations from the heuristic recommender.
	RecommendationModelVersion = "PolicyAI-v1.5.0"
)

// AIProvider selects the analysis strategy implementation.
type AIProvider string

const (
	// ProviderHeuristic uses the built-in rule-based strategies.
	ProviderHeuristic AIProvider = "heuristic"

	// ProviderLLM uses the external chat-completion model with heuristic fallback.
	ProviderLLM AIProvider = "llm"
)

// ================================================================================
// Identifier Prefixes
// ================================================================================

const (
	DeviceIDPrefix           = "SIM-"
	EventIDPrefix            = "EVT-"
	IncidentIDPrefix         = "SEC-"
	AssessmentIDPrefix       = "risk-"
	DetectionIDPrefix        = "threat-"
	BehavioralThreatIDPrefix = "behavioral-threat-"
	RecommendationIDPrefix   = "rec-"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is a typed key for context values.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeySessionID ContextKey = "session_id"
	ContextKeyTraceID   ContextKey = "trace_id"
)

// ================================================================================
// Component Names (for structured logging)
// ================================================================================

const (
	ComponentDevicePool     = "device_pool"
	ComponentEventGenerator = "event_generator"
	ComponentSimulator      = "simulator"
	ComponentPipeline       = "analysis_pipeline"
	ComponentRiskScorer     = "risk_scorer"
	ComponentThreatDetector = "threat_detector"
	ComponentRecommender    = "policy_recommender"
	ComponentOrchestrator   = "policy_orchestrator"
	ComponentHTTP           = "http"
	ComponentPublisher      = "event_publisher"
)
