package models

import "time"

// ============================================================================
// Threat Detection
// ============================================================================

// ThreatType classifies a detected threat.
type ThreatType string

const (
	ThreatMalware             ThreatType = "MALWARE"
	ThreatPhishing            ThreatType = "PHISHING"
	ThreatDataExfiltration    ThreatType = "DATA_EXFILTRATION"
	ThreatLateralMovement     ThreatType = "LATERAL_MOVEMENT"
	ThreatPrivilegeEscalation ThreatType = "PRIVILEGE_ESCALATION"
	ThreatAnomalousBehavior   ThreatType = "ANOMALOUS_BEHAVIOR"
	ThreatBruteForce          ThreatType = "BRUTE_FORCE"
	ThreatDDoS                ThreatType = "DDOS"
	ThreatInsiderThreat       ThreatType = "INSIDER_THREAT"
	ThreatAPT                 ThreatType = "APT"
	ThreatZeroDay             ThreatType = "ZERO_DAY"
	ThreatPolicyViolation     ThreatType = "POLICY_VIOLATION"
	ThreatComplianceBreach    ThreatType = "COMPLIANCE_BREACH"
	ThreatUnknown             ThreatType = "UNKNOWN"
)

// AllThreatTypes lists every threat classification the detector can emit.
var AllThreatTypes = []ThreatType{
	ThreatMalware,
	ThreatPhishing,
	ThreatDataExfiltration,
	ThreatLateralMovement,
	ThreatPrivilegeEscalation,
	ThreatAnomalousBehavior,
	ThreatBruteForce,
	ThreatDDoS,
	ThreatInsiderThreat,
	ThreatAPT,
	ThreatZeroDay,
	ThreatPolicyViolation,
	ThreatComplianceBreach,
	ThreatUnknown,
}

// ThreatSeverity grades a detection. Severities are totally ordered via
// Level, with INFO lowest and CRITICAL highest.
type ThreatSeverity string

const (
	ThreatSeverityInfo     ThreatSeverity = "INFO"
	ThreatSeverityLow      ThreatSeverity = "LOW"
	ThreatSeverityMedium   ThreatSeverity = "MEDIUM"
	ThreatSeverityHigh     ThreatSeverity = "HIGH"
	ThreatSeverityCritical ThreatSeverity = "CRITICAL"
)

// Level returns the numeric rank of the severity, 1 through 5. Unrecognized
// severities rank 0, below INFO.
func (s ThreatSeverity) Level() int {
	switch s {
	case ThreatSeverityInfo:
		return 1
	case ThreatSeverityLow:
		return 2
	case ThreatSeverityMedium:
		return 3
	case ThreatSeverityHigh:
		return 4
	case ThreatSeverityCritical:
		return 5
	default:
		return 0
	}
}

// AtLeast reports whether s ranks at or above other.
func (s ThreatSeverity) AtLeast(other ThreatSeverity) bool {
	return s.Level() >= other.Level()
}

// ThreatDetection is one detected security threat tied to a session.
type ThreatDetection struct {
	DetectionID        string            `json:"detection_id"`
	SessionID          string            `json:"session_id"`
	UserName           string            `json:"user_name,omitempty"`
	MACAddress         string            `json:"mac_address,omitempty"`
	IPAddress          string            `json:"ip_address,omitempty"`
	ThreatType         ThreatType        `json:"threat_type"`
	Severity           ThreatSeverity    `json:"severity"`
	Confidence         float64           `json:"confidence"`
	DetectedAt         time.Time         `json:"detected_at"`
	AIModelVersion     string            `json:"ai_model_version"`
	Description        string            `json:"description"`
	Indicators         []string          `json:"indicators,omitempty"`
	ThreatData         map[string]string `json:"threat_data,omitempty"`
	RecommendedActions []string          `json:"recommended_actions,omitempty"`
	MitigationStrategy string            `json:"mitigation_strategy,omitempty"`
	Active             bool              `json:"active"`
	ResolvedAt         time.Time         `json:"resolved_at,omitempty"`
	ResolvedBy         string            `json:"resolved_by,omitempty"`
}

// MaxSeverity returns the highest severity among the detections, or INFO when
// the list is empty.
func MaxSeverity(detections []ThreatDetection) ThreatSeverity {
	max := ThreatSeverityInfo
	for _, d := range detections {
		if d.Severity.AtLeast(max) {
			max = d.Severity
		}
	}
	return max
}
