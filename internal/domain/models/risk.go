package models

import "time"

// ============================================================================
// Risk Assessment
// ============================================================================

// RiskLevel is the six-band classification applied to session assessments.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "VERY_LOW"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevelFromScore maps a score onto the six assessment bands. Each band is
// half-open: the lower bound is included, the upper excluded. Anything below
// 2, negative included, is VERY_LOW; scores of 10 and above are CRITICAL.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score < 2.0:
		return RiskVeryLow
	case score < 4.0:
		return RiskLow
	case score < 6.0:
		return RiskMedium
	case score < 8.0:
		return RiskHigh
	case score < 10.0:
		return RiskVeryHigh
	default:
		return RiskCritical
	}
}

// FactorType classifies the origin of one risk factor.
type FactorType string

const (
	FactorBehavioral         FactorType = "BEHAVIORAL"
	FactorNetwork            FactorType = "NETWORK"
	FactorDevice             FactorType = "DEVICE"
	FactorTemporal           FactorType = "TEMPORAL"
	FactorGeolocation        FactorType = "GEOLOCATION"
	FactorAuthentication     FactorType = "AUTHENTICATION"
	FactorThreatIntelligence FactorType = "THREAT_INTELLIGENCE"
)

// RiskFactor is one weighted contributor to an overall assessment.
type RiskFactor struct {
	FactorName  string            `json:"factor_name"`
	Weight      float64           `json:"weight"`
	Score       float64           `json:"score"`
	Description string            `json:"description"`
	Type        FactorType        `json:"type"`
	Details     map[string]string `json:"details,omitempty"`
}

// RiskAssessment is the scored result of analyzing one session, user or
// device.
type RiskAssessment struct {
	AssessmentID     string            `json:"assessment_id"`
	SessionID        string            `json:"session_id"`
	UserName         string            `json:"user_name,omitempty"`
	MACAddress       string            `json:"mac_address,omitempty"`
	IPAddress        string            `json:"ip_address,omitempty"`
	OverallRiskScore float64           `json:"overall_risk_score"`
	RiskLevel        RiskLevel         `json:"risk_level"`
	Confidence       float64           `json:"confidence"`
	AssessmentTime   time.Time         `json:"assessment_time"`
	AIModelVersion   string            `json:"ai_model_version"`
	RiskFactors      []RiskFactor      `json:"risk_factors,omitempty"`
	RawFeatures      map[string]string `json:"raw_features,omitempty"`
	Recommendations  []string          `json:"recommendations,omitempty"`
	AssessmentReason string            `json:"assessment_reason,omitempty"`
}
