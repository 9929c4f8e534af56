package models

import (
	"time"

	"github.com/turtacn/naps/pkg/constants"
)

// Session represents one active network access session as reported by the
// access-control environment. Analysis results are written back onto the
// session after the pipeline has run.
type Session struct {
	SessionID            string                  `json:"session_id"`
	UserName             string                  `json:"user_name"`
	MACAddress           string                  `json:"mac_address"`
	IPAddress            string                  `json:"ip_address"`
	NASIPAddress         string                  `json:"nas_ip_address"`
	NASPortID            string                  `json:"nas_port_id"`
	CallingStationID     string                  `json:"calling_station_id"`
	CalledStationID      string                  `json:"called_station_id"`
	State                constants.SessionState  `json:"state"`
	AuthenticationMethod constants.AuthMethod    `json:"authentication_method"`
	AuthenticationStatus string                  `json:"authentication_status"`
	AuthorizationProfile string                  `json:"authorization_profile"`
	SecurityGroup        string                  `json:"security_group"`
	VLANID               string                  `json:"vlan_id"`
	DeviceType           DeviceType              `json:"device_type"`
	OperatingSystem      string                  `json:"operating_system"`
	PostureStatus        constants.PostureStatus `json:"posture_status"`
	Location             string                  `json:"location"`
	SSID                 string                  `json:"ssid,omitempty"`
	StartTime            time.Time               `json:"start_time"`
	EndTime              time.Time               `json:"end_time,omitempty"`
	LastUpdateTime       time.Time               `json:"last_update_time"`
	Attributes           map[string]string       `json:"attributes,omitempty"`

	Posture *PostureDetails `json:"posture_details,omitempty"`
	Threat  *ThreatDetails  `json:"threat_details,omitempty"`

	// Analysis annotations, written by the pipeline.
	RiskScore        float64 `json:"risk_score,omitempty"`
	ThreatLevel      string  `json:"threat_level,omitempty"`
	AIRecommendation string  `json:"ai_recommendation,omitempty"`
}

// PostureDetails carries the posture agent's latest findings for a session.
type PostureDetails struct {
	Status           string            `json:"status"`
	ComplianceStatus string            `json:"compliance_status"`
	LastAssessment   time.Time         `json:"last_assessment"`
	Checks           map[string]string `json:"checks,omitempty"`
	AgentVersion     string            `json:"agent_version,omitempty"`
}

// ThreatDetails carries per-session threat telemetry.
type ThreatDetails struct {
	ThreatLevel        string            `json:"threat_level"`
	RiskScore          float64           `json:"risk_score"`
	LastThreatDetected string            `json:"last_threat_detected,omitempty"`
	LastThreatTime     time.Time         `json:"last_threat_time,omitempty"`
	ThreatAttributes   map[string]string `json:"threat_attributes,omitempty"`
}

// Duration returns the elapsed session time. Sessions without an end time are
// measured against now.
func (s *Session) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartTime)
}

// IsActive reports whether the session is still established.
func (s *Session) IsActive() bool {
	return s.State == constants.SessionStateActive
}
