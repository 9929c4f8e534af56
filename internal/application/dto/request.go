package dto

import (
	"time"

	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/pkg/constants"
)

// IngestSessionRequest is the payload for submitting a session for analysis.
type IngestSessionRequest struct {
	SessionID            string            `json:"session_id" binding:"required"`
	UserName             string            `json:"user_name" binding:"required"`
	MACAddress           string            `json:"mac_address" binding:"required"`
	IPAddress            string            `json:"ip_address"`
	DeviceType           string            `json:"device_type"`
	OperatingSystem      string            `json:"operating_system"`
	AuthenticationMethod string            `json:"authentication_method"`
	PostureStatus        string            `json:"posture_status"`
	State                string            `json:"state"`
	Location             string            `json:"location"`
	VLANID               string            `json:"vlan_id"`
	SSID                 string            `json:"ssid"`
	StartTime            time.Time         `json:"start_time"`
	Attributes           map[string]string `json:"attributes"`
}

// ToSession converts the request into the domain session shape. Unset
// enum-like fields fall back to safe defaults.
func (r *IngestSessionRequest) ToSession() *models.Session {
	deviceType := models.DeviceType(r.DeviceType)
	if deviceType == "" {
		deviceType = models.DeviceUnknown
	}
	state := constants.SessionState(r.State)
	if state == "" {
		state = constants.SessionStateActive
	}
	posture := constants.PostureStatus(r.PostureStatus)
	if posture == "" {
		posture = constants.PostureUnknown
	}
	startTime := r.StartTime
	if startTime.IsZero() {
		startTime = time.Now()
	}

	return &models.Session{
		SessionID:            r.SessionID,
		UserName:             r.UserName,
		MACAddress:           r.MACAddress,
		IPAddress:            r.IPAddress,
		DeviceType:           deviceType,
		OperatingSystem:      r.OperatingSystem,
		AuthenticationMethod: constants.AuthMethod(r.AuthenticationMethod),
		PostureStatus:        posture,
		State:                state,
		Location:             r.Location,
		VLANID:               r.VLANID,
		SSID:                 r.SSID,
		StartTime:            startTime,
		LastUpdateTime:       time.Now(),
		Attributes:           r.Attributes,
	}
}

// SimulatorConfigureRequest updates simulation parameters. Nil fields keep
// their current values.
type SimulatorConfigureRequest struct {
	Interval *int    `json:"interval,omitempty"`
	Devices  *int    `json:"devices,omitempty"`
	Scenario *string `json:"scenario,omitempty"`
}

// ResolveThreatRequest marks a detection as handled.
type ResolveThreatRequest struct {
	ResolvedBy string `json:"resolved_by" binding:"required"`
}

// EmergencyRecommendationRequest carries the context of a security emergency.
type EmergencyRecommendationRequest struct {
	Context map[string]string `json:"context" binding:"required"`
}

// RejectRecommendationRequest discards a recommendation with operator
// feedback.
type RejectRecommendationRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

// PolicyStatusRequest changes a policy's lifecycle status.
type PolicyStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	UpdatedBy string `json:"updated_by" binding:"required"`
}

// CreatePolicyRequest creates a policy by hand, outside the AI path.
type CreatePolicyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
	Priority    int    `json:"priority"`
	Conditions  string `json:"conditions"`
	Actions     string `json:"actions"`
}
