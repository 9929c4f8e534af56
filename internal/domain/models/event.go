package models

import "time"

// ============================================================================
// Network Events
// ============================================================================

// EventType classifies a generated network event.
type EventType string

const (
	EventDeviceConnected           EventType = "DEVICE_CONNECTED"
	EventDeviceDisconnected        EventType = "DEVICE_DISCONNECTED"
	EventAuthenticationSuccess     EventType = "AUTHENTICATION_SUCCESS"
	EventAuthenticationFailure     EventType = "AUTHENTICATION_FAILURE"
	EventSuspiciousActivity        EventType = "SUSPICIOUS_ACTIVITY"
	EventPolicyViolation           EventType = "POLICY_VIOLATION"
	EventAnomalousBehavior         EventType = "ANOMALOUS_BEHAVIOR"
	EventComplianceViolation       EventType = "COMPLIANCE_VIOLATION"
	EventPostureAssessmentFailed   EventType = "POSTURE_ASSESSMENT_FAILED"
	EventIoTDeviceAnomaly          EventType = "IOT_DEVICE_ANOMALY"
	EventIoTCommunicationPattern   EventType = "IOT_COMMUNICATION_PATTERN"
	EventMalwareDetected           EventType = "MALWARE_DETECTED"
	EventUnauthorizedAccessAttempt EventType = "UNAUTHORIZED_ACCESS_ATTEMPT"
	EventPortScanDetected          EventType = "PORT_SCAN_DETECTED"
)

// DisplayName returns a human-readable name for the event type.
func (t EventType) DisplayName() string {
	switch t {
	case EventDeviceConnected:
		return "Device Connected"
	case EventDeviceDisconnected:
		return "Device Disconnected"
	case EventAuthenticationSuccess:
		return "Authentication Success"
	case EventAuthenticationFailure:
		return "Authentication Failure"
	case EventSuspiciousActivity:
		return "Suspicious Activity"
	case EventPolicyViolation:
		return "Policy Violation"
	case EventAnomalousBehavior:
		return "Anomalous Behavior"
	case EventComplianceViolation:
		return "Compliance Violation"
	case EventPostureAssessmentFailed:
		return "Posture Assessment Failed"
	case EventIoTDeviceAnomaly:
		return "IoT Device Anomaly"
	case EventIoTCommunicationPattern:
		return "IoT Communication Pattern"
	case EventMalwareDetected:
		return "Malware Detected"
	case EventUnauthorizedAccessAttempt:
		return "Unauthorized Access Attempt"
	case EventPortScanDetected:
		return "Port Scan Detected"
	default:
		return string(t)
	}
}

// IsSecurity reports whether the event type indicates a security concern
// rather than routine network activity.
func (t EventType) IsSecurity() bool {
	switch t {
	case EventMalwareDetected, EventUnauthorizedAccessAttempt, EventSuspiciousActivity,
		EventPortScanDetected, EventAnomalousBehavior, EventPolicyViolation:
		return true
	}
	return false
}

// EventSeverity grades a network event.
type EventSeverity string

const (
	SeverityLow      EventSeverity = "LOW"
	SeverityMedium   EventSeverity = "MEDIUM"
	SeverityHigh     EventSeverity = "HIGH"
	SeverityCritical EventSeverity = "CRITICAL"
)

// NetworkEvent is one observed event in the simulated network, either routine
// activity or a security incident.
type NetworkEvent struct {
	EventID     string            `json:"event_id"`
	DeviceID    string            `json:"device_id"`
	EventType   EventType         `json:"event_type"`
	Severity    EventSeverity     `json:"severity"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	EventData   map[string]string `json:"event_data,omitempty"`
	Resolved    bool              `json:"resolved"`
}

// IsSecurityEvent reports whether this event represents a security concern.
func (e *NetworkEvent) IsSecurityEvent() bool {
	return e.EventType.IsSecurity()
}
