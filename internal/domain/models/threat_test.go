package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreatSeverity_Ordering(t *testing.T) {
	ordered := []ThreatSeverity{
		ThreatSeverityInfo,
		ThreatSeverityLow,
		ThreatSeverityMedium,
		ThreatSeverityHigh,
		ThreatSeverityCritical,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Level(), ordered[i-1].Level())
		assert.True(t, ordered[i].AtLeast(ordered[i-1]))
		assert.False(t, ordered[i-1].AtLeast(ordered[i]))
	}
	assert.Equal(t, 0, ThreatSeverity("bogus").Level())
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, ThreatSeverityInfo, MaxSeverity(nil))

	detections := []ThreatDetection{
		{Severity: ThreatSeverityLow},
		{Severity: ThreatSeverityCritical},
		{Severity: ThreatSeverityMedium},
	}
	assert.Equal(t, ThreatSeverityCritical, MaxSeverity(detections))
}

func TestEventType_IsSecurity(t *testing.T) {
	assert.True(t, EventMalwareDetected.IsSecurity())
	assert.True(t, EventPortScanDetected.IsSecurity())
	assert.True(t, EventPolicyViolation.IsSecurity())
	assert.False(t, EventDeviceConnected.IsSecurity())
	assert.False(t, EventAuthenticationSuccess.IsSecurity())
	assert.False(t, EventIoTCommunicationPattern.IsSecurity())
}
