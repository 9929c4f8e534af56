package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeviceRiskLevelFromScore_Bands(t *testing.T) {
	assert.Equal(t, DeviceRiskLow, DeviceRiskLevelFromScore(0.0))
	assert.Equal(t, DeviceRiskLow, DeviceRiskLevelFromScore(3.0))
	assert.Equal(t, DeviceRiskMedium, DeviceRiskLevelFromScore(3.1))
	assert.Equal(t, DeviceRiskMedium, DeviceRiskLevelFromScore(6.0))
	assert.Equal(t, DeviceRiskHigh, DeviceRiskLevelFromScore(6.1))
	assert.Equal(t, DeviceRiskHigh, DeviceRiskLevelFromScore(8.5))
	assert.Equal(t, DeviceRiskCritical, DeviceRiskLevelFromScore(8.6))
	assert.Equal(t, DeviceRiskCritical, DeviceRiskLevelFromScore(10.0))
}

func TestSimulatedDevice_IsHighRisk(t *testing.T) {
	d := &SimulatedDevice{RiskScore: 7.2}
	d.UpdateRiskLevel()
	assert.True(t, d.IsHighRisk())

	d.RiskScore = 2.0
	d.UpdateRiskLevel()
	assert.False(t, d.IsHighRisk())
}

func TestDeviceType_Classification(t *testing.T) {
	assert.True(t, DeviceIoTCamera.IsIoT())
	assert.True(t, DeviceIoTBadgeReader.IsIoT())
	assert.False(t, DeviceMedicalDevice.IsIoT())
	assert.False(t, DeviceSmartTV.IsIoT())

	assert.True(t, DeviceLaptop.IsCorporate())
	assert.True(t, DeviceNetworkDevice.IsCorporate())
	assert.False(t, DevicePOSTerminal.IsCorporate())
}

func TestSimulatedDevice_NetworkUtilization(t *testing.T) {
	d := &SimulatedDevice{DeviceType: DeviceServer}
	assert.Equal(t, 0.0, d.NetworkUtilization())

	d.BytesTransmitted = 250_000_000
	d.BytesReceived = 250_000_000
	assert.InDelta(t, 0.5, d.NetworkUtilization(), 1e-9)

	// A laptop moving 1GB saturates its expected volume.
	d = &SimulatedDevice{DeviceType: DeviceLaptop, BytesReceived: 1_000_000_000}
	assert.Equal(t, 1.0, d.NetworkUtilization())
}

func TestSimulatedDevice_AgeInDays(t *testing.T) {
	d := &SimulatedDevice{}
	assert.Equal(t, int64(0), d.AgeInDays())

	d.FirstSeen = time.Now().Add(-48 * time.Hour)
	assert.Equal(t, int64(2), d.AgeInDays())
}
