package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/naps/pkg/constants"
)

// ============================================================================
// Device Types
// ============================================================================

// DeviceType classifies a simulated endpoint.
type DeviceType string

const (
	DeviceLaptop                 DeviceType = "LAPTOP"
	DeviceDesktop                DeviceType = "DESKTOP"
	DeviceMobilePhone            DeviceType = "MOBILE_PHONE"
	DeviceTablet                 DeviceType = "TABLET"
	DeviceIoTSensor              DeviceType = "IOT_SENSOR"
	DeviceIoTCamera              DeviceType = "IOT_CAMERA"
	DeviceIoTPrinter             DeviceType = "IOT_PRINTER"
	DeviceIoTBadgeReader         DeviceType = "IOT_BADGE_READER"
	DeviceServer                 DeviceType = "SERVER"
	DeviceNetworkDevice          DeviceType = "NETWORK_DEVICE"
	DeviceMedicalDevice          DeviceType = "MEDICAL_DEVICE"
	DeviceManufacturingEquipment DeviceType = "MANUFACTURING_EQUIPMENT"
	DevicePOSTerminal            DeviceType = "POS_TERMINAL"
	DeviceKiosk                  DeviceType = "KIOSK"
	DeviceSmartTV                DeviceType = "SMART_TV"
	DeviceVoIPPhone              DeviceType = "VOIP_PHONE"
	DeviceUnknown                DeviceType = "UNKNOWN"
)

// DisplayName returns a human-readable name for the device type.
func (t DeviceType) DisplayName() string {
	switch t {
	case DeviceLaptop:
		return "Laptop"
	case DeviceDesktop:
		return "Desktop"
	case DeviceMobilePhone:
		return "Mobile Phone"
	case DeviceTablet:
		return "Tablet"
	case DeviceIoTSensor:
		return "IoT Sensor"
	case DeviceIoTCamera:
		return "IoT Camera"
	case DeviceIoTPrinter:
		return "IoT Printer"
	case DeviceIoTBadgeReader:
		return "IoT Badge Reader"
	case DeviceServer:
		return "Server"
	case DeviceNetworkDevice:
		return "Network Device"
	case DeviceMedicalDevice:
		return "Medical Device"
	case DeviceManufacturingEquipment:
		return "Manufacturing Equipment"
	case DevicePOSTerminal:
		return "POS Terminal"
	case DeviceKiosk:
		return "Kiosk"
	case DeviceSmartTV:
		return "Smart TV"
	case DeviceVoIPPhone:
		return "VoIP Phone"
	default:
		return "Unknown"
	}
}

// IsIoT reports whether the type is one of the IoT subtypes.
func (t DeviceType) IsIoT() bool {
	return strings.HasPrefix(string(t), "IOT_")
}

// IsCorporate reports whether the type is normally corporate-managed.
func (t DeviceType) IsCorporate() bool {
	switch t {
	case DeviceLaptop, DeviceDesktop, DeviceServer, DeviceNetworkDevice:
		return true
	}
	return false
}

// ============================================================================
// Device Risk Level
// ============================================================================

// DeviceRiskLevel is the coarse four-band classification applied to devices
// in the simulated pool.
type DeviceRiskLevel string

const (
	DeviceRiskLow      DeviceRiskLevel = "LOW"
	DeviceRiskMedium   DeviceRiskLevel = "MEDIUM"
	DeviceRiskHigh     DeviceRiskLevel = "HIGH"
	DeviceRiskCritical DeviceRiskLevel = "CRITICAL"
)

// DeviceRiskLevelFromScore maps a risk score onto the four device bands.
func DeviceRiskLevelFromScore(score float64) DeviceRiskLevel {
	switch {
	case score <= 3.0:
		return DeviceRiskLow
	case score <= 6.0:
		return DeviceRiskMedium
	case score <= 8.5:
		return DeviceRiskHigh
	default:
		return DeviceRiskCritical
	}
}

// ============================================================================
// Simulated Device
// ============================================================================

// SimulatedDevice is one endpoint in the simulated network, carrying identity,
// network placement, security posture and behavioral state.
type SimulatedDevice struct {
	DeviceID     string     `json:"device_id"`
	DeviceName   string     `json:"device_name"`
	MACAddress   string     `json:"mac_address"`
	IPAddress    string     `json:"ip_address"`
	DeviceType   DeviceType `json:"device_type"`
	Manufacturer string     `json:"manufacturer"`
	Model        string     `json:"model"`
	OSVersion    string     `json:"os_version"`

	// User information.
	UserName       string `json:"user_name"`
	UserDepartment string `json:"user_department"`
	UserRole       string `json:"user_role"`

	// Network placement.
	Location   string `json:"location"`
	Building   string `json:"building"`
	Floor      string `json:"floor"`
	SwitchPort string `json:"switch_port"`
	VLAN       string `json:"vlan"`
	SSID       string `json:"ssid,omitempty"`

	// Security posture.
	AuthenticationMethod constants.AuthMethod    `json:"authentication_method"`
	PostureStatus        constants.PostureStatus `json:"posture_status"`
	RiskScore            float64                 `json:"risk_score"`
	RiskLevel            DeviceRiskLevel         `json:"risk_level"`
	RiskFactors          []string                `json:"risk_factors,omitempty"`

	// Activity.
	LastSeen         time.Time `json:"last_seen"`
	FirstSeen        time.Time `json:"first_seen"`
	BytesTransmitted int64     `json:"bytes_transmitted"`
	BytesReceived    int64     `json:"bytes_received"`
	ConnectionCount  int       `json:"connection_count"`
	Active           bool      `json:"active"`

	// Behavior.
	NormalBehaviorScore float64  `json:"normal_behavior_score"`
	RecentActivities    []string `json:"recent_activities,omitempty"`

	// Compliance.
	Compliant           bool      `json:"compliant"`
	ComplianceIssues    []string  `json:"compliance_issues,omitempty"`
	LastComplianceCheck time.Time `json:"last_compliance_check"`

	// Threat state.
	HasThreatIndicators bool     `json:"has_threat_indicators"`
	ThreatIndicators    []string `json:"threat_indicators,omitempty"`
	ThreatLevel         string   `json:"threat_level,omitempty"`
}

// UpdateRiskLevel recomputes the band from the current score.
func (d *SimulatedDevice) UpdateRiskLevel() {
	d.RiskLevel = DeviceRiskLevelFromScore(d.RiskScore)
}

// IsHighRisk reports whether the device sits in the HIGH or CRITICAL band.
func (d *SimulatedDevice) IsHighRisk() bool {
	return d.RiskLevel == DeviceRiskHigh || d.RiskLevel == DeviceRiskCritical
}

// IsCorporateDevice reports whether the device is corporate-managed.
func (d *SimulatedDevice) IsCorporateDevice() bool {
	return d.DeviceType.IsCorporate()
}

// IsIoTDevice reports whether the device is an IoT endpoint.
func (d *SimulatedDevice) IsIoTDevice() bool {
	return d.DeviceType.IsIoT()
}

// Description returns a short human-readable summary.
func (d *SimulatedDevice) Description() string {
	return fmt.Sprintf("%s (%s) - %s", d.DeviceName, d.DeviceType.DisplayName(), d.UserName)
}

// AgeInDays returns whole days since the device was first seen.
func (d *SimulatedDevice) AgeInDays() int64 {
	if d.FirstSeen.IsZero() {
		return 0
	}
	return int64(time.Since(d.FirstSeen).Hours() / 24)
}

// NetworkUtilization returns total traffic as a ratio of the volume expected
// for the device type, capped at 1.0.
func (d *SimulatedDevice) NetworkUtilization() float64 {
	total := d.BytesTransmitted + d.BytesReceived
	if total == 0 {
		return 0.0
	}
	ratio := float64(total) / float64(d.expectedBytes())
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

func (d *SimulatedDevice) expectedBytes() int64 {
	switch d.DeviceType {
	case DeviceServer:
		return 1_000_000_000
	case DeviceLaptop, DeviceDesktop:
		return 100_000_000
	case DeviceMobilePhone, DeviceTablet:
		return 50_000_000
	default:
		return 10_000_000
	}
}
