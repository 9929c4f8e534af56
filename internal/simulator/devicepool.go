// Package simulator generates a living population of network endpoints and
// the events they produce, feeding realistic session data into the analysis
// pipeline.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// Name pools for generated devices and users.
var (
	laptopNames = []string{"John-Laptop", "Sarah-MacBook", "IT-Laptop-01", "Marketing-PC", "Finance-Workstation"}
	mobileNames = []string{"iPhone-12", "Samsung-Galaxy", "Corporate-iPad", "Guest-Phone", "BYOD-Device"}
	iotNames    = []string{"Printer-HP-01", "Camera-Axis-02", "Sensor-Temp-03", "Badge-Reader-04", "Smart-TV-05"}
	serverNames = []string{"DB-Server-01", "Web-Server-02", "File-Server-03", "Mail-Server-04", "Backup-Server-05"}

	departments = []string{"IT", "Marketing", "Finance", "HR", "Operations", "Sales", "Engineering", "Legal"}
	userRoles   = []string{"Employee", "Manager", "Admin", "Contractor", "Guest", "Executive", "Intern"}
	locations   = []string{"Building A", "Building B", "Building C", "Data Center", "Guest Area", "Conference Room"}

	firstNames = []string{"john", "sarah", "mike", "lisa", "david", "emma", "alex", "maria"}
	lastNames  = []string{"smith", "johnson", "brown", "davis", "wilson", "garcia", "martinez", "anderson"}
)

// DevicePool owns the set of simulated devices and mutates their state on
// every simulation cycle.
type DevicePool struct {
	mu      sync.RWMutex
	devices map[string]*models.SimulatedDevice
	rnd     *rand.Rand
	metrics *monitoring.Metrics
	log     logger.Logger
}

// NewDevicePool creates an empty pool.
func NewDevicePool(metrics *monitoring.Metrics, log logger.Logger) *DevicePool {
	return &DevicePool{
		devices: make(map[string]*models.SimulatedDevice),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		metrics: metrics,
		log:     log.WithComponent(constants.ComponentDevicePool),
	}
}

// Reconcile grows or shrinks the pool to the target size, creating devices
// according to the scenario's type distribution. Returns the number of
// devices created and removed.
func (p *DevicePool) Reconcile(ctx context.Context, target int, scenario string, dist config.DeviceDistribution) (created, removed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.devices) < target {
		d := p.newDevice(scenario, dist)
		p.devices[d.DeviceID] = d
		created++
	}
	for len(p.devices) > target {
		for id := range p.devices {
			delete(p.devices, id)
			removed++
			break
		}
	}

	p.metrics.DevicePoolSize.Set(float64(len(p.devices)))
	if created > 0 {
		p.log.Info(ctx, "created new devices", logger.Fields{"count": created, "scenario": scenario})
	}
	if removed > 0 {
		p.log.Info(ctx, "removed excess devices", logger.Fields{"count": removed})
	}
	return created, removed
}

// Tick advances every device's activity state by one cycle and returns the
// live devices. The returned pointers are only safe on the simulation loop;
// concurrent readers must go through Devices or DeviceByID.
func (p *DevicePool) Tick(ctx context.Context, scenario string) []*models.SimulatedDevice {
	p.mu.Lock()
	defer p.mu.Unlock()

	devices := make([]*models.SimulatedDevice, 0, len(p.devices))
	for _, d := range p.devices {
		p.updateActivity(d)
		devices = append(devices, d)
	}
	p.log.Debug(ctx, "updated device activity", logger.Fields{"count": len(devices), "scenario": scenario})
	return devices
}

// UpdateRiskScores recomputes risk scores for the given devices, applying a
// small noise term. Only changes larger than 0.1 are committed. Returns the
// number of devices whose score changed.
func (p *DevicePool) UpdateRiskScores(ctx context.Context, devices []*models.SimulatedDevice) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	updated := 0
	for _, d := range devices {
		oldScore := d.RiskScore
		newScore := calculateRiskScore(d)
		newScore += p.rnd.NormFloat64() * 0.5
		newScore = clampScore(newScore)

		if abs(newScore-oldScore) > 0.1 {
			d.RiskScore = newScore
			d.UpdateRiskLevel()
			updateRiskFactors(d)
			updated++
		}
	}
	return updated
}

// Devices returns a snapshot of all devices in the pool. Devices are copied
// so readers never observe a tick mutating them.
func (p *DevicePool) Devices() []*models.SimulatedDevice {
	p.mu.RLock()
	defer p.mu.RUnlock()

	devices := make([]*models.SimulatedDevice, 0, len(p.devices))
	for _, d := range p.devices {
		devices = append(devices, snapshotDevice(d))
	}
	return devices
}

// DeviceByID looks up one device and returns a copy of its current state.
// The second return is false when the device is not in the pool.
func (p *DevicePool) DeviceByID(deviceID string) (*models.SimulatedDevice, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.devices[deviceID]
	if !ok {
		return nil, false
	}
	return snapshotDevice(d), true
}

// DevicesByRiskLevel returns copies of the devices currently in the given band.
func (p *DevicePool) DevicesByRiskLevel(level models.DeviceRiskLevel) []*models.SimulatedDevice {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*models.SimulatedDevice
	for _, d := range p.devices {
		if d.RiskLevel == level {
			out = append(out, snapshotDevice(d))
		}
	}
	return out
}

func snapshotDevice(d *models.SimulatedDevice) *models.SimulatedDevice {
	c := *d
	c.RiskFactors = append([]string(nil), d.RiskFactors...)
	c.RecentActivities = append([]string(nil), d.RecentActivities...)
	c.ComplianceIssues = append([]string(nil), d.ComplianceIssues...)
	c.ThreatIndicators = append([]string(nil), d.ThreatIndicators...)
	return &c
}

// Size returns the current pool size.
func (p *DevicePool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.devices)
}

func (p *DevicePool) newDevice(scenario string, dist config.DeviceDistribution) *models.SimulatedDevice {
	deviceType := p.pickDeviceType(scenario, dist)
	now := time.Now()

	d := &models.SimulatedDevice{
		DeviceID:     constants.DeviceIDPrefix + uuid.NewString()[:8],
		DeviceName:   p.deviceName(deviceType),
		MACAddress:   p.macAddress(),
		IPAddress:    p.ipAddress(),
		DeviceType:   deviceType,
		Manufacturer: manufacturerFor(deviceType, p.rnd),
		Model:        fmt.Sprintf("%s-Model-%d", deviceType.DisplayName(), 1+p.rnd.Intn(10)),
		OSVersion:    osVersionFor(deviceType, p.rnd),

		UserName:       firstNames[p.rnd.Intn(len(firstNames))] + "." + lastNames[p.rnd.Intn(len(lastNames))],
		UserDepartment: departments[p.rnd.Intn(len(departments))],
		UserRole:       userRoles[p.rnd.Intn(len(userRoles))],

		Location: locations[p.rnd.Intn(len(locations))],
		Building: fmt.Sprintf("Building %c", 'A'+rune(p.rnd.Intn(3))),
		Floor:    fmt.Sprintf("Floor %d", 1+p.rnd.Intn(5)),
		VLAN:     fmt.Sprintf("VLAN-%d", 100+p.rnd.Intn(50)),

		AuthenticationMethod: authMethodFor(deviceType, p.rnd),
		RiskScore:            1.0 + p.rnd.Float64()*9.0,

		LastSeen:         now,
		FirstSeen:        now.AddDate(0, 0, -p.rnd.Intn(365)),
		BytesTransmitted: p.rnd.Int63n(1_000_000_000),
		BytesReceived:    p.rnd.Int63n(1_000_000_000),
		ConnectionCount:  p.rnd.Intn(100),
		Active:           p.rnd.Float64() > 0.1,

		NormalBehaviorScore: 0.5 + p.rnd.Float64()*0.5,
		Compliant:           p.rnd.Float64() > 0.2,
		LastComplianceCheck: now.Add(-time.Duration(p.rnd.Intn(24)) * time.Hour),

		HasThreatIndicators: p.rnd.Float64() < 0.1,
		ThreatLevel:         "LOW",
	}
	if p.rnd.Intn(2) == 0 {
		d.PostureStatus = constants.PostureCompliant
	} else {
		d.PostureStatus = constants.PostureNonCompliant
	}
	d.UpdateRiskLevel()
	return d
}

// pickDeviceType rolls against the scenario's distribution weights and
// resolves the bucket to a concrete type.
func (p *DevicePool) pickDeviceType(scenario string, dist config.DeviceDistribution) models.DeviceType {
	total := dist.Laptop + dist.Mobile + dist.Tablet + dist.Server + dist.IoT + dist.Other
	if total <= 0 {
		return models.DeviceLaptop
	}
	roll := p.rnd.Intn(total)

	switch {
	case roll < dist.Laptop:
		if p.rnd.Intn(2) == 0 {
			return models.DeviceLaptop
		}
		return models.DeviceDesktop
	case roll < dist.Laptop+dist.Mobile:
		return models.DeviceMobilePhone
	case roll < dist.Laptop+dist.Mobile+dist.Tablet:
		return models.DeviceTablet
	case roll < dist.Laptop+dist.Mobile+dist.Tablet+dist.Server:
		if p.rnd.Float64() < 0.8 {
			return models.DeviceServer
		}
		return models.DeviceNetworkDevice
	case roll < dist.Laptop+dist.Mobile+dist.Tablet+dist.Server+dist.IoT:
		return pick(p.rnd, iotTypesFor(scenario))
	default:
		return pick(p.rnd, otherTypesFor(scenario))
	}
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.Intn(len(items))]
}

func iotTypesFor(scenario string) []models.DeviceType {
	switch constants.Scenario(scenario) {
	case constants.ScenarioOffice:
		return []models.DeviceType{models.DeviceIoTPrinter, models.DeviceIoTBadgeReader}
	case constants.ScenarioCampus:
		return []models.DeviceType{models.DeviceIoTSensor, models.DeviceIoTCamera}
	case constants.ScenarioHealthcare:
		return []models.DeviceType{models.DeviceIoTSensor, models.DeviceIoTCamera}
	case constants.ScenarioManufacturing:
		return []models.DeviceType{models.DeviceIoTSensor, models.DeviceIoTCamera}
	case constants.ScenarioRetail:
		return []models.DeviceType{models.DeviceIoTCamera}
	default:
		return []models.DeviceType{models.DeviceIoTSensor}
	}
}

func otherTypesFor(scenario string) []models.DeviceType {
	switch constants.Scenario(scenario) {
	case constants.ScenarioOffice:
		return []models.DeviceType{models.DeviceVoIPPhone, models.DeviceUnknown}
	case constants.ScenarioCampus:
		return []models.DeviceType{models.DeviceSmartTV, models.DeviceUnknown}
	case constants.ScenarioDatacenter:
		return []models.DeviceType{models.DeviceNetworkDevice, models.DeviceUnknown}
	case constants.ScenarioHealthcare:
		return []models.DeviceType{models.DeviceMedicalDevice, models.DeviceUnknown}
	case constants.ScenarioManufacturing:
		return []models.DeviceType{models.DeviceManufacturingEquipment, models.DeviceUnknown}
	case constants.ScenarioRetail:
		return []models.DeviceType{models.DevicePOSTerminal, models.DeviceKiosk, models.DeviceUnknown}
	default:
		return []models.DeviceType{models.DeviceUnknown}
	}
}

func (p *DevicePool) deviceName(deviceType models.DeviceType) string {
	switch deviceType {
	case models.DeviceLaptop, models.DeviceDesktop:
		return fmt.Sprintf("%s-%d", laptopNames[p.rnd.Intn(len(laptopNames))], p.rnd.Intn(100))
	case models.DeviceMobilePhone, models.DeviceTablet:
		return fmt.Sprintf("%s-%d", mobileNames[p.rnd.Intn(len(mobileNames))], p.rnd.Intn(100))
	case models.DeviceServer:
		return fmt.Sprintf("%s-%d", serverNames[p.rnd.Intn(len(serverNames))], p.rnd.Intn(10))
	default:
		return fmt.Sprintf("%s-%d", iotNames[p.rnd.Intn(len(iotNames))], p.rnd.Intn(100))
	}
}

func (p *DevicePool) macAddress() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		p.rnd.Intn(256), p.rnd.Intn(256), p.rnd.Intn(256),
		p.rnd.Intn(256), p.rnd.Intn(256), p.rnd.Intn(256))
}

func (p *DevicePool) ipAddress() string {
	switch p.rnd.Intn(4) {
	case 0:
		return fmt.Sprintf("192.168.%d.%d", 1+p.rnd.Intn(10), 1+p.rnd.Intn(254))
	case 1:
		return fmt.Sprintf("10.0.%d.%d", 1+p.rnd.Intn(255), 1+p.rnd.Intn(254))
	case 2:
		return fmt.Sprintf("172.16.%d.%d", 1+p.rnd.Intn(15), 1+p.rnd.Intn(254))
	default:
		return fmt.Sprintf("192.168.100.%d", 1+p.rnd.Intn(254))
	}
}

func manufacturerFor(deviceType models.DeviceType, rnd *rand.Rand) string {
	switch deviceType {
	case models.DeviceLaptop, models.DeviceDesktop:
		if rnd.Intn(2) == 0 {
			return "Dell"
		}
		return "HP"
	case models.DeviceMobilePhone:
		if rnd.Intn(2) == 0 {
			return "Apple"
		}
		return "Samsung"
	case models.DeviceServer:
		return "Cisco"
	default:
		return "Generic"
	}
}

func osVersionFor(deviceType models.DeviceType, rnd *rand.Rand) string {
	switch deviceType {
	case models.DeviceLaptop, models.DeviceDesktop:
		return fmt.Sprintf("Windows %d", 10+rnd.Intn(2))
	case models.DeviceMobilePhone:
		if rnd.Intn(2) == 0 {
			return "iOS 17"
		}
		return "Android 14"
	case models.DeviceServer:
		return "Linux Ubuntu 22.04"
	default:
		return "Embedded OS"
	}
}

func authMethodFor(deviceType models.DeviceType, rnd *rand.Rand) constants.AuthMethod {
	if deviceType.IsIoT() {
		return constants.AuthMethodMAB
	}
	if rnd.Intn(2) == 0 {
		return constants.AuthMethodDot1X
	}
	return constants.AuthMethodGuest
}

// updateActivity moves one device forward a cycle: traffic, connections,
// behavior drift, compliance re-checks and threat indicators.
func (p *DevicePool) updateActivity(d *models.SimulatedDevice) {
	d.LastSeen = time.Now()

	// Up to 10MB of new traffic each direction.
	d.BytesTransmitted += p.rnd.Int63n(10_000_000)
	d.BytesReceived += p.rnd.Int63n(10_000_000)

	if p.rnd.Float64() < 0.3 {
		d.ConnectionCount++
	}

	d.Active = p.rnd.Float64() > 0.05

	behavior := d.NormalBehaviorScore + p.rnd.NormFloat64()*0.1
	if behavior < 0.0 {
		behavior = 0.0
	} else if behavior > 1.0 {
		behavior = 1.0
	}
	d.NormalBehaviorScore = behavior

	if p.rnd.Float64() < 0.1 {
		d.Compliant = p.rnd.Float64() > 0.2
		d.LastComplianceCheck = time.Now()
		if d.Compliant {
			d.PostureStatus = constants.PostureCompliant
		} else {
			d.PostureStatus = constants.PostureNonCompliant
		}
	}

	p.updateThreatIndicators(d)
}

func (p *DevicePool) updateThreatIndicators(d *models.SimulatedDevice) {
	var threats []string
	hasThreats := false

	if p.rnd.Float64() < 0.05 {
		hasThreats = true

		if d.DeviceType == models.DeviceUnknown {
			threats = append(threats, "Unidentified device behavior")
		}
		if d.NormalBehaviorScore < 0.2 {
			threats = append(threats, "Suspicious network activity")
		}
		if !d.Compliant {
			threats = append(threats, "Security policy violations")
		}
		if p.rnd.Float64() < 0.3 {
			threats = append(threats, "Unusual traffic patterns")
		}
		if p.rnd.Float64() < 0.2 {
			threats = append(threats, "Failed authentication attempts")
		}
	}

	d.HasThreatIndicators = hasThreats
	d.ThreatIndicators = threats
	switch {
	case !hasThreats:
		d.ThreatLevel = "LOW"
	case len(threats) > 2:
		d.ThreatLevel = "HIGH"
	default:
		d.ThreatLevel = "MEDIUM"
	}
}

// calculateRiskScore derives a device's risk from its type, authentication,
// compliance, behavior, threat state and age.
func calculateRiskScore(d *models.SimulatedDevice) float64 {
	score := 0.0

	switch d.DeviceType {
	case models.DeviceUnknown:
		score += 4.0
	case models.DeviceMobilePhone, models.DeviceTablet:
		score += 2.0
	case models.DeviceIoTSensor, models.DeviceIoTCamera:
		score += 3.0
	case models.DeviceServer:
		score += 1.0
	default:
		score += 1.5
	}

	switch d.AuthenticationMethod {
	case constants.AuthMethodGuest:
		score += 2.0
	case constants.AuthMethodMAB:
		score += 1.5
	}

	if !d.Compliant {
		score += 2.5
	}
	if d.NormalBehaviorScore < 0.3 {
		score += 2.0
	}
	if d.HasThreatIndicators {
		score += 3.0
	}

	age := d.AgeInDays()
	if age < 1 {
		score += 1.5
	} else if age > 365 {
		score += 1.0
	}

	return clampScore(score)
}

func updateRiskFactors(d *models.SimulatedDevice) {
	var factors []string

	if d.DeviceType == models.DeviceUnknown {
		factors = append(factors, "Unknown device type")
	}
	if d.AuthenticationMethod == constants.AuthMethodGuest {
		factors = append(factors, "Guest network access")
	}
	if !d.Compliant {
		factors = append(factors, "Non-compliant posture")
	}
	if d.NormalBehaviorScore < 0.3 {
		factors = append(factors, "Abnormal behavior pattern")
	}
	if d.HasThreatIndicators {
		factors = append(factors, "Active threat indicators")
	}
	if d.AgeInDays() < 1 {
		factors = append(factors, "New device on network")
	}
	if d.NetworkUtilization() > 0.8 {
		factors = append(factors, "High network utilization")
	}

	d.RiskFactors = factors
}

// SessionFromDevice converts a device's current state into the session shape
// consumed by the analysis pipeline.
func SessionFromDevice(d *models.SimulatedDevice) *models.Session {
	state := constants.SessionStateInactive
	if d.Active {
		state = constants.SessionStateActive
	}
	return &models.Session{
		SessionID:            d.DeviceID,
		UserName:             d.UserName,
		MACAddress:           d.MACAddress,
		IPAddress:            d.IPAddress,
		DeviceType:           d.DeviceType,
		OperatingSystem:      d.OSVersion,
		AuthenticationMethod: d.AuthenticationMethod,
		PostureStatus:        d.PostureStatus,
		State:                state,
		Location:             d.Location,
		VLANID:               d.VLAN,
		StartTime:            d.FirstSeen,
		LastUpdateTime:       d.LastSeen,
	}
}

func clampScore(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 10.0 {
		return 10.0
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
