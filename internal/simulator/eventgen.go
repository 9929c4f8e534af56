package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/internal/domain/models"
	domainservice "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

const (
	eventCacheTTL     = 24 * time.Hour
	eventCacheCleanup = time.Hour
)

// SessionSink accepts sessions for analysis. Submit returns false when the
// session was not accepted.
type SessionSink interface {
	Submit(ctx context.Context, session *models.Session) bool
}

// EventGenerator produces network events and security incidents from device
// state, publishes security events to the broker and routes high-risk
// sessions into the analysis pipeline.
type EventGenerator struct {
	rnd       *rand.Rand
	events    *gocache.Cache
	publisher domainservice.EventPublisher
	sink      SessionSink
	metrics   *monitoring.Metrics
	log       logger.Logger
}

// NewEventGenerator creates a generator backed by the given publisher and
// session sink.
func NewEventGenerator(publisher domainservice.EventPublisher, sink SessionSink, metrics *monitoring.Metrics, log logger.Logger) *EventGenerator {
	return &EventGenerator{
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		events:    gocache.New(eventCacheTTL, eventCacheCleanup),
		publisher: publisher,
		sink:      sink,
		metrics:   metrics,
		log:       log.WithComponent(constants.ComponentEventGenerator),
	}
}

// SubmitSessions converts every device's current state into a session and
// hands it to the analysis pipeline, fire-and-forget. Returns the number of
// sessions the pipeline accepted.
func (g *EventGenerator) SubmitSessions(ctx context.Context, devices []*models.SimulatedDevice) int {
	submitted := 0
	for _, d := range devices {
		if g.sink.Submit(ctx, SessionFromDevice(d)) {
			submitted++
		}
	}
	g.log.Debug(ctx, "submitted device sessions", logger.Fields{"submitted": submitted, "devices": len(devices)})
	return submitted
}

// GenerateNetworkEvents rolls per-device event probabilities and emits at
// most cfg.MaxEventsPerCycle events. Security events are forwarded to the
// broker.
func (g *EventGenerator) GenerateNetworkEvents(ctx context.Context, devices []*models.SimulatedDevice, scenario string, cfg *config.SimulatorConfig) []*models.NetworkEvent {
	var events []*models.NetworkEvent

	for _, d := range devices {
		if len(events) >= cfg.MaxEventsPerCycle {
			break
		}
		if !g.shouldGenerateEvent(d, scenario, cfg.NetworkEventProbability) {
			continue
		}
		event := g.createEventForDevice(d)
		events = append(events, event)
		g.cacheEvent(event)

		if event.IsSecurityEvent() {
			g.publish(ctx, event)
		}
	}

	g.log.Debug(ctx, "generated network events", logger.Fields{"count": len(events), "scenario": scenario})
	return events
}

// GenerateSecurityIncidents creates incidents for high-risk devices and
// submits the affected session for analysis. Returns the incident count.
func (g *EventGenerator) GenerateSecurityIncidents(ctx context.Context, devices []*models.SimulatedDevice, probability float64) int {
	count := 0

	for _, d := range devices {
		if !d.IsHighRisk() || g.rnd.Float64() >= probability {
			continue
		}
		incident := g.createSecurityIncident(d)
		g.cacheEvent(incident)
		g.publish(ctx, incident)
		count++

		if !g.sink.Submit(ctx, SessionFromDevice(d)) {
			g.log.Warn(ctx, "analysis pipeline rejected incident session", logger.Fields{"device_id": d.DeviceID})
		}
	}

	g.log.Debug(ctx, "generated security incidents", logger.Fields{"count": count})
	return count
}

// TriggerAnalysis pushes high-risk devices and the devices behind security
// events into the analysis pipeline. Returns the number of sessions
// submitted.
func (g *EventGenerator) TriggerAnalysis(ctx context.Context, devices []*models.SimulatedDevice, events []*models.NetworkEvent) int {
	submitted := 0

	var highRisk []*models.SimulatedDevice
	for _, d := range devices {
		if d.IsHighRisk() {
			highRisk = append(highRisk, d)
		}
	}
	if len(highRisk) > 0 && g.rnd.Float64() < 0.4 {
		for _, d := range highRisk {
			if g.sink.Submit(ctx, SessionFromDevice(d)) {
				submitted++
			}
		}
	}

	var security []*models.NetworkEvent
	for _, e := range events {
		if e.IsSecurityEvent() {
			security = append(security, e)
		}
	}
	if len(security) > 0 && g.rnd.Float64() < 0.3 {
		limit := len(security)
		if limit > 3 {
			limit = 3
		}
		for _, e := range security[:limit] {
			d := findDevice(devices, e.DeviceID)
			if d == nil {
				continue
			}
			if g.sink.Submit(ctx, SessionFromDevice(d)) {
				submitted++
			}
		}
	}

	g.log.Debug(ctx, "triggered analysis requests", logger.Fields{"count": submitted})
	return submitted
}

// Events returns all cached events.
func (g *EventGenerator) Events() []*models.NetworkEvent {
	items := g.events.Items()
	out := make([]*models.NetworkEvent, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*models.NetworkEvent))
	}
	return out
}

// EventsBySeverity returns cached events at the given severity.
func (g *EventGenerator) EventsBySeverity(severity models.EventSeverity) []*models.NetworkEvent {
	var out []*models.NetworkEvent
	for _, e := range g.Events() {
		if e.Severity == severity {
			out = append(out, e)
		}
	}
	return out
}

func (g *EventGenerator) shouldGenerateEvent(d *models.SimulatedDevice, scenario string, baseProbability float64) bool {
	probability := baseProbability

	if d.IsHighRisk() {
		probability += 0.2
	}
	if !d.Compliant {
		probability += 0.15
	}
	if d.HasThreatIndicators {
		probability += 0.25
	}

	switch constants.Scenario(scenario) {
	case constants.ScenarioDatacenter:
		probability *= 0.5
	case constants.ScenarioGuest, constants.ScenarioRetail:
		probability *= 1.5
	}

	return g.rnd.Float64() < probability
}

func (g *EventGenerator) createEventForDevice(d *models.SimulatedDevice) *models.NetworkEvent {
	eventType := g.selectEventType(d)
	severity := g.selectEventSeverity(d, eventType)

	return &models.NetworkEvent{
		EventID:   constants.EventIDPrefix + uuid.NewString()[:8],
		DeviceID:  d.DeviceID,
		EventType: eventType,
		Severity:  severity,
		Title:     fmt.Sprintf("%s detected on %s", eventType.DisplayName(), d.DeviceName),
		Description: fmt.Sprintf(
			"%s was detected on device %s (%s) owned by %s. Device risk score: %.1f. Location: %s",
			eventType.DisplayName(), d.DeviceName, d.DeviceType.DisplayName(),
			d.UserName, d.RiskScore, d.Location),
		Timestamp:   time.Now(),
		Source:      d.IPAddress,
		Destination: "Network",
		EventData:   eventDataFor(d),
	}
}

func (g *EventGenerator) selectEventType(d *models.SimulatedDevice) models.EventType {
	possible := []models.EventType{
		models.EventDeviceConnected,
		models.EventAuthenticationSuccess,
	}

	if d.IsHighRisk() {
		possible = append(possible,
			models.EventSuspiciousActivity,
			models.EventPolicyViolation,
			models.EventAnomalousBehavior)
	}
	if !d.Compliant {
		possible = append(possible,
			models.EventComplianceViolation,
			models.EventPostureAssessmentFailed)
	}
	if d.IsIoTDevice() {
		possible = append(possible,
			models.EventIoTDeviceAnomaly,
			models.EventIoTCommunicationPattern)
	}
	if d.HasThreatIndicators {
		possible = append(possible,
			models.EventMalwareDetected,
			models.EventUnauthorizedAccessAttempt)
	}

	return possible[g.rnd.Intn(len(possible))]
}

func (g *EventGenerator) selectEventSeverity(d *models.SimulatedDevice, eventType models.EventType) models.EventSeverity {
	if eventType == models.EventMalwareDetected || eventType == models.EventUnauthorizedAccessAttempt {
		if g.rnd.Intn(2) == 0 {
			return models.SeverityHigh
		}
		return models.SeverityCritical
	}
	if d.IsHighRisk() {
		if g.rnd.Intn(2) == 0 {
			return models.SeverityMedium
		}
		return models.SeverityHigh
	}
	if g.rnd.Intn(2) == 0 {
		return models.SeverityLow
	}
	return models.SeverityMedium
}

func (g *EventGenerator) createSecurityIncident(d *models.SimulatedDevice) *models.NetworkEvent {
	securityTypes := []models.EventType{
		models.EventMalwareDetected,
		models.EventUnauthorizedAccessAttempt,
		models.EventSuspiciousActivity,
		models.EventPortScanDetected,
		models.EventAnomalousBehavior,
	}
	eventType := securityTypes[g.rnd.Intn(len(securityTypes))]

	data := eventDataFor(d)
	data["threat_level"] = d.ThreatLevel

	return &models.NetworkEvent{
		EventID:   constants.IncidentIDPrefix + uuid.NewString()[:8],
		DeviceID:  d.DeviceID,
		EventType: eventType,
		Severity:  models.SeverityHigh,
		Title:     "Security Incident: " + eventType.DisplayName(),
		Description: fmt.Sprintf(
			"Security incident detected on high-risk device %s. Risk score: %.1f. Immediate investigation required.",
			d.DeviceName, d.RiskScore),
		Timestamp:   time.Now(),
		Source:      d.IPAddress,
		Destination: "Security Team",
		EventData:   data,
	}
}

func (g *EventGenerator) cacheEvent(event *models.NetworkEvent) {
	g.events.Set(event.EventID, event, gocache.DefaultExpiration)
	g.metrics.EventsGenerated.WithLabelValues(string(event.EventType), string(event.Severity)).Inc()
}

func (g *EventGenerator) publish(ctx context.Context, event *models.NetworkEvent) {
	if err := g.publisher.PublishEvent(ctx, event); err != nil {
		g.metrics.EventsPublished.WithLabelValues("error").Inc()
		g.log.Warn(ctx, "failed to publish security event", logger.Fields{
			"event_id": event.EventID,
			"error":    err.Error(),
		})
		return
	}
	g.metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func eventDataFor(d *models.SimulatedDevice) map[string]string {
	return map[string]string{
		"device_id":   d.DeviceID,
		"device_name": d.DeviceName,
		"device_type": d.DeviceType.DisplayName(),
		"risk_score":  strconv.FormatFloat(d.RiskScore, 'f', 2, 64),
		"location":    d.Location,
		"user_name":   d.UserName,
	}
}

func findDevice(devices []*models.SimulatedDevice, deviceID string) *models.SimulatedDevice {
	for _, d := range devices {
		if d.DeviceID == deviceID {
			return d
		}
	}
	return nil
}
