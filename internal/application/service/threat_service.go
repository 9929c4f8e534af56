package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// heuristicThreatDetector is the rule-based ThreatDetector. Each session
// yields zero, one or two detections: a probabilistic primary detection whose
// type is drawn uniformly, plus an independent behavioral anomaly detection.
type heuristicThreatDetector struct {
	logger logger.Logger
	rng    *rand.Rand
}

// NewHeuristicThreatDetector creates the rule-based threat detector.
func NewHeuristicThreatDetector(log logger.Logger) domainService.ThreatDetector {
	return &heuristicThreatDetector{
		logger: log.WithComponent(constants.ComponentThreatDetector),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *heuristicThreatDetector) DetectThreats(ctx context.Context, session *models.Session) ([]models.ThreatDetection, error) {
	var threats []models.ThreatDetection

	if d.shouldDetect(session) {
		threats = append(threats, d.primaryDetection(session))
	}
	if d.rng.Float64() < 0.3 {
		threats = append(threats, d.behavioralDetection(session))
	}

	if len(threats) > 0 {
		d.logger.Debug(ctx, "threats detected", logger.Fields{
			"session_id":   session.SessionID,
			"threat_count": len(threats),
			"max_severity": models.MaxSeverity(threats),
		})
	}
	return threats, nil
}

// shouldDetect decides probabilistically whether the session carries a
// primary threat, weighting unknown devices, guest access and bad posture.
func (d *heuristicThreatDetector) shouldDetect(session *models.Session) bool {
	probability := 0.2
	if session.DeviceType == models.DeviceUnknown {
		probability += 0.3
	}
	if session.AuthenticationMethod == constants.AuthMethodGuest {
		probability += 0.2
	}
	if session.PostureStatus != constants.PostureCompliant {
		probability += 0.25
	}
	return d.rng.Float64() < probability
}

func (d *heuristicThreatDetector) primaryDetection(session *models.Session) models.ThreatDetection {
	threatType := models.AllThreatTypes[d.rng.Intn(len(models.AllThreatTypes))]
	severity := d.determineSeverity(session, threatType)

	return models.ThreatDetection{
		DetectionID:    constants.DetectionIDPrefix + shortID(),
		SessionID:      session.SessionID,
		UserName:       session.UserName,
		MACAddress:     session.MACAddress,
		IPAddress:      session.IPAddress,
		ThreatType:     threatType,
		Severity:       severity,
		Confidence:     0.75 + d.rng.Float64()*0.25,
		DetectedAt:     time.Now(),
		AIModelVersion: constants.ThreatModelVersion,
		Description: fmt.Sprintf(
			"%s threat detected with %s severity - AI analysis indicates potential security risk",
			threatType, severity),
		Indicators:         indicatorsForType(threatType),
		ThreatData:         threatData(session, threatType),
		RecommendedActions: actionsFor(threatType, severity),
		MitigationStrategy: mitigationStrategy(threatType, severity),
		Active:             true,
	}
}

func (d *heuristicThreatDetector) behavioralDetection(session *models.Session) models.ThreatDetection {
	return models.ThreatDetection{
		DetectionID:    constants.BehavioralThreatIDPrefix + shortID(),
		SessionID:      session.SessionID,
		UserName:       session.UserName,
		MACAddress:     session.MACAddress,
		IPAddress:      session.IPAddress,
		ThreatType:     models.ThreatAnomalousBehavior,
		Severity:       models.ThreatSeverityMedium,
		Confidence:     0.82,
		DetectedAt:     time.Now(),
		AIModelVersion: constants.ThreatModelVersion,
		Description:    "Anomalous user behavior pattern detected",
		Indicators: []string{
			"Unusual access patterns",
			"Abnormal session duration",
			"Unexpected resource access",
		},
		RecommendedActions: []string{
			"Enhanced monitoring",
			"User verification",
			"Access logging",
		},
		MitigationStrategy: "Monitor and verify user identity",
		Active:             true,
	}
}

// userBehaviorThreat rolls the detections across a user's sessions into one
// insider-threat finding graded at the worst observed severity.
func userBehaviorThreat(userName string, detections []models.ThreatDetection) models.ThreatDetection {
	return models.ThreatDetection{
		DetectionID:    "user-behavior-" + constants.DetectionIDPrefix + shortID(),
		UserName:       userName,
		ThreatType:     models.ThreatInsiderThreat,
		Severity:       models.MaxSeverity(detections),
		Confidence:     0.78,
		DetectedAt:     time.Now(),
		AIModelVersion: constants.ThreatModelVersion,
		Description:    "Suspicious user behavior pattern across multiple sessions",
		Indicators: []string{
			"Multiple threat detections",
			"Cross-session anomalies",
			"Behavioral pattern deviation",
		},
		RecommendedActions: []string{
			"User investigation",
			"Access review",
			"Security interview",
		},
		MitigationStrategy: "Comprehensive user behavior analysis and intervention",
		Active:             true,
	}
}

// deviceBehaviorThreat rolls the detections across an endpoint's sessions
// into one possible-compromise finding.
func deviceBehaviorThreat(macAddress string) models.ThreatDetection {
	return models.ThreatDetection{
		DetectionID:    "device-behavior-" + constants.DetectionIDPrefix + shortID(),
		MACAddress:     macAddress,
		ThreatType:     models.ThreatMalware,
		Severity:       models.ThreatSeverityHigh,
		Confidence:     0.85,
		DetectedAt:     time.Now(),
		AIModelVersion: constants.ThreatModelVersion,
		Description:    "Suspicious device behavior indicating possible compromise",
		Indicators: []string{
			"Multiple session threats",
			"Device behavior anomalies",
			"Potential malware indicators",
		},
		RecommendedActions: []string{
			"Device quarantine",
			"Malware scan",
			"Device reimaging",
		},
		MitigationStrategy: "Isolate and remediate compromised device",
		Active:             true,
	}
}

// determineSeverity grades a detection from an additive point score: 2 base,
// adjusted by threat class and by whether the device is unidentified.
func (d *heuristicThreatDetector) determineSeverity(session *models.Session, threatType models.ThreatType) models.ThreatSeverity {
	points := 2

	switch threatType {
	case models.ThreatMalware, models.ThreatAPT, models.ThreatZeroDay:
		points += 2
	case models.ThreatDataExfiltration, models.ThreatPrivilegeEscalation:
		points++
	case models.ThreatPolicyViolation, models.ThreatComplianceBreach:
		points--
	}

	if session.DeviceType == models.DeviceUnknown {
		points++
	}

	switch {
	case points >= 5:
		return models.ThreatSeverityCritical
	case points >= 4:
		return models.ThreatSeverityHigh
	case points >= 3:
		return models.ThreatSeverityMedium
	case points >= 2:
		return models.ThreatSeverityLow
	default:
		return models.ThreatSeverityInfo
	}
}

func indicatorsForType(threatType models.ThreatType) []string {
	switch threatType {
	case models.ThreatMalware:
		return []string{"Suspicious process execution", "Unusual network connections", "File system modifications"}
	case models.ThreatPhishing:
		return []string{"Suspicious email links", "Credential harvesting attempts", "Social engineering indicators"}
	case models.ThreatDataExfiltration:
		return []string{"Large data transfers", "Unusual access patterns", "Encrypted communications"}
	case models.ThreatAnomalousBehavior:
		return []string{"Behavioral deviation", "Unusual access times", "Abnormal resource usage"}
	default:
		return []string{"Generic threat indicators"}
	}
}

func threatData(session *models.Session, threatType models.ThreatType) map[string]string {
	deviceType := string(session.DeviceType)
	if deviceType == "" {
		deviceType = "unknown"
	}
	authMethod := string(session.AuthenticationMethod)
	if authMethod == "" {
		authMethod = "unknown"
	}
	location := session.Location
	if location == "" {
		location = "unknown"
	}
	return map[string]string{
		"session_id":  session.SessionID,
		"threat_type": string(threatType),
		"device_type": deviceType,
		"auth_method": authMethod,
		"location":    location,
	}
}

func actionsFor(threatType models.ThreatType, severity models.ThreatSeverity) []string {
	var actions []string

	switch severity {
	case models.ThreatSeverityCritical:
		actions = append(actions, "Immediate isolation", "Emergency response", "Executive notification")
	case models.ThreatSeverityHigh:
		actions = append(actions, "Quarantine", "Investigation", "Security team alert")
	case models.ThreatSeverityMedium:
		actions = append(actions, "Enhanced monitoring", "Access restriction", "Logging")
	default:
		actions = append(actions, "Monitor", "Log", "Analyze")
	}

	switch threatType {
	case models.ThreatMalware:
		actions = append(actions, "Antivirus scan", "System remediation")
	case models.ThreatDataExfiltration:
		actions = append(actions, "Network traffic analysis", "Data loss prevention")
	case models.ThreatInsiderThreat:
		actions = append(actions, "User investigation", "Access review")
	}

	return actions
}

func mitigationStrategy(threatType models.ThreatType, severity models.ThreatSeverity) string {
	return fmt.Sprintf(
		"Implement %s-level response for %s threat including containment, analysis, and remediation",
		strings.ToLower(string(severity)), strings.ToLower(string(threatType)))
}
