package service

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/pkg/errors"
)

// historyTTL bounds how long analysis artifacts stay queryable.
const historyTTL = 24 * time.Hour

// ThreatStatistics summarizes the recorded detections.
type ThreatStatistics struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Resolved   int            `json:"resolved"`
	BySeverity map[string]int `json:"by_severity"`
	ByType     map[string]int `json:"by_type"`
}

// analysisHistory keeps the assessments, detections and recommendations the
// pipeline has produced so the API can serve them back.
type analysisHistory struct {
	assessments     *gocache.Cache
	detections      *gocache.Cache
	recommendations *gocache.Cache
}

func newAnalysisHistory() *analysisHistory {
	return &analysisHistory{
		assessments:     gocache.New(historyTTL, time.Hour),
		detections:      gocache.New(historyTTL, time.Hour),
		recommendations: gocache.New(historyTTL, time.Hour),
	}
}

func (h *analysisHistory) recordAssessment(a *models.RiskAssessment) {
	h.assessments.SetDefault(a.AssessmentID, a)
}

func (h *analysisHistory) recordDetection(d *models.ThreatDetection) {
	h.detections.SetDefault(d.DetectionID, d)
}

func (h *analysisHistory) recordRecommendation(r *models.PolicyRecommendation) {
	h.recommendations.SetDefault(r.RecommendationID, r)
}

func (o *analysisOrchestrator) RiskHistory(ctx context.Context, sessionID string) []*models.RiskAssessment {
	var out []*models.RiskAssessment
	for _, item := range o.history.assessments.Items() {
		a := item.Object.(*models.RiskAssessment)
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssessmentTime.After(out[j].AssessmentTime)
	})
	return out
}

func (o *analysisOrchestrator) ActiveThreats(ctx context.Context) []*models.ThreatDetection {
	var out []*models.ThreatDetection
	for _, item := range o.history.detections.Items() {
		d := item.Object.(*models.ThreatDetection)
		if d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

func (o *analysisOrchestrator) ThreatsBySeverity(ctx context.Context, severity models.ThreatSeverity) []*models.ThreatDetection {
	var out []*models.ThreatDetection
	for _, item := range o.history.detections.Items() {
		d := item.Object.(*models.ThreatDetection)
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

func (o *analysisOrchestrator) ThreatStatistics(ctx context.Context) *ThreatStatistics {
	stats := &ThreatStatistics{
		BySeverity: make(map[string]int),
		ByType:     make(map[string]int),
	}
	for _, item := range o.history.detections.Items() {
		d := item.Object.(*models.ThreatDetection)
		stats.Total++
		if d.Active {
			stats.Active++
		} else {
			stats.Resolved++
		}
		stats.BySeverity[string(d.Severity)]++
		stats.ByType[string(d.ThreatType)]++
	}
	return stats
}

func (o *analysisOrchestrator) ResolveThreat(ctx context.Context, detectionID, resolvedBy string) (*models.ThreatDetection, error) {
	v, found := o.history.detections.Get(detectionID)
	if !found {
		return nil, errors.ErrNotFound("threat detection", detectionID)
	}
	d := v.(*models.ThreatDetection)
	if d.Active {
		d.Active = false
		d.ResolvedAt = time.Now()
		d.ResolvedBy = resolvedBy
	}
	return d, nil
}

func (o *analysisOrchestrator) RecommendationHistory(ctx context.Context) []*models.PolicyRecommendation {
	var out []*models.PolicyRecommendation
	for _, item := range o.history.recommendations.Items() {
		out = append(out, item.Object.(*models.PolicyRecommendation))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}
