package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/naps/internal/domain/models"
	domainService "github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// ModelClient is the completion interface the LLM strategies depend on. The
// concrete implementation lives in internal/infrastructure/aimodel.
type ModelClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const riskSystemPrompt = `You are a network security risk analyst. ` +
	`Respond with JSON only, no prose.`

// llmRiskScorer asks an external model to assess sessions. Any model failure
// falls back to the heuristic scorer so analysis never stalls on the model
// endpoint.
type llmRiskScorer struct {
	client   ModelClient
	fallback domainService.RiskScorer
	logger   logger.Logger
}

// NewLLMRiskScorer creates the model-backed risk scorer with a heuristic
// fallback.
func NewLLMRiskScorer(client ModelClient, fallback domainService.RiskScorer, log logger.Logger) domainService.RiskScorer {
	return &llmRiskScorer{
		client:   client,
		fallback: fallback,
		logger:   log.WithComponent(constants.ComponentRiskScorer),
	}
}

// riskResponse is the JSON shape the model is instructed to produce.
type riskResponse struct {
	OverallRiskScore float64  `json:"overallRiskScore"`
	RiskLevel        string   `json:"riskLevel"`
	Confidence       float64  `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	Recommendations  []string `json:"recommendations"`
	RiskFactors      []struct {
		FactorName  string  `json:"factorName"`
		Weight      float64 `json:"weight"`
		Score       float64 `json:"score"`
		Description string  `json:"description"`
	} `json:"riskFactors"`
}

func (s *llmRiskScorer) AssessSession(ctx context.Context, session *models.Session) (*models.RiskAssessment, error) {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return s.fallback.AssessSession(ctx, session)
	}

	prompt := fmt.Sprintf(`Analyze this network session for security risks and provide a risk assessment:

Session Data:
%s

Respond with a JSON object:
{
  "overallRiskScore": <number between 0-10>,
  "riskLevel": "<VERY_LOW|LOW|MEDIUM|HIGH|VERY_HIGH|CRITICAL>",
  "confidence": <number between 0-1>,
  "reasoning": "<detailed explanation>",
  "riskFactors": [{"factorName": "<name>", "weight": <0-1>, "score": <0-10>, "description": "<text>"}],
  "recommendations": ["<recommendation>"]
}

Consider device type, authentication method strength, behavior patterns,
network location and posture compliance.`, sessionJSON)

	reply, err := s.client.Complete(ctx, riskSystemPrompt, prompt)
	if err != nil {
		s.logger.Warn(ctx, "model risk assessment failed, using heuristic fallback", logger.Fields{
			"session_id": session.SessionID,
			"error":      err.Error(),
		})
		return s.fallback.AssessSession(ctx, session)
	}

	assessment, err := s.parseAssessment(reply, session)
	if err != nil {
		s.logger.Warn(ctx, "unparseable model response, using heuristic fallback", logger.Fields{
			"session_id": session.SessionID,
			"error":      err.Error(),
		})
		return s.fallback.AssessSession(ctx, session)
	}
	return assessment, nil
}

func (s *llmRiskScorer) AssessUser(ctx context.Context, userName string, sessions []*models.Session) (*models.RiskAssessment, error) {
	// User aggregation stays heuristic; per-session model scores already
	// feed the aggregate through the pipeline.
	return s.fallback.AssessUser(ctx, userName, sessions)
}

func (s *llmRiskScorer) AssessDevice(ctx context.Context, macAddress string, sessions []*models.Session) (*models.RiskAssessment, error) {
	return s.fallback.AssessDevice(ctx, macAddress, sessions)
}

func (s *llmRiskScorer) parseAssessment(reply string, session *models.Session) (*models.RiskAssessment, error) {
	var parsed riskResponse
	if err := json.Unmarshal([]byte(extractJSON(reply)), &parsed); err != nil {
		return nil, err
	}
	if parsed.OverallRiskScore < 0 || parsed.OverallRiskScore > 10 {
		return nil, fmt.Errorf("risk score out of range: %v", parsed.OverallRiskScore)
	}

	factors := make([]models.RiskFactor, 0, len(parsed.RiskFactors))
	for _, f := range parsed.RiskFactors {
		factors = append(factors, models.RiskFactor{
			FactorName:  f.FactorName,
			Weight:      f.Weight,
			Score:       f.Score,
			Description: f.Description,
			Type:        models.FactorBehavioral,
		})
	}

	level := models.RiskLevel(parsed.RiskLevel)
	switch level {
	case models.RiskVeryLow, models.RiskLow, models.RiskMedium,
		models.RiskHigh, models.RiskVeryHigh, models.RiskCritical:
	default:
		level = models.RiskLevelFromScore(parsed.OverallRiskScore)
	}

	return &models.RiskAssessment{
		AssessmentID:     "model-" + constants.AssessmentIDPrefix + shortID(),
		SessionID:        session.SessionID,
		UserName:         session.UserName,
		MACAddress:       session.MACAddress,
		IPAddress:        session.IPAddress,
		OverallRiskScore: parsed.OverallRiskScore,
		RiskLevel:        level,
		Confidence:       parsed.Confidence,
		AssessmentTime:   time.Now(),
		AIModelVersion:   constants.RiskModelVersion,
		RiskFactors:      factors,
		Recommendations:  parsed.Recommendations,
		AssessmentReason: parsed.Reasoning,
	}, nil
}

// extractJSON strips markdown code fences some models wrap around JSON
// replies.
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		if idx := strings.LastIndex(reply, "```"); idx >= 0 {
			reply = reply[:idx]
		}
	}
	return strings.TrimSpace(reply)
}
