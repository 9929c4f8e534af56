package models

import "time"

// ============================================================================
// Policy Recommendation
// ============================================================================

// RecommendationType classifies what a recommendation asks for.
type RecommendationType string

const (
	RecommendNewPolicy            RecommendationType = "NEW_POLICY"
	RecommendPolicyModification   RecommendationType = "POLICY_MODIFICATION"
	RecommendPolicyDeactivation   RecommendationType = "POLICY_DEACTIVATION"
	RecommendPolicyPriorityChange RecommendationType = "POLICY_PRIORITY_CHANGE"
	RecommendEmergencyResponse    RecommendationType = "EMERGENCY_RESPONSE"
	RecommendOptimization         RecommendationType = "OPTIMIZATION"
)

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityUrgent   Priority = "URGENT"
	PriorityCritical Priority = "CRITICAL"
)

// Level returns the numeric rank of the priority, 1 through 5.
func (p Priority) Level() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	case PriorityCritical:
		return 5
	default:
		return 0
	}
}

// ImplementationComplexity estimates rollout effort.
type ImplementationComplexity string

const (
	ComplexitySimple      ImplementationComplexity = "SIMPLE"
	ComplexityModerate    ImplementationComplexity = "MODERATE"
	ComplexityComplex     ImplementationComplexity = "COMPLEX"
	ComplexityVeryComplex ImplementationComplexity = "VERY_COMPLEX"
)

// PolicyRecommendation is an AI-generated suggestion for a policy change,
// carrying both the rationale and enough detail to materialize the policy.
type PolicyRecommendation struct {
	RecommendationID string             `json:"recommendation_id"`
	TriggeredBy      string             `json:"triggered_by"`
	Type             RecommendationType `json:"type"`
	Confidence       float64            `json:"confidence"`
	Priority         Priority           `json:"priority"`
	GeneratedAt      time.Time          `json:"generated_at"`
	AIModelVersion   string             `json:"ai_model_version"`
	Reasoning        string             `json:"reasoning"`
	EvidencePoints   []string           `json:"evidence_points,omitempty"`
	Context          map[string]string  `json:"context,omitempty"`

	// Recommended policy details.
	RecommendedPolicyName  string     `json:"recommended_policy_name"`
	RecommendedDescription string     `json:"recommended_description"`
	RecommendedPolicyType  PolicyType `json:"recommended_policy_type"`
	RecommendedConditions  string     `json:"recommended_conditions"`
	RecommendedActions     string     `json:"recommended_actions"`
	RecommendedPriority    int        `json:"recommended_priority"`
	ExpectedImpact         float64    `json:"expected_impact"`
	RiskReduction          float64    `json:"risk_reduction"`

	// Implementation details.
	Complexity                  ImplementationComplexity `json:"complexity"`
	Prerequisites               []string                 `json:"prerequisites,omitempty"`
	PotentialSideEffects        []string                 `json:"potential_side_effects,omitempty"`
	RollbackPlan                string                   `json:"rollback_plan,omitempty"`
	EstimatedImplementationTime int64                    `json:"estimated_implementation_time"` // seconds
}
