package models

import "time"

// ============================================================================
// Policy
// ============================================================================

// PolicyType classifies the access-control concern a policy governs.
type PolicyType string

const (
	PolicyAuthorization    PolicyType = "AUTHORIZATION"
	PolicyAuthentication   PolicyType = "AUTHENTICATION"
	PolicyPosture          PolicyType = "POSTURE"
	PolicyProfiling        PolicyType = "PROFILING"
	PolicyGuestAccess      PolicyType = "GUEST_ACCESS"
	PolicyDeviceCompliance PolicyType = "DEVICE_COMPLIANCE"
	PolicyThreatResponse   PolicyType = "THREAT_RESPONSE"
)

// PolicyStatus tracks a policy through its lifecycle.
type PolicyStatus string

const (
	PolicyDraft           PolicyStatus = "DRAFT"
	PolicyPendingApproval PolicyStatus = "PENDING_APPROVAL"
	PolicyApproved        PolicyStatus = "APPROVED"
	PolicyActive          PolicyStatus = "ACTIVE"
	PolicyInactive        PolicyStatus = "INACTIVE"
	PolicyDeprecated      PolicyStatus = "DEPRECATED"
	PolicyRollbackPending PolicyStatus = "ROLLBACK_PENDING"
)

// PolicySource records how a policy came to exist.
type PolicySource string

const (
	SourceManual        PolicySource = "MANUAL"
	SourceAIRecommended PolicySource = "AI_RECOMMENDED"
	SourceAutoGenerated PolicySource = "AUTO_GENERATED"
	SourceImported      PolicySource = "IMPORTED"
)

// Policy is a network access policy, either hand-written or materialized from
// an AI recommendation. Conditions and actions are stored as JSON strings.
type Policy struct {
	PolicyID     string       `json:"policy_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Type         PolicyType   `json:"type"`
	Status       PolicyStatus `json:"status"`
	Priority     int          `json:"priority"`
	Conditions   string       `json:"conditions,omitempty"`
	Actions      string       `json:"actions,omitempty"`
	RiskScore    float64      `json:"risk_score,omitempty"`
	AIConfidence float64      `json:"ai_confidence,omitempty"`
	Source       PolicySource `json:"source"`

	CreatedBy  string    `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedBy  string    `json:"updated_by,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
	ApprovedBy string    `json:"approved_by,omitempty"`
	ApprovedAt time.Time `json:"approved_at,omitempty"`

	Version int64 `json:"version"`
}

// IsActive reports whether the policy is currently enforced.
func (p *Policy) IsActive() bool {
	return p.Status == PolicyActive
}
