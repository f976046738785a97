package models

import (
	"time"

	"github.com/nkov/comment-triage/internal/taxonomy"
)

// ClassificationResult is the output of one classifier call.
type ClassificationResult struct {
	Label taxonomy.Category `json:"label"`
	Score float64           `json:"score"`
}

// CRMActionType selects which CRM operation an action represents.
type CRMActionType string

const (
	ActionTag             CRMActionType = "tag"
	ActionTriggerWorkflow CRMActionType = "trigger-workflow"
)

// CRMAction is the ephemeral payload of one CRM dispatch. The CRM system is
// the source of truth; nothing is persisted locally.
type CRMAction struct {
	Type       CRMActionType     `json:"type"`
	Label      taxonomy.Category `json:"label"`
	ContactRef string            `json:"contact_ref"`
}

// NotifyStatus reports what the CRM notifier did for one outcome.
type NotifyStatus string

const (
	NotifySkipped NotifyStatus = "skipped"
	NotifySent    NotifyStatus = "sent"
	NotifyFailed  NotifyStatus = "failed"
)

// TriageOutcome is the fully populated result of one pipeline invocation.
// It is owned by the dashboard session and discarded when history is cleared.
type TriageOutcome struct {
	ID          string               `json:"id"`
	Comment     string               `json:"comment"`
	Result      ClassificationResult `json:"result"`
	Reply       string               `json:"reply"`
	CRMAction   *CRMAction           `json:"crm_action,omitempty"`
	CRMStatus   NotifyStatus         `json:"crm_status"`
	Engagement  int                  `json:"engagement_score"`
	Warning     string               `json:"warning,omitempty"`
	ProcessedAt time.Time            `json:"processed_at"`
	Duration    time.Duration        `json:"duration"`
}
