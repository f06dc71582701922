// internal/workers/communication/send-match-notification/models.go
package sendmatchnotification

type Input struct {
	OrganizationID   string                 `json:"organizationId"`
	NotificationType string                 `json:"notificationType"`
	Priority         string                 `json:"priority,omitempty"`
	MatchCount       int                    `json:"matchCount,omitempty"`
	Summary          string                 `json:"summary,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601 format
}

// Notification types
const (
	TypeMatchResults      = "match_results"
	TypeDeadlineReminder  = "deadline_reminder"
	TypePartnerSuggestion = "partner_suggestion"
)

// Notification statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
