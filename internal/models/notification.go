// internal/models/notification.go
package models

// Notification is the delivery record written after a send-match-notification
// job finishes. One record covers every channel tried for that job.
type Notification struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organizationId"`
	Type           string                 `json:"type"`     // "match_results", "deadline_reminder", "partner_suggestion"
	Channels       []string               `json:"channels"` // subset of "email", "sms"
	Status         string                 `json:"status"`   // "sent", "failed", "disabled"
	Payload        map[string]interface{} `json:"payload"`
	SentAt         string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
	Version  string `json:"version"`
}
