// internal/models/notification.go
package models

type Notification struct {
	ID        string                 `json:"id"`
	RequestID string                 `json:"requestId"`
	UserID    string                 `json:"userId,omitempty"`
	Type      string                 `json:"type"`    // "urgent_triage"
	Channel   string                 `json:"channel"` // "email", "sns"
	Status    string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload   map[string]interface{} `json:"payload"`
	SentAt    string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
}
