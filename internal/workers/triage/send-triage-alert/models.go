// internal/workers/triage/send-triage-alert/models.go
package sendtriagealert

import "doctor-ranking/internal/models"

// Input is the rank-doctors output plus the request fields still in scope.
type Input struct {
	UserID   string `json:"userId,omitempty"`
	Location string `json:"location,omitempty"`
	models.RankingResponse
}

type Output struct {
	AlertSent     bool                  `json:"alertSent"`
	Notifications []models.Notification `json:"notifications"`
}
