// internal/workers/preferences/get-user-preferences/models.go
package getuserpreferences

import "doctor-ranking/internal/triage/personalization"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	UserID      string                      `json:"userId"`
	Preferences personalization.Preferences `json:"preferences"`
}
