// internal/workers/preferences/update-user-preferences/models.go
package updateuserpreferences

import (
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/personalization"
)

type Input struct {
	UserID    string         `json:"userId"`
	DoctorID  string         `json:"doctorId"`
	Rating    float64        `json:"rating"`
	Specialty string         `json:"specialty"`
	Doctor    *models.Doctor `json:"doctor,omitempty"`
}

type Output struct {
	Success     bool                        `json:"success"`
	Message     string                      `json:"message"`
	Preferences personalization.Preferences `json:"preferences"`
}
