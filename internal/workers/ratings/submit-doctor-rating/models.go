// internal/workers/ratings/submit-doctor-rating/models.go
package submitdoctorrating

import "doctor-ranking/internal/models"

type Input struct {
	DoctorID  string         `json:"doctorId"`
	Rating    int            `json:"rating"`
	Review    string         `json:"review,omitempty"`
	UserName  string         `json:"userName,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Specialty string         `json:"specialty,omitempty"`
	Doctor    *models.Doctor `json:"doctor,omitempty"`
}

type Output struct {
	Success            bool                    `json:"success"`
	Message            string                  `json:"message"`
	Statistics         models.RatingStatistics `json:"statistics"`
	IsUpdate           bool                    `json:"isUpdate"`
	PreferencesUpdated bool                    `json:"preferencesUpdated"`
}
