// internal/workers/ratings/get-doctor-ratings/models.go
package getdoctorratings

import (
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/services/ratings"
)

type Input struct {
	DoctorID string `json:"doctorId"`
	UserName string `json:"userName,omitempty"`
}

type Output struct {
	DoctorID   string                  `json:"doctorId"`
	Ratings    []ratings.Rating        `json:"ratings"`
	Reviews    []ratings.Rating        `json:"reviews"`
	Statistics models.RatingStatistics `json:"statistics"`
	UserRating *ratings.Rating         `json:"userRating"`
}
