// internal/models/doctor.go
package models

// Doctor is the single shape every doctor source is normalized into.
type Doctor struct {
	ID           string   `json:"id,omitempty"`
	DoctorID     string   `json:"doctorId,omitempty"`
	NPI          string   `json:"npi,omitempty"`
	Name         string   `json:"name"`
	Specialty    string   `json:"specialty"`
	Specialties  []string `json:"specialties,omitempty"`
	Location     string   `json:"location"`
	Rating       float64  `json:"rating"`
	Gender       string   `json:"gender,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Credentials  string   `json:"credentials,omitempty"`
	Hospital     string   `json:"hospital,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	Address      string   `json:"address,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Source       string   `json:"source,omitempty"`

	TotalRatings int `json:"totalRatings"`
	TotalReviews int `json:"totalReviews"`

	ContentScore         *float64 `json:"contentScore,omitempty"`
	SimilarityScore      *float64 `json:"similarityScore,omitempty"`
	RecommendationReason string   `json:"recommendationReason,omitempty"`
}

// Doctor sources.
const (
	SourceDirectory = "directory"
	SourceLocalPool = "local"
	SourceFallback  = "fallback"
)

// RatingStatistics aggregates all ratings stored for one doctor.
type RatingStatistics struct {
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
	TotalReviews  int     `json:"totalReviews"`
}
