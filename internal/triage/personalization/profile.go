// Package personalization keeps per-user doctor preferences and ranks doctors by how well
// they match them.
package personalization

import (
	"strconv"
	"strings"
	"time"
)

const (
	specialtyWeight = 0.4
	genderWeight    = 0.2
	locationWeight  = 0.3
	pastRatingBoost = 0.1

	positiveRating    = 4
	highlyRatedCutoff = 4.5
)

type AttributePreferences struct {
	Gender     string `json:"gender,omitempty"`
	Experience string `json:"experience,omitempty"`
	Location   string `json:"location,omitempty"`
	Hospital   string `json:"hospital,omitempty"`
}

type Consultation struct {
	DoctorID  string    `json:"doctorId"`
	Specialty string    `json:"specialty"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

type Preferences struct {
	PreferredSpecialties []string             `json:"preferredSpecialties"`
	DoctorAttributes     AttributePreferences `json:"doctorAttributes"`
	PastConsultations    []Consultation       `json:"pastConsultations"`
	Ratings              map[string]float64   `json:"ratings"`
	MedicalHistory       []string             `json:"medicalHistory"`
}

type UserProfile struct {
	UserID      string      `json:"userId"`
	Preferences Preferences `json:"preferences"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Features is the subset of a doctor record the similarity score looks at.
type Features struct {
	DoctorID   string  `json:"doctorId,omitempty"`
	Specialty  string  `json:"specialty,omitempty"`
	Gender     string  `json:"gender,omitempty"`
	Location   string  `json:"location,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Experience string  `json:"experience,omitempty"`
	Hospital   string  `json:"hospital,omitempty"`
}

func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID: userID,
		Preferences: Preferences{
			PreferredSpecialties: []string{},
			PastConsultations:    []Consultation{},
			Ratings:              map[string]float64{},
			MedicalHistory:       []string{},
		},
	}
}

func (p *UserProfile) PrefersSpecialty(specialty string) bool {
	for _, s := range p.Preferences.PreferredSpecialties {
		if s == specialty {
			return true
		}
	}
	return false
}

// Similarity scores a doctor against the profile; the result lies in [0,1].
func (p *UserProfile) Similarity(f Features) float64 {
	var score float64
	attrs := p.Preferences.DoctorAttributes

	if p.PrefersSpecialty(f.Specialty) {
		score += specialtyWeight
	}
	if known(attrs.Gender) && attrs.Gender == f.Gender {
		score += genderWeight
	}
	if attrs.Location != "" && attrs.Location == f.Location {
		score += locationWeight
	}
	if f.DoctorID != "" && p.Preferences.Ratings[f.DoctorID] >= positiveRating {
		score += pastRatingBoost
	}

	if score > 1 {
		return 1
	}
	return score
}

// Apply records a rating. A positive rating adds the specialty to the preferred set once
// and replaces the stored gender and location preferences with the doctor's.
func (p *UserProfile) Apply(doctorID string, rating float64, specialty string, f Features, at time.Time) {
	if p.Preferences.Ratings == nil {
		p.Preferences.Ratings = map[string]float64{}
	}
	p.Preferences.Ratings[doctorID] = rating
	p.Preferences.PastConsultations = append(p.Preferences.PastConsultations, Consultation{
		DoctorID:  doctorID,
		Specialty: specialty,
		Rating:    rating,
		Timestamp: at,
	})

	if rating >= positiveRating {
		if specialty != "" && !p.PrefersSpecialty(specialty) {
			p.Preferences.PreferredSpecialties = append(p.Preferences.PreferredSpecialties, specialty)
		}
		if known(f.Gender) {
			p.Preferences.DoctorAttributes.Gender = f.Gender
		}
		if f.Location != "" {
			p.Preferences.DoctorAttributes.Location = f.Location
		}
	}
	p.UpdatedAt = at
}

// Reason explains which profile signals matched a doctor.
func (p *UserProfile) Reason(f Features) string {
	var reasons []string
	attrs := p.Preferences.DoctorAttributes

	if p.PrefersSpecialty(f.Specialty) {
		reasons = append(reasons, "You've had positive experiences with "+f.Specialty+" specialists")
	}
	if known(attrs.Gender) && attrs.Gender == f.Gender {
		reasons = append(reasons, "Matches your preferred doctor gender")
	}
	if attrs.Location != "" && attrs.Location == f.Location {
		reasons = append(reasons, "Located in your preferred area: "+f.Location)
	}
	if f.Rating >= highlyRatedCutoff {
		reasons = append(reasons, "Highly rated doctor ("+strconv.FormatFloat(f.Rating, 'f', -1, 64)+"/5.0)")
	}

	if len(reasons) == 0 {
		return "Recommended based on your profile"
	}
	return strings.Join(reasons, ", ")
}

// known reports whether a gender value is real rather than absent or the display placeholder.
func known(gender string) bool {
	return gender != "" && gender != defaultGender
}

func (p *UserProfile) clone() *UserProfile {
	c := *p
	c.Preferences.PreferredSpecialties = append([]string{}, p.Preferences.PreferredSpecialties...)
	c.Preferences.PastConsultations = append([]Consultation{}, p.Preferences.PastConsultations...)
	c.Preferences.MedicalHistory = append([]string{}, p.Preferences.MedicalHistory...)
	c.Preferences.Ratings = make(map[string]float64, len(p.Preferences.Ratings))
	for k, v := range p.Preferences.Ratings {
		c.Preferences.Ratings[k] = v
	}
	return &c
}
