package personalization

import (
	"context"
	"sort"
	"strings"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"
)

const (
	DefaultLimit = 5

	similarityShare = 0.7
	ratingShare     = 0.3

	defaultGender   = "Unknown"
	defaultHospital = "Private Practice"
)

// Recommender ranks doctors by content similarity to a user's stored preferences.
type Recommender struct {
	store  ProfileStore
	logger logger.Logger
	now    func() time.Time
}

func NewRecommender(store ProfileStore, log logger.Logger) *Recommender {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Recommender{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "personalization"}),
		now:    time.Now,
	}
}

// RecommendDoctors keeps doctors whose specialty contains specialty (case-insensitive),
// scores them as 0.7*similarity + 0.3*rating/5 and returns the best limit of them. A
// profile that cannot be loaded is treated as empty.
func (r *Recommender) RecommendDoctors(ctx context.Context, userID string, doctors []models.Doctor, specialty string, limit int) []models.Doctor {
	if limit <= 0 {
		limit = DefaultLimit
	}

	profile, err := r.store.Get(ctx, userID)
	if err != nil {
		r.logger.Warn("profile unavailable, ranking without personalization", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		profile = NewUserProfile(userID)
	}

	want := strings.ToLower(specialty)
	scored := make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if !strings.Contains(strings.ToLower(d.Specialty), want) {
			continue
		}
		features := ExtractFeatures(d)
		similarity := profile.Similarity(features)
		content := similarityShare*similarity + ratingShare*(features.Rating/5)

		d.SimilarityScore = &similarity
		d.ContentScore = &content
		d.RecommendationReason = profile.Reason(features)
		scored = append(scored, d)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].ContentScore > *scored[j].ContentScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// UpdatePreferences applies one rating to the user's profile.
func (r *Recommender) UpdatePreferences(ctx context.Context, userID, doctorID string, rating float64, specialty string, features Features) (*UserProfile, error) {
	profile, err := r.store.Update(ctx, userID, func(p *UserProfile) error {
		p.Apply(doctorID, rating, specialty, features, r.now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("user preferences updated", map[string]interface{}{
		"userId":               userID,
		"doctorId":             doctorID,
		"rating":               rating,
		"preferredSpecialties": len(profile.Preferences.PreferredSpecialties),
	})
	return profile, nil
}

func (r *Recommender) Preferences(ctx context.Context, userID string) (*UserProfile, error) {
	return r.store.Get(ctx, userID)
}

// ExtractFeatures reads the similarity features off a doctor record, filling the display
// defaults for a missing gender or hospital.
func ExtractFeatures(d models.Doctor) Features {
	f := FeaturesFromDoctor(d)
	if f.Gender == "" {
		f.Gender = defaultGender
	}
	if f.Hospital == "" {
		f.Hospital = defaultHospital
	}
	return f
}

// FeaturesFromDoctor reads the features a rating teaches the profile. Missing fields stay
// empty so they never overwrite a learned preference.
func FeaturesFromDoctor(d models.Doctor) Features {
	id := d.DoctorID
	if id == "" {
		id = d.ID
	}
	return Features{
		DoctorID:   id,
		Specialty:  d.Specialty,
		Gender:     d.Gender,
		Location:   d.Location,
		Rating:     d.Rating,
		Experience: ExperienceCategory(d.Credentials),
		Hospital:   d.Hospital,
	}
}

// ExperienceCategory is "high" for fellowship credentials and "medium" otherwise.
func ExperienceCategory(credential string) string {
	switch {
	case credential == "":
		return "medium"
	case strings.Contains(credential, "FWACS"), strings.Contains(credential, "FMCS"):
		return "high"
	case strings.Contains(credential, "MBBS") && strings.Contains(credential, "F"):
		return "high"
	default:
		return "medium"
	}
}
