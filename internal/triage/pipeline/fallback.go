package pipeline

import (
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/specialist"
)

const fallbackWarning = "ML service unavailable - showing fallback recommendations"

// FallbackResponse is the deterministic answer served when no prediction is available.
func (p *Pipeline) FallbackResponse(requestID string) *models.RankingResponse {
	profile := p.specialists.Profile(specialist.FamilyMedicine)

	doctors := []models.Doctor{
		{
			Name:         "Dr. Sarah Johnson",
			Specialty:    "Family Medicine",
			Location:     "Medical Center",
			Rating:       4.8,
			TotalRatings: 150,
			TotalReviews: 45,
			Phone:        "(555) 123-4567",
			Address:      "123 Medical Plaza, Healthcare City",
			Source:       models.SourceFallback,
		},
		{
			Name:         "Dr. Michael Chen",
			Specialty:    "Internal Medicine",
			Location:     "General Hospital",
			Rating:       4.7,
			TotalRatings: 200,
			TotalReviews: 67,
			Phone:        "(555) 987-6543",
			Address:      "456 Health Street, Medical District",
			Source:       models.SourceFallback,
		},
	}
	for i := range doctors {
		doctors[i].DoctorID = DoctorID(doctors[i])
	}

	return &models.RankingResponse{
		RequestID: requestID,
		Diagnoses: []models.Diagnosis{{
			Disease:         "General Health Concern",
			Specialist:      specialist.FamilyMedicine,
			Probability:     0.70,
			Confidence:      0.60,
			ConfidenceLevel: models.ConfidenceModerate,
			Explanation:     "Based on your symptoms, we recommend starting with a Family Medicine specialist for comprehensive evaluation.",
		}},
		RecommendedDoctors: doctors,
		SpecialistRecommendations: models.SpecialistGuidance{
			Recommendations: []models.SpecialistRecommendation{{
				Rank:              1,
				Specialist:        specialist.FamilyMedicine,
				Disease:           "General Health Concern",
				Probability:       0.70,
				Confidence:        0.60,
				ConfidenceLevel:   models.ConfidenceModerate,
				Urgency:           models.UrgencyModerate,
				Priority:          profile.Priority,
				Description:       profile.Description,
				WhenToConsult:     profile.WhenToConsult,
				Expertise:         profile.Expertise,
				ReferralPower:     profile.ReferralPower,
				UrgencyIndicators: profile.UrgencyIndicators,
				Reasoning:         "Schedule an appointment with a Family Medicine specialist",
				Timeline:          "Schedule within 1-2 weeks",
				Alternatives:      []models.Alternative{},
				Questions:         []string{},
				Preparation:       []string{},
			}},
			UrgencyLevel:  models.UrgencyModerate,
			OverallAdvice: []string{"Schedule an appointment with a Family Medicine specialist"},
		},
		PredictedSpecialist:     specialist.FamilyMedicine,
		SuggestedDiseases:       []string{},
		ActiveSymptoms:          []string{},
		MLPrediction:            specialist.FamilyMedicine,
		DiseaseBasedSpecialists: []string{specialist.FamilyMedicine},
		Confidence: models.ConfidenceSummary{
			Score:          0.60,
			ShowWarning:    true,
			WarningMessage: fallbackWarning,
			AnalysisMetadata: models.AnalysisMetadata{
				TotalSymptoms:               1,
				ModerateConfidenceDiagnoses: 1,
				UrgencyLevel:                models.UrgencyModerate,
			},
		},
		Fallback: true,
	}
}
