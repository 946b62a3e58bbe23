// internal/models/response.go
package models

type RankingRequest struct {
	Symptoms Symptoms `json:"symptoms"`
	UserID   string   `json:"userId,omitempty"`
	Location string   `json:"location,omitempty"`
}

type AnalysisMetadata struct {
	TotalSymptoms               int     `json:"totalSymptoms"`
	SymptomsWithSeverity        int     `json:"symptomsWithSeverity"`
	HighConfidenceDiagnoses     int     `json:"highConfidenceDiagnoses"`
	ModerateConfidenceDiagnoses int     `json:"moderateConfidenceDiagnoses"`
	UrgencyLevel                Urgency `json:"urgencyLevel"`
}

type ConfidenceSummary struct {
	Score            Score            `json:"score"`
	ShowWarning      bool             `json:"showWarning"`
	WarningMessage   string           `json:"warningMessage,omitempty"`
	AnalysisMetadata AnalysisMetadata `json:"analysisMetadata"`
}

// RankingResponse is the payload handed to the presentation layer.
type RankingResponse struct {
	RequestID                 string             `json:"requestId"`
	Diagnoses                 []Diagnosis        `json:"diagnoses"`
	RecommendedDoctors        []Doctor           `json:"recommendedDoctors"`
	SpecialistRecommendations SpecialistGuidance `json:"specialistRecommendations"`
	PredictedSpecialist       string             `json:"predicted_specialist"`
	SuggestedDiseases         []string           `json:"suggested_diseases"`
	ActiveSymptoms            []string           `json:"active_symptoms"`
	MLPrediction              string             `json:"ml_prediction"`
	OracleDiagnoses           []Diagnosis        `json:"oracle_diagnoses,omitempty"`
	RuleOverride              string             `json:"rule_override,omitempty"`
	DiseaseBasedSpecialists   []string           `json:"disease_based_specialists"`
	Confidence                ConfidenceSummary  `json:"confidence"`
	Fallback                  bool               `json:"fallback"`
}
