// internal/models/diagnosis.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceModerate ConfidenceLevel = "MODERATE"
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceVeryLow  ConfidenceLevel = "VERY_LOW"
)

// DefaultScore replaces probabilities and confidences that are not finite numbers.
const DefaultScore = 0.5

// Score is a probability or confidence value. It decodes from a JSON number or numeric
// string; anything else becomes NaN and is rendered as DefaultScore.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = Score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*s = Score(f)
			return nil
		}
	}
	*s = Score(math.NaN())
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sanitized())
}

// Sanitized returns the score clamped to [0,1], with NaN and infinities replaced by
// DefaultScore.
func (s Score) Sanitized() float64 {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultScore
	}
	return math.Max(0, math.Min(1, f))
}

// Percent formats the sanitized score as a percentage with one decimal.
func (s Score) Percent() string {
	return fmt.Sprintf("%.1f%%", s.Sanitized()*100)
}

type ActionItem struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

type Diagnosis struct {
	Disease                string          `json:"disease"`
	Specialist             string          `json:"specialist"`
	Probability            Score           `json:"probability"`
	Confidence             Score           `json:"confidence"`
	ConfidenceLevel        ConfidenceLevel `json:"confidenceLevel,omitempty"`
	Explanation            string          `json:"explanation,omitempty"`
	MatchingSymptoms       []string        `json:"matching_symptoms,omitempty"`
	AlternativeSpecialists []string        `json:"alternative_specialists,omitempty"`
	Recommendations        []ActionItem    `json:"recommendations,omitempty"`
}

// Prediction is the ML oracle's answer for one symptom set.
type Prediction struct {
	PredictedSpecialist     string      `json:"predicted_specialist"`
	Confidence              Score       `json:"confidence"`
	SuggestedDiseases       []string    `json:"suggested_diseases"`
	ActiveSymptoms          []string    `json:"active_symptoms"`
	MLPrediction            interface{} `json:"ml_prediction,omitempty"`
	DiseaseBasedSpecialists []string    `json:"disease_based_specialists,omitempty"`
	Diagnoses               []Diagnosis `json:"diagnoses"`
}
