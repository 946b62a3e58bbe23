package pipeline

import (
	"fmt"
	"math"

	"doctor-ranking/internal/models"
	"doctor-ranking/pkg/registry"
)

const (
	defaultBaseConfidence = 0.6
	suggestionDecay       = 0.1
	suggestionFloor       = 0.3
)

// SynthesizeDiagnoses picks the diagnoses the rest of the pipeline scores. A rule match on
// the first two active symptoms replaces the oracle's list outright and its disease is
// returned. Otherwise the oracle's diagnoses are used; when it sent none they are built
// from the suggested diseases, or as a single generic consultation.
func SynthesizeDiagnoses(kb *registry.KnowledgeBase, primary string, prediction *models.Prediction, active []string) ([]models.Diagnosis, string) {
	if len(active) >= 2 {
		if rule, ok := kb.Rule(active[0], active[1]); ok {
			return []models.Diagnosis{{
				Disease:     rule.Disease,
				Specialist:  primary,
				Probability: models.Score(rule.Confidence),
				Confidence:  models.Score(rule.Confidence),
				Explanation: fmt.Sprintf("Based on symptom analysis, %s is likely (%.0f%% confidence). Recommended specialist: %s",
					rule.Disease, rule.Confidence*100, primary),
				MatchingSymptoms: nonNil(active),
			}}, rule.Disease
		}
	}

	if len(prediction.Diagnoses) > 0 {
		out := make([]models.Diagnosis, len(prediction.Diagnoses))
		copy(out, prediction.Diagnoses)
		for i := range out {
			if out[i].Specialist == "" {
				out[i].Specialist = primary
			}
		}
		return out, ""
	}

	if len(prediction.SuggestedDiseases) > 0 {
		base, ok := present(prediction.Confidence)
		if !ok {
			base = defaultBaseConfidence
		}
		out := make([]models.Diagnosis, len(prediction.SuggestedDiseases))
		for i, disease := range prediction.SuggestedDiseases {
			c := math.Max(base*(1-float64(i)*suggestionDecay), suggestionFloor)
			out[i] = models.Diagnosis{
				Disease:          disease,
				Specialist:       primary,
				Probability:      models.Score(c),
				Confidence:       models.Score(c),
				Explanation:      fmt.Sprintf("Based on your symptoms, %s is a possible condition. Recommended specialist: %s", disease, primary),
				MatchingSymptoms: nonNil(active),
			}
		}
		return out, ""
	}

	return []models.Diagnosis{{
		Disease:     fmt.Sprintf("Condition requiring %s consultation", primary),
		Specialist:  primary,
		Probability: prediction.Confidence,
		Confidence:  prediction.Confidence,
	}}, ""
}

// SpecialistsToSearch lists the distinct specialists of diagnoses above threshold in
// diagnosis order, or just primary when none qualifies.
func SpecialistsToSearch(diagnoses []models.Diagnosis, threshold float64, primary string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range diagnoses {
		if d.Confidence.Sanitized() > threshold && !seen[d.Specialist] {
			seen[d.Specialist] = true
			out = append(out, d.Specialist)
		}
	}
	if len(out) == 0 {
		return []string{primary}
	}
	return out
}

// present reports a usable, non-zero score.
func present(s models.Score) (float64, bool) {
	f := float64(s)
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return s.Sanitized(), true
}
