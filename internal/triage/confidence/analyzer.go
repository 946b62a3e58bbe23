// Package confidence scores diagnoses by blending symptom specificity, prediction
// probability and specialist-mapping confidence.
package confidence

import (
	"fmt"
	"math"

	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/symptoms"
	"doctor-ranking/pkg/registry"
)

const (
	ThresholdHigh     = 0.8
	ThresholdModerate = 0.6
	ThresholdLow      = 0.4

	noSymptomConfidence         = 0.3
	defaultSpecialistConfidence = 0.7
	symptomBonusStep            = 0.05
	symptomBonusCap             = 0.2

	symptomShare    = 0.3
	predictionShare = 0.4
	specialistShare = 0.3
)

const (
	fewSymptomsWarning = "Consider providing more symptoms for a more accurate analysis. Additional symptoms help improve diagnostic confidence."
	lowSignalWarning   = "The symptoms provided don't strongly point to a specific condition. We recommend consulting with a General Practitioner for a comprehensive evaluation."
)

// Analyzer scores diagnoses against the symptom weights of a knowledge base.
type Analyzer struct {
	kb *registry.KnowledgeBase
}

// NewAnalyzer uses the built-in knowledge base when kb is nil.
func NewAnalyzer(kb *registry.KnowledgeBase) *Analyzer {
	if kb == nil {
		kb = registry.Default()
	}
	return &Analyzer{kb: kb}
}

// Analyze returns one enriched copy per input diagnosis, in input order.
func (a *Analyzer) Analyze(diagnoses []models.Diagnosis, all models.Symptoms) []models.Diagnosis {
	selected := symptoms.SelectedOnly(all)
	symptomConf := a.SymptomConfidence(selected)

	out := make([]models.Diagnosis, len(diagnoses))
	for i, d := range diagnoses {
		enriched := d
		combined := symptomShare*symptomConf +
			predictionShare*PredictionConfidence(d.Probability) +
			specialistShare*specialistConfidence(d.Confidence)
		combined = clamp(math.Round(combined*100) / 100)

		level := Level(combined)
		enriched.Probability = models.Score(d.Probability.Sanitized())
		enriched.Confidence = models.Score(combined)
		enriched.ConfidenceLevel = level
		enriched.Explanation = explanation(d, level, len(selected))
		enriched.Recommendations = actions(d, level)
		out[i] = enriched
	}
	return out
}

// SymptomConfidence is the severity-weighted mean specificity of the selected symptoms
// plus a bonus for symptom count, capped at 1.
func (a *Analyzer) SymptomConfidence(selected models.Symptoms) float64 {
	if len(selected) == 0 {
		return noSymptomConfidence
	}
	var sum float64
	for key, value := range selected {
		sum += a.kb.SymptomWeight(key) * value.SeverityMultiplier()
	}
	base := sum / float64(len(selected))
	bonus := math.Min(float64(len(selected))*symptomBonusStep, symptomBonusCap)
	return math.Min(base+bonus, 1.0)
}

// PredictionConfidence maps a probability onto a step function.
func PredictionConfidence(p models.Score) float64 {
	prob := p.Sanitized()
	switch {
	case prob >= 0.8:
		return 0.9
	case prob >= 0.6:
		return 0.75
	case prob >= 0.4:
		return 0.6
	case prob >= 0.2:
		return 0.45
	default:
		return 0.3
	}
}

// Level buckets a confidence score into HIGH, MODERATE, LOW or VERY_LOW.
func Level(c float64) models.ConfidenceLevel {
	switch {
	case c >= ThresholdHigh:
		return models.ConfidenceHigh
	case c >= ThresholdModerate:
		return models.ConfidenceModerate
	case c >= ThresholdLow:
		return models.ConfidenceLow
	default:
		return models.ConfidenceVeryLow
	}
}

// ShouldShowWarning is true when no diagnosis reaches MODERATE.
func ShouldShowWarning(diagnoses []models.Diagnosis) bool {
	for _, d := range diagnoses {
		switch Level(d.Confidence.Sanitized()) {
		case models.ConfidenceHigh, models.ConfidenceModerate:
			return false
		}
	}
	return true
}

// WarningMessage asks for more symptoms when fewer than two are selected.
func WarningMessage(all models.Symptoms) string {
	if len(symptoms.Selected(all)) < 2 {
		return fewSymptomsWarning
	}
	return lowSignalWarning
}

// Flags bundles ShouldShowWarning and WarningMessage.
func Flags(diagnoses []models.Diagnosis, all models.Symptoms) models.ConfidenceFlags {
	flags := models.ConfidenceFlags{ShowWarning: ShouldShowWarning(diagnoses)}
	if flags.ShowWarning {
		flags.WarningMessage = WarningMessage(all)
	}
	return flags
}

func specialistConfidence(c models.Score) float64 {
	f := float64(c)
	if math.IsNaN(f) || f <= 0 {
		return defaultSpecialistConfidence
	}
	return c.Sanitized()
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func explanation(d models.Diagnosis, level models.ConfidenceLevel, count int) string {
	plural := "s"
	if count == 1 {
		plural = ""
	}
	text := fmt.Sprintf("Based on your %d symptom%s, ", count, plural)

	switch level {
	case models.ConfidenceHigh:
		return text + fmt.Sprintf("there is a strong indication that %s could be the cause. "+
			"The symptoms you've described are highly characteristic of this condition. "+
			"We recommend consulting with a %s for proper diagnosis and treatment.", d.Disease, d.Specialist)
	case models.ConfidenceModerate:
		return text + fmt.Sprintf("%s is a possible diagnosis that should be considered. "+
			"Your symptoms align with this condition, though additional evaluation may be needed. "+
			"A %s can provide a more definitive assessment.", d.Disease, d.Specialist)
	case models.ConfidenceLow:
		return text + fmt.Sprintf("%s is one of several possible conditions that could explain your symptoms. "+
			"While there is some alignment, further investigation is recommended. "+
			"Consider starting with a consultation with a %s or General Practitioner.", d.Disease, d.Specialist)
	default:
		return text + fmt.Sprintf("%s is a potential consideration, but the symptom match is not strong. "+
			"We recommend consulting with a General Practitioner first for a comprehensive evaluation "+
			"before seeing a specialist.", d.Disease)
	}
}
