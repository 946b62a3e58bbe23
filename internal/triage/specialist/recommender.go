// Package specialist turns scored diagnoses into ranked, explained specialist guidance.
package specialist

import (
	"fmt"
	"strings"

	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/symptoms"
	"doctor-ranking/pkg/registry"
)

const (
	MaxRecommendations = 5

	EmergencyMedicine   = "Emergency Medicine"
	GeneralPractitioner = "General Practitioner"
	FamilyMedicine      = "Family Medicine"

	emergencyRank = 0
	gpRank        = 99
)

var timelines = map[models.Urgency]string{
	models.UrgencyUrgent:     "Seek immediate care (within hours)",
	models.UrgencySemiUrgent: "Schedule within 1-3 days",
	models.UrgencyModerate:   "Schedule within 1-2 weeks",
	models.UrgencyRoutine:    "Schedule within 2-4 weeks",
}

const highConfidenceRoutineTimeline = "Schedule within 1-2 weeks (high confidence in diagnosis)"

type Recommender struct {
	kb *registry.KnowledgeBase
}

func NewRecommender(kb *registry.KnowledgeBase) *Recommender {
	if kb == nil {
		kb = registry.Default()
	}
	return &Recommender{kb: kb}
}

// Recommend builds at most MaxRecommendations entries, one per diagnosis in input order,
// with an Emergency Medicine entry first when urgency is urgent and a General Practitioner
// entry appended when the warning flag is set.
func (r *Recommender) Recommend(diagnoses []models.Diagnosis, all models.Symptoms, flags models.ConfidenceFlags) models.SpecialistGuidance {
	keys := symptoms.Selected(all)
	urgency := r.assess(keys)

	recs := make([]models.SpecialistRecommendation, 0, len(diagnoses)+2)
	if urgency == models.UrgencyUrgent {
		recs = append(recs, r.emergency())
	}
	for i, d := range diagnoses {
		recs = append(recs, r.forDiagnosis(i+1, d, keys, urgency))
	}
	if flags.ShowWarning {
		recs = append(recs, r.generalPractitioner())
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}

	return models.SpecialistGuidance{
		Recommendations: recs,
		UrgencyLevel:    urgency,
		OverallAdvice:   overallAdvice(urgency, flags),
	}
}

// AssessUrgency classifies the selected symptoms: any urgent symptom is urgent, two or more
// semi-urgent ones semi-urgent, a single one moderate, otherwise routine.
func (r *Recommender) AssessUrgency(all models.Symptoms) models.Urgency {
	return r.assess(symptoms.Selected(all))
}

func (r *Recommender) assess(keys []string) models.Urgency {
	semi := 0
	for _, key := range keys {
		switch r.kb.SymptomUrgency[key] {
		case registry.UrgencyUrgent:
			return models.UrgencyUrgent
		case registry.UrgencySemiUrgent:
			semi++
		}
	}
	switch {
	case semi > 1:
		return models.UrgencySemiUrgent
	case semi == 1:
		return models.UrgencyModerate
	default:
		return models.UrgencyRoutine
	}
}

// Profile returns the known profile for name or a generated generic one.
func (r *Recommender) Profile(name string) registry.SpecialistProfile {
	if p, ok := r.kb.Specialist(name); ok {
		return p
	}
	return registry.SpecialistProfile{
		Name:          name,
		Priority:      3,
		Description:   fmt.Sprintf("Specialist in %s", name),
		WhenToConsult: fmt.Sprintf("Conditions related to %s", name),
		Expertise:     []string{fmt.Sprintf("%s conditions", name)},
		ReferralPower: 6,
	}
}

// MapSpecialist maps a predicted specialist name onto the directory taxonomy.
func (r *Recommender) MapSpecialist(name string) string {
	return r.kb.Alias(name)
}

func (r *Recommender) specialistUrgency(name string, keys []string) models.Urgency {
	p, ok := r.kb.Specialist(name)
	if !ok {
		return models.UrgencyRoutine
	}
	for _, indicator := range p.UrgencyIndicators {
		for _, key := range keys {
			if strings.Contains(key, indicator) {
				return models.UrgencyUrgent
			}
		}
	}
	return models.UrgencyRoutine
}

func (r *Recommender) forDiagnosis(rank int, d models.Diagnosis, keys []string, overall models.Urgency) models.SpecialistRecommendation {
	profile := r.Profile(d.Specialist)

	rec := fromProfile(profile)
	rec.Rank = rank
	rec.Specialist = d.Specialist
	rec.Disease = d.Disease
	rec.Probability = models.Score(d.Probability.Sanitized())
	rec.Confidence = models.Score(d.Confidence.Sanitized())
	rec.ConfidenceLevel = d.ConfidenceLevel
	rec.Urgency = r.specialistUrgency(d.Specialist, keys)
	rec.Reasoning = reasoning(d, profile, len(keys))
	rec.Timeline = timeline(d.ConfidenceLevel, overall)
	rec.Alternatives = r.alternatives(d)
	rec.Questions = r.kb.QuestionsFor(d.Specialist)
	rec.Preparation = r.kb.PreparationFor(d.Specialist)
	return rec
}

func (r *Recommender) alternatives(d models.Diagnosis) []models.Alternative {
	out := make([]models.Alternative, 0, len(d.AlternativeSpecialists))
	for _, alt := range d.AlternativeSpecialists {
		info := r.Profile(alt)
		out = append(out, models.Alternative{
			Specialist: alt,
			Reason:     fmt.Sprintf("Alternative option if %s is not available", d.Specialist),
			Info:       &info,
		})
	}
	return out
}

func (r *Recommender) emergency() models.SpecialistRecommendation {
	rec := fromProfile(r.Profile(EmergencyMedicine))
	rec.Rank = emergencyRank
	rec.Specialist = EmergencyMedicine
	rec.Urgency = models.UrgencyUrgent
	rec.Reasoning = "Your symptoms indicate a potentially serious condition that requires immediate medical attention."
	rec.Timeline = "Seek emergency care immediately"
	rec.Alternatives = []models.Alternative{}
	rec.Questions = []string{"What caused this emergency?", "What immediate treatment is needed?"}
	rec.Preparation = []string{"Bring identification and insurance cards", "List current medications", "Have emergency contact ready"}
	return rec
}

func (r *Recommender) generalPractitioner() models.SpecialistRecommendation {
	rec := fromProfile(r.Profile(GeneralPractitioner))
	rec.Rank = gpRank
	rec.Specialist = GeneralPractitioner
	rec.Urgency = models.UrgencyRoutine
	rec.Reasoning = "Given the uncertainty in diagnosis, a General Practitioner can provide comprehensive evaluation and appropriate referrals."
	rec.Timeline = "Schedule within 1-2 weeks"
	rec.Alternatives = []models.Alternative{{Specialist: FamilyMedicine, Reason: "Similar comprehensive care approach"}}
	rec.Questions = []string{"What other tests might be helpful?", "Should I see a specialist?", "What should I monitor?"}
	rec.Preparation = []string{"Complete medical history", "List all symptoms with timeline", "Bring previous medical records"}
	return rec
}

func fromProfile(p registry.SpecialistProfile) models.SpecialistRecommendation {
	return models.SpecialistRecommendation{
		Priority:          p.Priority,
		Description:       p.Description,
		WhenToConsult:     p.WhenToConsult,
		Expertise:         p.Expertise,
		ReferralPower:     p.ReferralPower,
		UrgencyIndicators: p.UrgencyIndicators,
	}
}

func reasoning(d models.Diagnosis, p registry.SpecialistProfile, symptomCount int) string {
	strength := "limited"
	switch d.ConfidenceLevel {
	case models.ConfidenceHigh:
		strength = "strong"
	case models.ConfidenceModerate:
		strength = "moderate"
	}
	return fmt.Sprintf("Based on %s evidence from your %d symptoms, %s shows a %s match. %s specialists are best equipped to %s.",
		strength, symptomCount, d.Disease, d.Probability.Percent(), p.Description, strings.ToLower(p.WhenToConsult))
}

func timeline(level models.ConfidenceLevel, overall models.Urgency) string {
	if level == models.ConfidenceHigh && overall == models.UrgencyRoutine {
		return highConfidenceRoutineTimeline
	}
	if t, ok := timelines[overall]; ok {
		return t
	}
	return timelines[models.UrgencyRoutine]
}

func overallAdvice(urgency models.Urgency, flags models.ConfidenceFlags) []string {
	var advice []string
	switch urgency {
	case models.UrgencyUrgent:
		advice = append(advice, "Your symptoms suggest an urgent medical condition. Seek immediate medical attention.")
	case models.UrgencySemiUrgent:
		advice = append(advice, "Your symptoms warrant prompt medical evaluation within the next few days.")
	}
	if flags.ShowWarning {
		advice = append(advice, "Consider providing more symptom details for better recommendations.")
	}
	return append(advice,
		"Always consult with healthcare professionals for proper diagnosis and treatment.",
		"If symptoms worsen or new symptoms appear, seek medical attention promptly.",
	)
}
