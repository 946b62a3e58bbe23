package confidence

import (
	"fmt"

	"doctor-ranking/internal/models"
)

// Action priorities, most pressing first.
const (
	PriorityUrgent    = "urgent"
	PriorityImportant = "important"
	PriorityOptional  = "optional"
	PriorityMonitor   = "monitor"
	PriorityGeneral   = "general"
)

func actions(d models.Diagnosis, level models.ConfidenceLevel) []models.ActionItem {
	var out []models.ActionItem

	switch level {
	case models.ConfidenceHigh:
		out = append(out,
			models.ActionItem{
				Priority: PriorityUrgent,
				Action:   fmt.Sprintf("Schedule an appointment with a %s within 1-2 weeks", d.Specialist),
				Reason:   "High symptom match indicates this specialist can provide the most appropriate care",
			},
			models.ActionItem{
				Priority: PriorityImportant,
				Action:   "Prepare a detailed symptom timeline and any relevant medical history",
				Reason:   "This will help the specialist make an accurate diagnosis",
			},
		)
	case models.ConfidenceModerate:
		out = append(out,
			models.ActionItem{
				Priority: PriorityImportant,
				Action:   fmt.Sprintf("Consider scheduling with a %s within 2-4 weeks", d.Specialist),
				Reason:   "Moderate confidence suggests this specialist is likely appropriate",
			},
			models.ActionItem{
				Priority: PriorityOptional,
				Action:   "You may also consult with a General Practitioner first",
				Reason:   "They can provide initial assessment and referral if needed",
			},
		)
	case models.ConfidenceLow:
		out = append(out,
			models.ActionItem{
				Priority: PriorityImportant,
				Action:   "Start with a General Practitioner consultation",
				Reason:   "Lower confidence suggests a broader evaluation is needed first",
			},
			models.ActionItem{
				Priority: PriorityOptional,
				Action:   fmt.Sprintf("Keep %s as a potential referral option", d.Specialist),
				Reason:   "May be relevant depending on GP assessment",
			},
		)
	default:
		out = append(out,
			models.ActionItem{
				Priority: PriorityImportant,
				Action:   "Consult with a General Practitioner for comprehensive evaluation",
				Reason:   "Very low confidence requires broad medical assessment",
			},
			models.ActionItem{
				Priority: PriorityMonitor,
				Action:   "Monitor symptoms and seek immediate care if they worsen",
				Reason:   "Symptom changes may provide additional diagnostic clues",
			},
		)
	}

	out = append(out, models.ActionItem{
		Priority: PriorityGeneral,
		Action:   "Keep a symptom diary noting onset, duration, and triggers",
		Reason:   "Detailed records help healthcare providers make better diagnoses",
	})

	if level == models.ConfidenceLow || level == models.ConfidenceVeryLow {
		out = append(out, models.ActionItem{
			Priority: PriorityImportant,
			Action:   "Consider seeking a second opinion if initial consultation is inconclusive",
			Reason:   "Multiple perspectives can be valuable for complex cases",
		})
	}
	return out
}
