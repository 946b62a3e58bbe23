// pkg/registry/schema.go
package registry

// Symptom urgency classes used in KnowledgeBase.SymptomUrgency.
const (
	UrgencyUrgent     = "urgent"
	UrgencySemiUrgent = "semi-urgent"
)

// KnowledgeBase holds every static lookup table the ranking core reads. It is loaded once
// and treated as read-only afterwards.
type KnowledgeBase struct {
	Version              string                       `json:"version"`
	LastUpdated          string                       `json:"lastUpdated"`
	DefaultSymptomWeight float64                      `json:"defaultSymptomWeight"`
	SymptomWeights       map[string]float64           `json:"symptomWeights"`
	SymptomUrgency       map[string]string            `json:"symptomUrgency"`
	Specialists          map[string]SpecialistProfile `json:"specialists"`
	SpecialistAliases    map[string]string            `json:"specialistAliases"`
	RuleDiseases         map[string]RuleDisease       `json:"ruleDiseases"`
	Guidance             Guidance                     `json:"guidance"`
}

type SpecialistProfile struct {
	Name              string   `json:"name"`
	Priority          int      `json:"priority"`
	Description       string   `json:"description"`
	WhenToConsult     string   `json:"whenToConsult"`
	Expertise         []string `json:"expertise"`
	ReferralPower     int      `json:"referralPower"`
	UrgencyIndicators []string `json:"urgencyIndicators,omitempty"`
}

// RuleDisease is the fixed diagnosis for a two-symptom pattern. Keys in
// KnowledgeBase.RuleDiseases are "a,b" pairs; order inside the key does not matter.
type RuleDisease struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

type Guidance struct {
	BaseQuestions         []string            `json:"baseQuestions"`
	SpecialistQuestions   map[string][]string `json:"specialistQuestions"`
	GeneralPreparation    []string            `json:"generalPreparation"`
	SpecialistPreparation map[string][]string `json:"specialistPreparation"`
}
