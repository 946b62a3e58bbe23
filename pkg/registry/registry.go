// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var ErrInvalidKnowledgeBase = errors.New("KNOWLEDGE_BASE_INVALID")

// LoadRegistry reads a JSON knowledge base from path and overlays it on Default().
// Map entries in the file add to or replace the defaults; lists replace them. An empty
// path returns the defaults.
func LoadRegistry(path string) (*KnowledgeBase, error) {
	kb := Default()
	if path == "" {
		return kb, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, kb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledgeBase, err)
	}
	for name, p := range kb.Specialists {
		if p.Name == "" {
			p.Name = name
			kb.Specialists[name] = p
		}
	}
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	return kb, nil
}

// Save writes the knowledge base as indented JSON.
func (kb *KnowledgeBase) Save(path string) error {
	data, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every problem found, joined into one error.
func (kb *KnowledgeBase) Validate() error {
	var problems []string

	if kb.DefaultSymptomWeight < 0 || kb.DefaultSymptomWeight > 1 {
		problems = append(problems, fmt.Sprintf("defaultSymptomWeight %.2f outside [0,1]", kb.DefaultSymptomWeight))
	}
	for _, symptom := range sortedKeys(kb.SymptomWeights) {
		if w := kb.SymptomWeights[symptom]; w < 0 || w > 1 {
			problems = append(problems, fmt.Sprintf("symptom weight %s=%.2f outside [0,1]", symptom, w))
		}
	}
	for _, symptom := range sortedKeys(kb.SymptomUrgency) {
		if u := kb.SymptomUrgency[symptom]; u != UrgencyUrgent && u != UrgencySemiUrgent {
			problems = append(problems, fmt.Sprintf("symptom urgency %s has unknown class %q", symptom, u))
		}
	}
	for _, name := range sortedKeys(kb.Specialists) {
		p := kb.Specialists[name]
		if p.Priority < 1 || p.Priority > 5 {
			problems = append(problems, fmt.Sprintf("specialist %s priority %d outside 1-5", name, p.Priority))
		}
		if p.ReferralPower <= 0 {
			problems = append(problems, fmt.Sprintf("specialist %s has no referral power", name))
		}
		if p.Description == "" || p.WhenToConsult == "" {
			problems = append(problems, fmt.Sprintf("specialist %s missing description or whenToConsult", name))
		}
	}
	for _, key := range sortedKeys(kb.RuleDiseases) {
		rule := kb.RuleDiseases[key]
		if len(strings.Split(key, ",")) != 2 {
			problems = append(problems, fmt.Sprintf("rule key %q must name exactly two symptoms", key))
		}
		if rule.Disease == "" {
			problems = append(problems, fmt.Sprintf("rule %s has no disease", key))
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			problems = append(problems, fmt.Sprintf("rule %s confidence %.2f outside [0,1]", key, rule.Confidence))
		}
	}
	for _, name := range sortedKeys(kb.SpecialistAliases) {
		if kb.SpecialistAliases[name] == "" {
			problems = append(problems, fmt.Sprintf("alias %s maps to an empty taxonomy", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidKnowledgeBase, strings.Join(problems, "; "))
	}
	return nil
}

// SymptomWeight returns the specificity weight of a symptom, or the default weight.
func (kb *KnowledgeBase) SymptomWeight(symptom string) float64 {
	if w, ok := kb.SymptomWeights[symptom]; ok {
		return w
	}
	return kb.DefaultSymptomWeight
}

func (kb *KnowledgeBase) Specialist(name string) (SpecialistProfile, bool) {
	p, ok := kb.Specialists[name]
	return p, ok
}

// Alias maps a predicted specialist name onto the directory taxonomy. Unknown names pass
// through unchanged.
func (kb *KnowledgeBase) Alias(name string) string {
	if mapped, ok := kb.SpecialistAliases[name]; ok {
		return mapped
	}
	return name
}

// Rule looks up the rule disease for an unordered symptom pair.
func (kb *KnowledgeBase) Rule(a, b string) (RuleDisease, bool) {
	want := PairKey(a, b)
	if rule, ok := kb.RuleDiseases[want]; ok {
		return rule, true
	}
	for key, rule := range kb.RuleDiseases {
		parts := strings.Split(key, ",")
		if len(parts) == 2 && PairKey(parts[0], parts[1]) == want {
			return rule, true
		}
	}
	return RuleDisease{}, false
}

// PairKey is the canonical "a,b" key for two symptoms, sorted.
func PairKey(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if b < a {
		a, b = b, a
	}
	return a + "," + b
}

func (kb *KnowledgeBase) QuestionsFor(specialist string) []string {
	out := append([]string{}, kb.Guidance.BaseQuestions...)
	return append(out, kb.Guidance.SpecialistQuestions[specialist]...)
}

func (kb *KnowledgeBase) PreparationFor(specialist string) []string {
	out := append([]string{}, kb.Guidance.GeneralPreparation...)
	return append(out, kb.Guidance.SpecialistPreparation[specialist]...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
