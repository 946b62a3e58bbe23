// internal/models/symptom.go
package models

import (
	"bytes"
	"encoding/json"
)

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Symptoms maps a symptom key to its value as submitted by the patient.
type Symptoms map[string]SymptomValue

// SymptomValue is either a plain boolean or an object carrying a severity. Values of any
// other JSON shape decode as not selected.
type SymptomValue struct {
	Selected bool     `json:"selected"`
	Severity Severity `json:"severity,omitempty"`
}

func (v *SymptomValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = SymptomValue{}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.Selected = b
		return nil
	}

	var obj struct {
		Selected *bool    `json:"selected"`
		Severity Severity `json:"severity"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	v.Severity = obj.Severity
	switch {
	case obj.Selected != nil:
		v.Selected = *obj.Selected
	default:
		v.Selected = obj.Severity != ""
	}
	return nil
}

func (v SymptomValue) MarshalJSON() ([]byte, error) {
	if v.Severity == "" {
		return json.Marshal(v.Selected)
	}
	type plain SymptomValue
	return json.Marshal(plain(v))
}

// SeverityMultiplier scales a symptom's specificity weight.
func (v SymptomValue) SeverityMultiplier() float64 {
	switch v.Severity {
	case SeveritySevere:
		return 1.2
	case SeverityMild:
		return 0.8
	default:
		return 1.0
	}
}
