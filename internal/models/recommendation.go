// internal/models/recommendation.go
package models

import "doctor-ranking/pkg/registry"

type Urgency string

const (
	UrgencyUrgent     Urgency = "urgent"
	UrgencySemiUrgent Urgency = "semi-urgent"
	UrgencyModerate   Urgency = "moderate"
	UrgencyRoutine    Urgency = "routine"
)

// ConfidenceFlags carries the warning state computed from the scored diagnoses.
type ConfidenceFlags struct {
	ShowWarning    bool   `json:"showWarning"`
	WarningMessage string `json:"warningMessage,omitempty"`
}

type Alternative struct {
	Specialist string                      `json:"specialist"`
	Reason     string                      `json:"reason"`
	Info       *registry.SpecialistProfile `json:"info,omitempty"`
}

// SpecialistRecommendation is one ranked, explained specialist suggestion.
type SpecialistRecommendation struct {
	Rank            int             `json:"rank"`
	Specialist      string          `json:"specialist"`
	Disease         string          `json:"disease,omitempty"`
	Probability     Score           `json:"probability,omitempty"`
	Confidence      Score           `json:"confidence,omitempty"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel,omitempty"`
	Urgency         Urgency         `json:"urgency"`

	Priority          int      `json:"priority"`
	Description       string   `json:"description"`
	WhenToConsult     string   `json:"whenToConsult"`
	Expertise         []string `json:"expertise"`
	ReferralPower     int      `json:"referralPower"`
	UrgencyIndicators []string `json:"urgencyIndicators,omitempty"`

	Reasoning    string        `json:"reasoning"`
	Timeline     string        `json:"timeline"`
	Alternatives []Alternative `json:"alternatives"`
	Questions    []string      `json:"questions"`
	Preparation  []string      `json:"preparation"`
}

// SpecialistGuidance is the full output of the specialist recommender.
type SpecialistGuidance struct {
	Recommendations []SpecialistRecommendation `json:"recommendations"`
	UrgencyLevel    Urgency                    `json:"urgencyLevel"`
	OverallAdvice   []string                   `json:"overallAdvice"`
}
