package symptoms

import (
	"testing"

	"doctor-ranking/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chest Pain", "chest_pain"},
		{"  Shortness   of\tBreath ", "shortness_of_breath"},
		{"Blurred & Distorted Vision", "blurred__distorted_vision"},
		{"skin_rash", "skin_rash"},
		{"__fever__", "fever"},
		{"Héadache!", "hadache"},
		{"", ""},
		{"???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestNormalize_PreservesValues(t *testing.T) {
	raw := models.Symptoms{
		"Chest Pain": {Selected: true, Severity: models.SeveritySevere},
		"Fever":      {Selected: true},
	}

	got := Normalize(raw)

	assert.Len(t, got, 2)
	assert.Equal(t, models.SeveritySevere, got["chest_pain"].Severity)
	assert.True(t, got["fever"].Selected)
}

func TestNormalize_CollisionKeepsSelected(t *testing.T) {
	raw := models.Symptoms{
		"Fever":  {Selected: true},
		"fever!": {Selected: false},
	}

	got := Normalize(raw)

	assert.Len(t, got, 1)
	assert.True(t, got["fever"].Selected)
}

func TestNormalize_KeepsFollowUpAnswers(t *testing.T) {
	got := Normalize(models.Symptoms{FollowUpKey: {}, "Cough": {Selected: true}})

	assert.Contains(t, got, FollowUpKey)
	assert.Equal(t, 1, Count(got))
	assert.Equal(t, []string{"cough"}, Selected(got))
}

func TestSelectedAndCounts(t *testing.T) {
	s := models.Symptoms{
		"fever":       {Selected: true},
		"cough":       {Selected: false},
		"chest_pain":  {Selected: true, Severity: models.SeverityMild},
		FollowUpKey:   {},
		"nausea":      {Selected: true},
	}

	assert.Equal(t, []string{"chest_pain", "fever", "nausea"}, Selected(s))
	assert.Len(t, SelectedOnly(s), 3)
	assert.Equal(t, 4, Count(s))
	assert.Equal(t, 1, CountWithSeverity(s))
}
