package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymptoms_Unmarshal(t *testing.T) {
	raw := `{
		"fever": true,
		"cough": false,
		"chest_pain": {"severity": "severe"},
		"nausea": {"selected": false, "severity": "mild"},
		"followUpAnswers": {"duration": "3 days"},
		"weird": 3
	}`

	var s Symptoms
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.True(t, s["fever"].Selected)
	assert.False(t, s["cough"].Selected)
	assert.True(t, s["chest_pain"].Selected)
	assert.Equal(t, SeveritySevere, s["chest_pain"].Severity)
	assert.False(t, s["nausea"].Selected)
	assert.False(t, s["followUpAnswers"].Selected)
	assert.False(t, s["weird"].Selected)
}

func TestSymptomValue_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Symptoms{
		"fever":      {Selected: true},
		"chest_pain": {Selected: true, Severity: SeverityMild},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fever": true, "chest_pain": {"selected": true, "severity": "mild"}}`, string(data))
}

func TestSeverityMultiplier(t *testing.T) {
	assert.Equal(t, 1.2, SymptomValue{Severity: SeveritySevere}.SeverityMultiplier())
	assert.Equal(t, 1.0, SymptomValue{Severity: SeverityModerate}.SeverityMultiplier())
	assert.Equal(t, 0.8, SymptomValue{Severity: SeverityMild}.SeverityMultiplier())
	assert.Equal(t, 1.0, SymptomValue{Selected: true}.SeverityMultiplier())
}

func TestScore_Decode(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`0.42`, 0.42},
		{`"0.7"`, 0.7},
		{`"not-a-number"`, DefaultScore},
		{`1.8`, 1},
		{`-3`, 0},
		{`{}`, DefaultScore},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s Score
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.InDelta(t, tt.want, s.Sanitized(), 1e-9)
		})
	}
}

func TestScore_PercentNeverNaN(t *testing.T) {
	assert.Equal(t, "50.0%", Score(math.NaN()).Percent())
	assert.Equal(t, "50.0%", Score(math.Inf(1)).Percent())
	assert.Equal(t, "80.0%", Score(0.8).Percent())

	data, err := json.Marshal(Diagnosis{Disease: "X", Probability: Score(math.NaN())})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"probability":0.5`)
}
