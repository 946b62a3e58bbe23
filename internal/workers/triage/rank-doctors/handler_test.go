package rankdoctors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/pipeline"
	"doctor-ranking/internal/workers/workertest"
)

type fakeRanker struct {
	resp *models.RankingResponse
	got  []models.RankingRequest
}

func (f *fakeRanker) Rank(_ context.Context, req models.RankingRequest) *models.RankingResponse {
	f.got = append(f.got, req)
	return f.resp
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func urgentResponse() *models.RankingResponse {
	return &models.RankingResponse{
		RequestID:           "req-1",
		PredictedSpecialist: "Cardiology",
		Diagnoses:           []models.Diagnosis{{Disease: "Heart Disease", Probability: 0.85}},
		SpecialistRecommendations: models.SpecialistGuidance{
			UrgencyLevel: models.UrgencyUrgent,
		},
	}
}

func TestHandler_Handle_CompletesWithResponse(t *testing.T) {
	ranker := &fakeRanker{resp: urgentResponse()}
	h := NewHandler(createTestConfig(), ranker, createTestLogger(t))
	client := workertest.NewJobClient()

	h.Handle(client, workertest.Job(1, `{"symptoms": {"chest_pain": {"severity": "severe"}, "fever": true}, "userId": "u1", "location": "Austin, TX"}`))

	require.Len(t, ranker.got, 1)
	assert.Equal(t, "u1", ranker.got[0].UserID)
	assert.Equal(t, "Austin, TX", ranker.got[0].Location)
	assert.Equal(t, models.SeveritySevere, ranker.got[0].Symptoms["chest_pain"].Severity)

	var vars map[string]interface{}
	require.NoError(t, client.CompletedVariables(&vars))
	assert.Equal(t, "req-1", vars["requestId"])
	assert.Equal(t, true, vars["alertRequired"])
	assert.Empty(t, client.Thrown())
}

func TestHandler_Handle_InvalidSymptoms(t *testing.T) {
	tests := []struct {
		name      string
		variables string
	}{
		{"missing symptoms", `{"userId": "u1"}`},
		{"symptoms is a list", `{"symptoms": ["fever"]}`},
		{"symptoms is null", `{"symptoms": null}`},
		{"not json", `{"symptoms":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranker := &fakeRanker{resp: urgentResponse()}
			h := NewHandler(createTestConfig(), ranker, createTestLogger(t))
			client := workertest.NewJobClient()

			h.Handle(client, workertest.Job(2, tt.variables))

			assert.Empty(t, ranker.got)
			assert.Empty(t, client.Completed())
			require.Len(t, client.Thrown(), 1)
			assert.Equal(t, "INVALID_SYMPTOMS", client.Thrown()[0].ErrorCode)
		})
	}
}

func TestHandler_Handle_FallbackNeverAlerts(t *testing.T) {
	// A pipeline without an oracle always answers with the fallback payload.
	p := pipeline.New(pipeline.Config{AlertOnUrgent: true}, pipeline.Deps{}, logger.NewNoOpLogger())
	h := NewHandler(createTestConfig(), p, createTestLogger(t))
	client := workertest.NewJobClient()

	h.Handle(client, workertest.Job(3, `{"symptoms": {"fever": true}}`))

	var out struct {
		Fallback           bool            `json:"fallback"`
		AlertRequired      bool            `json:"alertRequired"`
		RecommendedDoctors []models.Doctor `json:"recommendedDoctors"`
	}
	require.NoError(t, client.CompletedVariables(&out))
	assert.True(t, out.Fallback)
	assert.False(t, out.AlertRequired)
	assert.Len(t, out.RecommendedDoctors, 2)
}

func TestHandler_Execute(t *testing.T) {
	resp := urgentResponse()
	resp.SpecialistRecommendations.UrgencyLevel = models.UrgencyRoutine
	h := NewHandler(createTestConfig(), &fakeRanker{resp: resp}, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{Symptoms: models.Symptoms{}})
	require.NoError(t, err)
	assert.False(t, out.AlertRequired)

	_, err = h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}
