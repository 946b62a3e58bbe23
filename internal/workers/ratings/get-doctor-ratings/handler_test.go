package getdoctorratings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/services/ratings"
	"doctor-ranking/internal/workers/workertest"
)

var ratingColumns = []string{"doctor_id", "user_name", "rating", "review", "updated_at"}

func newHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	store := ratings.NewStore(db, nil, time.Minute, log)
	return NewHandler(&Config{Timeout: 5 * time.Second}, store, log), mock
}

func TestHandler_Handle_ReturnsRatings(t *testing.T) {
	h, mock := newHandler(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("ORDER BY created_at").
		WithArgs("dr-1").
		WillReturnRows(sqlmock.NewRows(ratingColumns).
			AddRow("dr-1", "alice", 5, "excellent", now).
			AddRow("dr-1", "bob", 2, "", now))
	client := workertest.NewJobClient()

	h.Handle(client, workertest.Job(1, `{"doctorId": "dr-1", "userName": "alice"}`))

	var out Output
	require.NoError(t, client.CompletedVariables(&out))
	assert.Equal(t, "dr-1", out.DoctorID)
	assert.Len(t, out.Ratings, 2)
	assert.Len(t, out.Reviews, 1)
	assert.Equal(t, models.RatingStatistics{AverageRating: 3.5, TotalRatings: 2, TotalReviews: 1}, out.Statistics)
	require.NotNil(t, out.UserRating)
	assert.Equal(t, "excellent", out.UserRating.Review)
}

func TestHandler_Handle_DefaultsForUnratedDoctor(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("ORDER BY created_at").WillReturnRows(sqlmock.NewRows(ratingColumns))
	client := workertest.NewJobClient()

	h.Handle(client, workertest.Job(2, `{"doctorId": "dr-9"}`))

	var out map[string]interface{}
	require.NoError(t, client.CompletedVariables(&out))
	assert.Equal(t, map[string]interface{}{"averageRating": 5.0, "totalRatings": 0.0, "totalReviews": 0.0}, out["statistics"])
	assert.Nil(t, out["userRating"])
	assert.Equal(t, []interface{}{}, out["ratings"])
}

func TestHandler_Handle_MissingDoctorID(t *testing.T) {
	h, _ := newHandler(t)
	client := workertest.NewJobClient()

	h.Handle(client, workertest.Job(3, `{"doctorId": "  "}`))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "INVALID_REQUEST", client.Thrown()[0].ErrorCode)
}

func TestHandler_Execute_StoreError(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("ORDER BY created_at").WillReturnError(errors.New("timeout"))

	_, err := h.Execute(context.Background(), &Input{DoctorID: "dr-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATING_STORE_FAILED")
}
