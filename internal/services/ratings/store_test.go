package ratings

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, withCache bool) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var (
		cache *redis.Client
		mr    *miniredis.Miniredis
	)
	if withCache {
		mr = miniredis.RunT(t)
		cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { cache.Close() })
	}
	return NewStore(db, cache, time.Minute, logger.NewTestLogger(t)), mock, mr
}

func statsRows(avg float64, total, reviews int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"avg", "count", "reviews"}).AddRow(avg, total, reviews)
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name        string
		isUpdate    bool
		wantMessage string
	}{
		{"new rating", false, MessageSubmitted},
		{"existing rating", true, MessageUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock, mr := newMockStore(t, true)

			mock.ExpectBegin()
			mock.ExpectQuery("INSERT INTO doctor_ratings").
				WithArgs("dr-1", "alice", 4, "kind").
				WillReturnRows(sqlmock.NewRows([]string{"is_update"}).AddRow(tt.isUpdate))
			mock.ExpectQuery("FROM doctor_ratings").
				WithArgs("dr-1").
				WillReturnRows(statsRows(4.5, 2, 1))
			mock.ExpectCommit()

			res, err := store.Submit(context.Background(), "dr-1", "alice", 4, "kind")
			require.NoError(t, err)
			assert.Equal(t, tt.isUpdate, res.IsUpdate)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, models.RatingStatistics{AverageRating: 4.5, TotalRatings: 2, TotalReviews: 1}, res.Statistics)
			assert.True(t, mr.Exists(StatsKeyPrefix+"dr-1"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmit_DefaultsAnonymousUser(t *testing.T) {
	store, mock, _ := newMockStore(t, false)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO doctor_ratings").
		WithArgs("dr-1", AnonymousUser, 5, "").
		WillReturnRows(sqlmock.NewRows([]string{"is_update"}).AddRow(false))
	mock.ExpectQuery("FROM doctor_ratings").
		WithArgs("dr-1").
		WillReturnRows(statsRows(5, 1, 0))
	mock.ExpectCommit()

	_, err := store.Submit(context.Background(), "dr-1", "", 5, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_InvalidInput(t *testing.T) {
	store, mock, _ := newMockStore(t, false)

	for _, rating := range []int{0, 6, -1} {
		_, err := store.Submit(context.Background(), "dr-1", "alice", rating, "")
		assert.True(t, errors.Is(err, ErrInvalidRating))
	}
	_, err := store.Submit(context.Background(), "", "alice", 3, "")
	assert.True(t, errors.Is(err, ErrInvalidRating))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_UpsertFailureRollsBack(t *testing.T) {
	store, mock, _ := newMockStore(t, false)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO doctor_ratings").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.Submit(context.Background(), "dr-1", "alice", 3, "")
	assert.True(t, errors.Is(err, ErrRatingStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatistics(t *testing.T) {
	store, mock, mr := newMockStore(t, true)
	ctx := context.Background()

	mock.ExpectQuery("FROM doctor_ratings").
		WithArgs("dr-1").
		WillReturnRows(statsRows(3.7, 3, 2))

	stats, err := store.Statistics(ctx, "dr-1")
	require.NoError(t, err)
	assert.Equal(t, 3.7, stats.AverageRating)
	assert.True(t, mr.Exists(StatsKeyPrefix+"dr-1"))

	// Served from cache; no further query expected.
	cached, err := store.Statistics(ctx, "dr-1")
	require.NoError(t, err)
	assert.Equal(t, stats, cached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatistics_NoRatings(t *testing.T) {
	store, mock, mr := newMockStore(t, true)

	mock.ExpectQuery("FROM doctor_ratings").
		WithArgs("dr-2").
		WillReturnRows(statsRows(0, 0, 0))

	stats, err := store.Statistics(context.Background(), "dr-2")
	require.NoError(t, err)
	assert.Nil(t, stats)
	assert.False(t, mr.Exists(StatsKeyPrefix+"dr-2"))
}

func TestStatistics_QueryError(t *testing.T) {
	store, mock, _ := newMockStore(t, false)
	mock.ExpectQuery("FROM doctor_ratings").WillReturnError(sql.ErrConnDone)

	_, err := store.Statistics(context.Background(), "dr-1")
	assert.True(t, errors.Is(err, ErrRatingStore))
}

func TestUserRating(t *testing.T) {
	store, mock, _ := newMockStore(t, false)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("AND user_name").
		WithArgs("dr-1", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "user_name", "rating", "review", "updated_at"}).
			AddRow("dr-1", "alice", 4, "good", now))
	mock.ExpectQuery("AND user_name").
		WithArgs("dr-1", "bob").
		WillReturnError(sql.ErrNoRows)

	got, err := store.UserRating(context.Background(), "dr-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, &Rating{DoctorID: "dr-1", UserName: "alice", Rating: 4, Review: "good", Timestamp: now}, got)

	got, err = store.UserRating(context.Background(), "dr-1", "bob")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDoctorRatings(t *testing.T) {
	store, mock, _ := newMockStore(t, false)
	now := time.Now().UTC()

	mock.ExpectQuery("ORDER BY created_at").
		WithArgs("dr-1").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "user_name", "rating", "review", "updated_at"}).
			AddRow("dr-1", "alice", 5, "great", now).
			AddRow("dr-1", "bob", 4, "", now).
			AddRow("dr-1", "carol", 4, "fine", now))

	got, err := store.DoctorRatings(context.Background(), "dr-1", "bob")
	require.NoError(t, err)
	assert.Len(t, got.Ratings, 3)
	assert.Len(t, got.Reviews, 2)
	assert.Equal(t, models.RatingStatistics{AverageRating: 4.3, TotalRatings: 3, TotalReviews: 2}, got.Statistics)
	require.NotNil(t, got.UserRating)
	assert.Equal(t, 4, got.UserRating.Rating)
}

func TestDoctorRatings_Empty(t *testing.T) {
	store, mock, _ := newMockStore(t, false)
	mock.ExpectQuery("ORDER BY created_at").
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "user_name", "rating", "review", "updated_at"}))

	got, err := store.DoctorRatings(context.Background(), "dr-9", "")
	require.NoError(t, err)
	assert.Empty(t, got.Ratings)
	assert.Nil(t, got.UserRating)
	assert.Equal(t, models.RatingStatistics{AverageRating: 5}, got.Statistics)
}
