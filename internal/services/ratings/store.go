// Package ratings persists doctor ratings in Postgres, one row per (doctor, user), and
// caches per-doctor statistics in Redis.
package ratings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRatingStore   = errors.New("RATING_STORE_FAILED")
	ErrInvalidRating = errors.New("INVALID_RATING")
)

const (
	AnonymousUser  = "Anonymous"
	StatsKeyPrefix = "triage:rating-stats:"

	MessageSubmitted = "Rating submitted successfully"
	MessageUpdated   = "Rating updated successfully"

	defaultAverage = 5
)

const (
	upsertRating = `
		INSERT INTO doctor_ratings (doctor_id, user_name, rating, review)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (doctor_id, user_name)
		DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review, updated_at = NOW()
		RETURNING (xmax::text <> '0') AS is_update`

	selectStatistics = `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0)::float8,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE review <> '')
		FROM doctor_ratings
		WHERE doctor_id = $1`

	selectDoctorRatings = `
		SELECT doctor_id, user_name, rating, review, updated_at
		FROM doctor_ratings
		WHERE doctor_id = $1
		ORDER BY created_at`

	selectUserRating = `
		SELECT doctor_id, user_name, rating, review, updated_at
		FROM doctor_ratings
		WHERE doctor_id = $1 AND user_name = $2`
)

// Rating is one user's rating of one doctor.
type Rating struct {
	DoctorID  string    `json:"doctorId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	Timestamp time.Time `json:"timestamp"`
}

type SubmitResult struct {
	Statistics models.RatingStatistics `json:"statistics"`
	IsUpdate   bool                    `json:"isUpdate"`
	Message    string                  `json:"message"`
}

// DoctorRatings is everything stored for one doctor.
type DoctorRatings struct {
	Ratings    []Rating                `json:"ratings"`
	Reviews    []Rating                `json:"reviews"`
	Statistics models.RatingStatistics `json:"statistics"`
	UserRating *Rating                 `json:"userRating"`
}

type Store struct {
	db       *sql.DB
	cache    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewStore builds a store. A nil cache disables statistics caching.
func NewStore(db *sql.DB, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "ratings"}),
	}
}

// Submit upserts the rating keyed by (doctorID, userName) and returns the doctor's new
// statistics.
func (s *Store) Submit(ctx context.Context, doctorID, userName string, rating int, review string) (*SubmitResult, error) {
	if doctorID == "" || rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: Valid doctorId and rating (1-5) are required", ErrInvalidRating)
	}
	if userName == "" {
		userName = AnonymousUser
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrRatingStore, err)
	}
	defer tx.Rollback()

	var isUpdate bool
	if err := tx.QueryRowContext(ctx, upsertRating, doctorID, userName, rating, review).Scan(&isUpdate); err != nil {
		return nil, fmt.Errorf("%w: upsert: %v", ErrRatingStore, err)
	}

	stats, err := scanStatistics(tx.QueryRowContext(ctx, selectStatistics, doctorID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrRatingStore, err)
	}

	s.cacheStatistics(ctx, doctorID, stats)

	message := MessageSubmitted
	if isUpdate {
		message = MessageUpdated
	}
	s.logger.Info("rating stored", map[string]interface{}{
		"doctorId": doctorID,
		"isUpdate": isUpdate,
		"average":  stats.AverageRating,
	})
	return &SubmitResult{Statistics: *stats, IsUpdate: isUpdate, Message: message}, nil
}

// Statistics returns the doctor's rating statistics, or nil when nobody rated them.
func (s *Store) Statistics(ctx context.Context, doctorID string) (*models.RatingStatistics, error) {
	if cached, ok := s.cachedStatistics(ctx, doctorID); ok {
		return cached, nil
	}

	stats, err := scanStatistics(s.db.QueryRowContext(ctx, selectStatistics, doctorID))
	if err != nil {
		return nil, err
	}
	if stats.TotalRatings == 0 {
		return nil, nil
	}
	s.cacheStatistics(ctx, doctorID, stats)
	return stats, nil
}

// UserRating returns the rating userName gave doctorID, or nil.
func (s *Store) UserRating(ctx context.Context, doctorID, userName string) (*Rating, error) {
	var r Rating
	err := s.db.QueryRowContext(ctx, selectUserRating, doctorID, userName).
		Scan(&r.DoctorID, &r.UserName, &r.Rating, &r.Review, &r.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: user rating: %v", ErrRatingStore, err)
	}
	return &r, nil
}

// DoctorRatings lists a doctor's ratings and reviews. A doctor without ratings gets the
// 5/0/0 default statistics. userName, when set, selects the caller's own rating.
func (s *Store) DoctorRatings(ctx context.Context, doctorID, userName string) (*DoctorRatings, error) {
	rows, err := s.db.QueryContext(ctx, selectDoctorRatings, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: list ratings: %v", ErrRatingStore, err)
	}
	defer rows.Close()

	out := &DoctorRatings{Ratings: []Rating{}, Reviews: []Rating{}}
	var sum int
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.DoctorID, &r.UserName, &r.Rating, &r.Review, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan rating: %v", ErrRatingStore, err)
		}
		out.Ratings = append(out.Ratings, r)
		if r.Review != "" {
			out.Reviews = append(out.Reviews, r)
		}
		if userName != "" && r.UserName == userName {
			mine := r
			out.UserRating = &mine
		}
		sum += r.Rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list ratings: %v", ErrRatingStore, err)
	}

	if len(out.Ratings) == 0 {
		out.Statistics = models.RatingStatistics{AverageRating: defaultAverage}
		return out, nil
	}
	out.Statistics = models.RatingStatistics{
		AverageRating: roundTenth(float64(sum) / float64(len(out.Ratings))),
		TotalRatings:  len(out.Ratings),
		TotalReviews:  len(out.Reviews),
	}
	return out, nil
}

func (s *Store) cachedStatistics(ctx context.Context, doctorID string) (*models.RatingStatistics, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, StatsKeyPrefix+doctorID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("rating cache read failed", map[string]interface{}{"doctorId": doctorID, "error": err.Error()})
		}
		return nil, false
	}
	var stats models.RatingStatistics
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (s *Store) cacheStatistics(ctx context.Context, doctorID string, stats *models.RatingStatistics) {
	if s.cache == nil {
		return
	}
	data, _ := json.Marshal(stats)
	if err := s.cache.Set(ctx, StatsKeyPrefix+doctorID, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("rating cache write failed", map[string]interface{}{"doctorId": doctorID, "error": err.Error()})
	}
}

func scanStatistics(row *sql.Row) (*models.RatingStatistics, error) {
	var stats models.RatingStatistics
	if err := row.Scan(&stats.AverageRating, &stats.TotalRatings, &stats.TotalReviews); err != nil {
		return nil, fmt.Errorf("%w: statistics: %v", ErrRatingStore, err)
	}
	return &stats, nil
}

func roundTenth(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}
