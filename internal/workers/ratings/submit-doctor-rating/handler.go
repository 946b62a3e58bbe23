package submitdoctorrating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "doctor-ranking/internal/common/errors"
	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/common/metrics"
	"doctor-ranking/internal/common/validation"
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/services/ratings"
	"doctor-ranking/internal/triage/personalization"
)

const TaskType = "submit-doctor-rating"

type RatingStore interface {
	Submit(ctx context.Context, doctorID, userName string, rating int, review string) (*ratings.SubmitResult, error)
}

type PreferenceUpdater interface {
	UpdatePreferences(ctx context.Context, userID, doctorID string, rating float64, specialty string, features personalization.Features) (*personalization.UserProfile, error)
}

type Handler struct {
	config      *Config
	store       RatingStore
	preferences PreferenceUpdater
	errors      *apperrors.ErrorHandler
	logger      logger.Logger
}

// NewHandler builds the handler. preferences may be nil, in which case ratings do not
// feed the user's profile.
func NewHandler(config *Config, store RatingStore, preferences PreferenceUpdater, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		store:       store,
		preferences: preferences,
		errors:      apperrors.NewErrorHandler(l),
		logger:      l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if result := validation.ValidateRatingSubmission(job.Variables); !result.Valid {
		h.failJob(client, job, apperrors.NewInvalidRatingError(result.Summary()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidRatingError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DoctorID == "" || input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewInvalidRatingError(fmt.Sprintf("doctorId=%q rating=%d", input.DoctorID, input.Rating))
	}

	result, err := h.store.Submit(ctx, input.DoctorID, input.UserName, input.Rating, input.Review)
	if err != nil {
		if errors.Is(err, ratings.ErrInvalidRating) {
			return nil, apperrors.NewInvalidRatingError(err.Error())
		}
		return nil, apperrors.NewRatingStoreFailedError("submit", err)
	}

	return &Output{
		Success:            true,
		Message:            result.Message,
		Statistics:         result.Statistics,
		IsUpdate:           result.IsUpdate,
		PreferencesUpdated: h.updatePreferences(ctx, input),
	}, nil
}

// updatePreferences feeds the rating into the user's profile. Failures are logged; the
// rating itself is already stored.
func (h *Handler) updatePreferences(ctx context.Context, input *Input) bool {
	if h.preferences == nil || input.UserID == "" {
		return false
	}

	doctor := models.Doctor{ID: input.DoctorID, Specialty: input.Specialty}
	if input.Doctor != nil {
		doctor = *input.Doctor
		if doctor.ID == "" && doctor.DoctorID == "" {
			doctor.ID = input.DoctorID
		}
	}
	specialty := input.Specialty
	if specialty == "" {
		specialty = doctor.Specialty
	}

	if _, err := h.preferences.UpdatePreferences(ctx, input.UserID, input.DoctorID, float64(input.Rating), specialty, personalization.FeaturesFromDoctor(doctor)); err != nil {
		h.logger.Warn("preference update after rating failed", map[string]interface{}{
			"userId":   input.UserID,
			"doctorId": input.DoctorID,
			"error":    err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
