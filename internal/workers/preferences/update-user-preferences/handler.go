package updateuserpreferences

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "doctor-ranking/internal/common/errors"
	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/common/metrics"
	"doctor-ranking/internal/common/validation"
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/personalization"
)

const (
	TaskType = "update-user-preferences"

	requiredFieldsMessage = "userId, doctorId, rating, and specialty are required"
	successMessage        = "User preferences updated successfully"
)

type PreferenceUpdater interface {
	UpdatePreferences(ctx context.Context, userID, doctorID string, rating float64, specialty string, features personalization.Features) (*personalization.UserProfile, error)
}

type Handler struct {
	config      *Config
	preferences PreferenceUpdater
	errors      *apperrors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, preferences PreferenceUpdater, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
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

	if result := validation.ValidatePreferenceUpdate(job.Variables); !result.Valid {
		h.failJob(client, job, apperrors.NewInvalidRequestError(requiredFieldsMessage).
			WithMetadata("validationErrors", result.GetErrorMessages()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
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
	if input.UserID == "" || input.DoctorID == "" || input.Rating == 0 || input.Specialty == "" {
		return nil, apperrors.NewInvalidRequestError(requiredFieldsMessage)
	}

	doctor := models.Doctor{ID: input.DoctorID, Specialty: input.Specialty}
	if input.Doctor != nil {
		doctor = *input.Doctor
	}

	profile, err := h.preferences.UpdatePreferences(ctx, input.UserID, input.DoctorID, input.Rating, input.Specialty, personalization.FeaturesFromDoctor(doctor))
	if err != nil {
		return nil, apperrors.NewProfileStoreFailedError(input.UserID, err)
	}

	return &Output{
		Success:     true,
		Message:     successMessage,
		Preferences: profile.Preferences,
	}, nil
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
