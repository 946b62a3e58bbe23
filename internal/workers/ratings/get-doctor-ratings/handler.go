package getdoctorratings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "doctor-ranking/internal/common/errors"
	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/common/metrics"
	"doctor-ranking/internal/services/ratings"
)

const TaskType = "get-doctor-ratings"

type RatingReader interface {
	DoctorRatings(ctx context.Context, doctorID, userName string) (*ratings.DoctorRatings, error)
}

type Handler struct {
	config *Config
	store  RatingReader
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, store RatingReader, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store,
		errors: apperrors.NewErrorHandler(l),
		logger: l,
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
	doctorID := strings.TrimSpace(input.DoctorID)
	if doctorID == "" {
		return nil, apperrors.NewInvalidRequestError("doctorId is required")
	}

	result, err := h.store.DoctorRatings(ctx, doctorID, input.UserName)
	if err != nil {
		return nil, apperrors.NewRatingStoreFailedError("list", err)
	}

	h.logger.Debug("ratings loaded", map[string]interface{}{
		"doctorId":     doctorID,
		"totalRatings": result.Statistics.TotalRatings,
	})

	return &Output{
		DoctorID:   doctorID,
		Ratings:    result.Ratings,
		Reviews:    result.Reviews,
		Statistics: result.Statistics,
		UserRating: result.UserRating,
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
