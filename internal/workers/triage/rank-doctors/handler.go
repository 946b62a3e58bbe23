package rankdoctors

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
)

const TaskType = "rank-doctors"

// Ranker runs the ranking pipeline. It never fails; dependency outages come back as a
// fallback response.
type Ranker interface {
	Rank(ctx context.Context, req models.RankingRequest) *models.RankingResponse
}

type Handler struct {
	config *Config
	ranker Ranker
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, ranker Ranker, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		ranker: ranker,
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

	if result := validation.ValidateRankRequest(job.Variables); !result.Valid {
		h.failJob(client, job, apperrors.NewInvalidSymptomsError(result.Summary()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidSymptomsError(fmt.Sprintf("parse input: %v", err)))
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
	if input == nil || input.Symptoms == nil {
		return nil, apperrors.NewInvalidSymptomsError("symptoms must be an object")
	}

	resp := h.ranker.Rank(ctx, *input)
	return &Output{
		RankingResponse: resp,
		AlertRequired:   !resp.Fallback && resp.SpecialistRecommendations.UrgencyLevel == models.UrgencyUrgent,
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
