package sendtriagealert

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
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/services/alerts"
)

const TaskType = "send-triage-alert"

type Sender interface {
	Send(ctx context.Context, alert alerts.Alert) ([]models.Notification, error)
}

type Handler struct {
	config *Config
	sender Sender
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, sender Sender, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		sender: sender,
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
	if input.RequestID == "" {
		return nil, apperrors.NewInvalidRequestError("requestId is required")
	}

	if input.SpecialistRecommendations.UrgencyLevel != models.UrgencyUrgent {
		h.logger.Debug("urgency below alert threshold", map[string]interface{}{
			"requestId": input.RequestID,
			"urgency":   input.SpecialistRecommendations.UrgencyLevel,
		})
		return &Output{Notifications: []models.Notification{}}, nil
	}

	req := models.RankingRequest{UserID: input.UserID, Location: input.Location}
	notifications, err := h.sender.Send(ctx, alerts.BuildAlert(req, &input.RankingResponse))
	if err != nil {
		return nil, apperrors.NewAlertSendFailedError("all", err)
	}

	out := &Output{Notifications: notifications}
	for _, n := range notifications {
		if n.Status == alerts.StatusSent {
			out.AlertSent = true
		}
	}
	return out, nil
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
