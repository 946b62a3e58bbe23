// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler fails or throws a job from a StandardError.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries for retryable codes and throws a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if bpmnErr.Retries > 0 && job.Retries > 0 {
		h.failJobWithRetries(ctx, client, job, bpmnErr)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

// Normalize unwraps a StandardError from err, or wraps err as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	// job.Retries is what the engine has left; never hand back more than that.
	retries := bpmnErr.Retries
	if int(job.Retries)-1 < retries {
		retries = int(job.Retries) - 1
	}
	if retries < 0 {
		retries = 0
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := cmdWithVars.Send(ctx); err != nil {
				h.logger.Error("failed to send fail job command", map[string]interface{}{"error": err, "jobKey": job.Key})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{"error": err, "jobKey": job.Key})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			if _, err := cmdWithVars.Send(ctx); err != nil {
				h.logger.Error("failed to throw error", map[string]interface{}{"error": err, "jobKey": job.Key})
			}
			return
		}
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err, "jobKey": job.Key})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
