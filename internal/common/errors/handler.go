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

// codeInternal brands errors that reached the handler without a
// StandardError wrapper, including recovered panics.
const codeInternal ErrorCode = "INTERNAL_ERROR"

// Logger is the minimal logging surface the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns a handler failure into the right Zeebe outcome:
// retryable codes fail the job so the broker schedules another attempt,
// terminal codes throw a BPMN error for the process model to route.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError routes err for the given job. err may be any error,
// including one built from a recovered panic value.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	h.logFailure(job, stdErr, bpmnErr)

	// Retrying needs both a policy budget and at least one attempt left
	// after this one. A job on its final attempt goes terminal.
	if bpmnErr.Retries > 0 && job.Retries > 1 {
		h.failJob(ctx, client, job, bpmnErr)
		return
	}
	h.throwError(ctx, client, job, bpmnErr)
}

// normalize unwraps err to its StandardError, or brands it internal.
func (h *ErrorHandler) normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      codeInternal,
		Message:   "unexpected worker failure",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	// Decrement what the job has left, capped at the policy budget.
	remaining := job.Retries - 1
	if budget := int32(bpmnErr.Retries); remaining > budget {
		remaining = budget
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(remaining).
		ErrorMessage(bpmnErr.Message)

	if payload := encodeErrorVariables(bpmnErr); payload != "" {
		if withVars, err := cmd.VariablesFromString(payload); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if payload := encodeErrorVariables(bpmnErr); payload != "" {
		if withVars, err := cmd.VariablesFromString(payload); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

// encodeErrorVariables serializes the error payload the process model
// reads, or returns "" when there is nothing to attach.
func encodeErrorVariables(bpmnErr *BPMNError) string {
	vars := bpmnErr.ToErrorVariables()
	if len(vars) == 0 {
		return ""
	}
	encoded, err := json.Marshal(vars)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func (h *ErrorHandler) logFailure(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":          job.Key,
		"taskType":        job.Type,
		"errorCode":       string(stdErr.Code),
		"bpmnErrorCode":   bpmnErr.Code,
		"message":         bpmnErr.Message,
		"details":         stdErr.Details,
		"retryable":       stdErr.Retryable,
		"category":        GetErrorCategory(stdErr.Code),
		"processInstance": job.ProcessInstanceKey,
	})
}
