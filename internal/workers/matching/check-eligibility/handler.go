// internal/workers/matching/check-eligibility/handler.go
package checkeligibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/matching/eligibility"
	"grantmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "check-eligibility"
)

var (
	ErrEligibilityCheckFailed    = errors.New("ELIGIBILITY_CHECK_FAILED")
	ErrInvalidEligibilityRequest = errors.New("INVALID_ELIGIBILITY_REQUEST")
	ErrOrganizationNotFound      = errors.New("ORGANIZATION_NOT_FOUND")
	ErrProgramNotFound           = errors.New("PROGRAM_NOT_FOUND")
	ErrQueryExecutionFailed      = errors.New("QUERY_EXECUTION_FAILED")
)

var tracer = otel.Tracer("workers/" + TaskType)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "ELIGIBILITY_CHECK_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrInvalidEligibilityRequest) {
			errorCode = "INVALID_ELIGIBILITY_REQUEST"
		} else if errors.Is(err, ErrOrganizationNotFound) {
			errorCode = "ORGANIZATION_NOT_FOUND"
		} else if errors.Is(err, ErrProgramNotFound) {
			errorCode = "PROGRAM_NOT_FOUND"
		} else if errors.Is(err, ErrQueryExecutionFailed) {
			errorCode = "QUERY_EXECUTION_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := tracer.Start(ctx, "eligibility.check")
	defer span.End()

	org := input.Organization
	if org == nil {
		if input.OrganizationID == "" {
			return nil, fmt.Errorf("%w: organization or organizationId required", ErrInvalidEligibilityRequest)
		}
		var err error
		org, err = h.getOrganization(ctx, input.OrganizationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, input.OrganizationID)
			}
			return nil, fmt.Errorf("%w: load organization: %v", ErrQueryExecutionFailed, err)
		}
	}

	prog := input.Program
	if prog == nil {
		if input.ProgramID == "" {
			return nil, fmt.Errorf("%w: program or programId required", ErrInvalidEligibilityRequest)
		}
		var err error
		prog, err = h.getProgram(ctx, input.ProgramID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, input.ProgramID)
			}
			return nil, fmt.Errorf("%w: load program: %v", ErrQueryExecutionFailed, err)
		}
	}

	detail := eligibility.Evaluate(org, prog, time.Now())

	span.SetAttributes(
		attribute.String("organization.id", org.ID),
		attribute.String("program.id", prog.ID),
		attribute.String("eligibility.level", string(detail.Level)),
		attribute.Bool("eligibility.needs_review", detail.NeedsManualReview),
	)

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"organizationId":    org.ID,
		"programId":         prog.ID,
		"level":             string(detail.Level),
		"failedCount":       len(detail.FailedRequirements),
		"needsManualReview": detail.NeedsManualReview,
	})

	return &Output{
		OrganizationID: org.ID,
		ProgramID:      prog.ID,
		Level:          detail.Level,
		Eligibility:    &detail,
	}, nil
}

func (h *Handler) getOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	var doc []byte
	err := h.db.QueryRowContext(ctx, `
		SELECT profile FROM organizations WHERE id = $1`, orgID).Scan(&doc)
	if err != nil {
		return nil, err
	}

	var org models.Organization
	if err := json.Unmarshal(doc, &org); err != nil {
		return nil, fmt.Errorf("decode organization profile: %w", err)
	}
	return &org, nil
}

func (h *Handler) getProgram(ctx context.Context, programID string) (*models.FundingProgram, error) {
	var doc []byte
	err := h.db.QueryRowContext(ctx, `
		SELECT document FROM funding_programs WHERE id = $1`, programID).Scan(&doc)
	if err != nil {
		return nil, err
	}

	var prog models.FundingProgram
	if err := json.Unmarshal(doc, &prog); err != nil {
		return nil, fmt.Errorf("decode program document: %w", err)
	}
	return &prog, nil
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
