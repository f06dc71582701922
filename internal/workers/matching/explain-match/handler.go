// internal/workers/matching/explain-match/handler.go
package explainmatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/matching/explain"
	"grantmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "explain-match"
)

var (
	ErrExplanationFailed     = errors.New("EXPLANATION_FAILED")
	ErrInvalidExplainRequest = errors.New("INVALID_EXPLAIN_REQUEST")
	ErrOrganizationNotFound  = errors.New("ORGANIZATION_NOT_FOUND")
	ErrQueryExecutionFailed  = errors.New("QUERY_EXECUTION_FAILED")
)

var tracer = otel.Tracer("workers/" + TaskType)

type Handler struct {
	config    *Config
	db        *sql.DB
	generator *explain.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, generator *explain.Generator, log logger.Logger) *Handler {
	if generator == nil {
		generator = explain.New()
	}
	return &Handler{
		config:    config,
		db:        db,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "EXPLANATION_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrInvalidExplainRequest) {
			errorCode = "INVALID_EXPLAIN_REQUEST"
		} else if errors.Is(err, ErrOrganizationNotFound) {
			errorCode = "ORGANIZATION_NOT_FOUND"
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
	ctx, span := tracer.Start(ctx, "explain.generate")
	defer span.End()

	if len(input.Matches) == 0 {
		return nil, fmt.Errorf("%w: matches required", ErrInvalidExplainRequest)
	}

	org := input.Organization
	if org == nil && input.OrganizationID != "" {
		var err error
		org, err = h.getOrganization(ctx, input.OrganizationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, input.OrganizationID)
			}
			return nil, fmt.Errorf("%w: load organization: %v", ErrQueryExecutionFailed, err)
		}
	}

	programs, err := h.resolvePrograms(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: load programs: %v", ErrQueryExecutionFailed, err)
	}

	explanations := make([]MatchExplanation, 0, len(input.Matches))
	for i := range input.Matches {
		match := &input.Matches[i]
		prog := programs[match.ProgramID]
		if prog == nil {
			h.logger.Warn("program record unavailable, rendering generic text", map[string]interface{}{
				"programId": match.ProgramID,
			})
		}
		explanations = append(explanations, MatchExplanation{
			ProgramID:   match.ProgramID,
			Score:       match.Score,
			Explanation: h.generator.Generate(match, org, prog),
		})
	}

	orgID := input.OrganizationID
	if org != nil {
		orgID = org.ID
	}

	span.SetAttributes(
		attribute.String("organization.id", orgID),
		attribute.Int("matches.count", len(input.Matches)),
	)

	h.logger.Info("explanations generated", map[string]interface{}{
		"organizationId": orgID,
		"explanations":   len(explanations),
	})

	return &Output{
		OrganizationID: orgID,
		Explanations:   explanations,
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

// resolvePrograms indexes the program records by id, fetching the ones
// the matches reference when none came inline. A match whose program
// cannot be found still gets an explanation, just without the record.
func (h *Handler) resolvePrograms(ctx context.Context, input *Input) (map[string]*models.FundingProgram, error) {
	byID := make(map[string]*models.FundingProgram, len(input.Matches))

	if len(input.Programs) > 0 {
		for i := range input.Programs {
			byID[input.Programs[i].ID] = &input.Programs[i]
		}
		return byID, nil
	}
	if h.db == nil {
		return byID, nil
	}

	ids := make([]string, 0, len(input.Matches))
	for _, m := range input.Matches {
		if m.ProgramID != "" {
			ids = append(ids, m.ProgramID)
		}
	}
	if len(ids) == 0 {
		return byID, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT document FROM funding_programs WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var prog models.FundingProgram
		if err := json.Unmarshal(doc, &prog); err != nil {
			return nil, fmt.Errorf("decode program document: %w", err)
		}
		byID[prog.ID] = &prog
	}
	return byID, rows.Err()
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
