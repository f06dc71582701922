// internal/workers/matching/save-match-results/handler.go
package savematchresults

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "save-match-results"
)

var (
	ErrSaveResultsFailed    = errors.New("MATCH_RESULTS_SAVE_FAILED")
	ErrInvalidSaveRequest   = errors.New("INVALID_SAVE_REQUEST")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

var tracer = otel.Tracer("workers/" + TaskType)

// upsertQuery keeps one row per (organization, program) pair. Re-scoring
// overwrites score and document but preserves the original row id.
const upsertQuery = `
	INSERT INTO match_results (id, organization_id, program_id, score, historical, result, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (organization_id, program_id)
	DO UPDATE SET score = EXCLUDED.score, historical = EXCLUDED.historical, result = EXCLUDED.result, updated_at = NOW()
	RETURNING id`

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
		errorCode := "MATCH_RESULTS_SAVE_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrInvalidSaveRequest) {
			errorCode = "INVALID_SAVE_REQUEST"
		} else if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := tracer.Start(ctx, "matching.persist")
	defer span.End()

	if input.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organizationId required", ErrInvalidSaveRequest)
	}
	if len(input.Matches) == 0 {
		return nil, fmt.Errorf("%w: matches required", ErrInvalidSaveRequest)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrDatabaseInsertFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare statement: %v", ErrDatabaseInsertFailed, err)
	}
	defer stmt.Close()

	resultIDs := make([]string, 0, len(input.Matches))
	for _, match := range input.Matches {
		if match.ProgramID == "" {
			return nil, fmt.Errorf("%w: match without programId", ErrInvalidSaveRequest)
		}

		doc, err := json.Marshal(match)
		if err != nil {
			return nil, fmt.Errorf("%w: encode match result: %v", ErrSaveResultsFailed, err)
		}

		var id string
		err = stmt.QueryRowContext(ctx,
			uuid.New().String(),
			input.OrganizationID,
			match.ProgramID,
			match.Score,
			input.Historical,
			doc,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("%w: upsert result for program %s: %v", ErrDatabaseInsertFailed, match.ProgramID, err)
		}
		resultIDs = append(resultIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %v", ErrDatabaseInsertFailed, err)
	}

	span.SetAttributes(
		attribute.String("organization.id", input.OrganizationID),
		attribute.Int("results.count", len(resultIDs)),
		attribute.Bool("historical", input.Historical),
	)

	h.logger.Info("match results saved", map[string]interface{}{
		"organizationId": input.OrganizationID,
		"savedCount":     len(resultIDs),
		"historical":     input.Historical,
	})

	return &Output{
		OrganizationID: input.OrganizationID,
		SavedCount:     len(resultIDs),
		ResultIDs:      resultIDs,
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
