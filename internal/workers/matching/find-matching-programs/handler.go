// internal/workers/matching/find-matching-programs/handler.go
package findmatchingprograms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/matching/engine"
	"grantmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	TaskType = "find-matching-programs"
)

var (
	ErrMatchScoringFailed   = errors.New("MATCH_SCORING_FAILED")
	ErrInvalidMatchRequest  = errors.New("INVALID_MATCH_REQUEST")
	ErrOrganizationNotFound = errors.New("ORGANIZATION_NOT_FOUND")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
)

var tracer = otel.Tracer("workers/" + TaskType)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	engine *engine.Engine
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, eng *engine.Engine, log logger.Logger) *Handler {
	if eng == nil {
		eng = engine.New(nil, engine.Config{})
	}
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		engine: eng,
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
		errorCode := "MATCH_SCORING_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrInvalidMatchRequest) {
			errorCode = "INVALID_MATCH_REQUEST"
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
	ctx, span := tracer.Start(ctx, "matching.pipeline")
	defer span.End()

	org := input.Organization
	if org == nil {
		if input.OrganizationID == "" {
			return nil, fmt.Errorf("%w: organization or organizationId required", ErrInvalidMatchRequest)
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

	programs, err := h.resolveCandidates(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: load programs: %v", ErrQueryExecutionFailed, err)
	}

	matches := h.engine.FindMatchingPrograms(org, programs, engine.Options{
		Limit:          input.Limit,
		MinimumScore:   input.MinimumScore,
		IncludeExpired: input.IncludeExpired,
	})

	for _, m := range matches {
		metrics.MatchScoreDistribution.Observe(float64(m.Score))
	}
	metrics.MatchesReturned.WithLabelValues(TaskType).Observe(float64(len(matches)))
	span.SetAttributes(
		attribute.String("organization.id", org.ID),
		attribute.Int("candidates.count", len(programs)),
		attribute.Int("matches.count", len(matches)),
		attribute.Bool("historical", input.IncludeExpired),
	)

	h.logger.Info("matching completed", map[string]interface{}{
		"organizationId": org.ID,
		"candidates":     len(programs),
		"matches":        len(matches),
		"historical":     input.IncludeExpired,
	})

	return &Output{
		OrganizationID:  org.ID,
		Matches:         matches,
		TotalCandidates: len(programs),
	}, nil
}

// getOrganization loads the profile document cache-aside: Redis first,
// Postgres on a miss, with the raw document written back under TTL.
func (h *Handler) getOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	cacheKey := "org:profile:" + orgID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var org models.Organization
		if err := json.Unmarshal([]byte(val), &org); err == nil {
			metrics.ProfileCacheRequests.WithLabelValues("hit").Inc()
			trace.SpanFromContext(ctx).AddEvent("profile cache hit")
			return &org, nil
		}
	}
	metrics.ProfileCacheRequests.WithLabelValues("miss").Inc()
	trace.SpanFromContext(ctx).AddEvent("profile cache miss")

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

	h.redis.Set(ctx, cacheKey, doc, h.config.CacheTTL)
	return &org, nil
}

func (h *Handler) resolveCandidates(ctx context.Context, input *Input) ([]models.FundingProgram, error) {
	if len(input.Programs) > 0 {
		return input.Programs, nil
	}
	if len(input.ProgramIDs) > 0 {
		return h.fetchProgramsByIDs(ctx, input.ProgramIDs)
	}
	return h.fetchCandidatePool(ctx, input.IncludeExpired)
}

func (h *Handler) fetchProgramsByIDs(ctx context.Context, ids []string) ([]models.FundingProgram, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT document FROM funding_programs WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanPrograms(rows)
}

// fetchCandidatePool keeps the SQL gate loose on purpose: the engine
// re-runs the authoritative status and deadline filters, so this only
// has to bound the candidate set.
func (h *Handler) fetchCandidatePool(ctx context.Context, includeExpired bool) ([]models.FundingProgram, error) {
	limit := h.config.MaxCandidates
	if limit <= 0 {
		limit = 500
	}

	query := `
		SELECT document FROM funding_programs
		WHERE status = 'ACTIVE' AND (deadline IS NULL OR deadline > NOW())
		ORDER BY deadline NULLS LAST
		LIMIT $1`
	if includeExpired {
		query = `
		SELECT document FROM funding_programs
		WHERE status IN ('ACTIVE', 'EXPIRED')
		ORDER BY deadline DESC NULLS LAST
		LIMIT $1`
	}

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanPrograms(rows)
}

func scanPrograms(rows *sql.Rows) ([]models.FundingProgram, error) {
	defer rows.Close()

	var programs []models.FundingProgram
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var prog models.FundingProgram
		if err := json.Unmarshal(doc, &prog); err != nil {
			return nil, fmt.Errorf("decode program document: %w", err)
		}
		programs = append(programs, prog)
	}
	return programs, rows.Err()
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
