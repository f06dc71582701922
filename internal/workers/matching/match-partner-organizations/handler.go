// internal/workers/matching/match-partner-organizations/handler.go
package matchpartnerorganizations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/matching/partner"
	"grantmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "match-partner-organizations"
)

var (
	ErrPartnerMatchingFailed = errors.New("PARTNER_MATCHING_FAILED")
	ErrInvalidMatchRequest   = errors.New("INVALID_MATCH_REQUEST")
	ErrOrganizationNotFound  = errors.New("ORGANIZATION_NOT_FOUND")
	ErrQueryExecutionFailed  = errors.New("QUERY_EXECUTION_FAILED")
)

var tracer = otel.Tracer("workers/" + TaskType)

type Handler struct {
	config *Config
	db     *sql.DB
	scorer *partner.Scorer
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, scorer *partner.Scorer, log logger.Logger) *Handler {
	if scorer == nil {
		scorer = partner.New(nil, partner.Config{})
	}
	return &Handler{
		config: config,
		db:     db,
		scorer: scorer,
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
		errorCode := "PARTNER_MATCHING_FAILED"
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
	ctx, span := tracer.Start(ctx, "partner.matching")
	defer span.End()

	seeker := input.Organization
	if seeker == nil {
		if input.OrganizationID == "" {
			return nil, fmt.Errorf("%w: organization or organizationId required", ErrInvalidMatchRequest)
		}
		var err error
		seeker, err = h.getOrganization(ctx, input.OrganizationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, input.OrganizationID)
			}
			return nil, fmt.Errorf("%w: load organization: %v", ErrQueryExecutionFailed, err)
		}
	}

	candidates := input.Candidates
	if len(candidates) == 0 {
		var err error
		candidates, err = h.fetchCandidates(ctx, seeker.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: load candidates: %v", ErrQueryExecutionFailed, err)
		}
	}

	partners := h.scorer.MatchPartners(seeker, candidates, partner.Options{
		Limit:        input.Limit,
		MinimumScore: input.MinimumScore,
	})

	metrics.MatchesReturned.WithLabelValues(TaskType).Observe(float64(len(partners)))
	span.SetAttributes(
		attribute.String("organization.id", seeker.ID),
		attribute.Int("candidates.count", len(candidates)),
		attribute.Int("partners.count", len(partners)),
	)

	h.logger.Info("partner matching completed", map[string]interface{}{
		"organizationId": seeker.ID,
		"candidates":     len(candidates),
		"partners":       len(partners),
	})

	return &Output{
		OrganizationID:  seeker.ID,
		Partners:        partners,
		TotalCandidates: len(candidates),
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

// fetchCandidates applies the cheap SQL gates and leaves the seeker
// out; the scorer re-checks activity and profile completeness on the
// decoded records.
func (h *Handler) fetchCandidates(ctx context.Context, seekerID string) ([]models.Organization, error) {
	limit := h.config.MaxCandidates
	if limit <= 0 {
		limit = 200
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT profile FROM organizations
		WHERE status = 'ACTIVE' AND profile_completed AND id != $1
		LIMIT $2`, seekerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Organization
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var org models.Organization
		if err := json.Unmarshal(doc, &org); err != nil {
			return nil, fmt.Errorf("decode organization profile: %w", err)
		}
		candidates = append(candidates, org)
	}
	return candidates, rows.Err()
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
