// internal/workers/matching/parse-match-request/handler.go
package parsematchrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/matching/taxonomy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "parse-match-request"
)

var (
	ErrRequestParseFailed  = errors.New("REQUEST_PARSE_FAILED")
	ErrInvalidMatchRequest = errors.New("INVALID_MATCH_REQUEST")
)

var tracer = otel.Tracer("workers/" + TaskType)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		errorCode := "REQUEST_PARSE_FAILED"
		if errors.Is(err, ErrInvalidMatchRequest) {
			errorCode = "INVALID_MATCH_REQUEST"
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	_, span := tracer.Start(ctx, "matching.parse_request")
	defer span.End()

	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organizationId required", ErrInvalidMatchRequest)
	}

	var dropped []string

	limit := h.config.DefaultLimit
	if input.Limit != nil {
		if v, ok := coerceInt(input.Limit); ok {
			// zero from an empty form field means unset, not "no results"
			if v > 0 {
				limit = v
			}
		} else {
			dropped = append(dropped, "limit")
		}
	}
	if limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}

	minScore := h.config.DefaultMinimumScore
	if input.MinimumScore != nil {
		if v, ok := coerceInt(input.MinimumScore); ok {
			minScore = clamp(v, 0, 100)
		} else {
			dropped = append(dropped, "minimumScore")
		}
	}

	includeExpired := false
	if input.IncludeExpired != nil {
		if v, ok := coerceBool(input.IncludeExpired); ok {
			includeExpired = v
		} else {
			dropped = append(dropped, "includeExpired")
		}
	}

	keywords, keywordsClean := coerceKeywords(input.Keywords)
	if !keywordsClean {
		dropped = append(dropped, "keywords")
	}

	span.SetAttributes(
		attribute.String("organization.id", orgID),
		attribute.Int("request.limit", limit),
		attribute.Int("request.minimum_score", minScore),
		attribute.Int("request.dropped_fields", len(dropped)),
	)

	if len(dropped) > 0 {
		h.logger.Warn("request fields dropped", map[string]interface{}{
			"organizationId": orgID,
			"droppedFields":  dropped,
		})
	}

	return &Output{
		OrganizationID: orgID,
		Limit:          limit,
		MinimumScore:   minScore,
		IncludeExpired: includeExpired,
		Keywords:       keywords,
		Category:       strings.TrimSpace(input.Category),
		DroppedFields:  dropped,
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// coerceInt accepts the JSON number form and the numeric-string form
// upstream systems send interchangeably.
func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	case float64:
		if b == 0 || b == 1 {
			return b == 1, true
		}
		return false, false
	default:
		return false, false
	}
}

// coerceKeywords flattens the list or comma-separated forms into
// normalized, de-duplicated terms. The second return reports whether
// every supplied entry was usable.
func coerceKeywords(v interface{}) ([]string, bool) {
	if v == nil {
		return nil, true
	}

	var raw []string
	clean := true
	switch kw := v.(type) {
	case string:
		raw = strings.Split(kw, ",")
	case []interface{}:
		for _, entry := range kw {
			s, ok := entry.(string)
			if !ok {
				clean = false
				continue
			}
			raw = append(raw, s)
		}
	default:
		return nil, false
	}

	var keywords []string
	seen := make(map[string]struct{}, len(raw))
	for _, term := range raw {
		normalized := taxonomy.Normalize(term)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	return keywords, clean
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
