// internal/workers/profile/validate-profile-data/handler.go
package validateprofiledata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-profile-data"
)

var (
	ErrProfileValidationFailed = errors.New("PROFILE_VALIDATION_FAILED")
	ErrInvalidProfileRequest   = errors.New("INVALID_PROFILE_REQUEST")
)

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
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "PROFILE_VALIDATION_FAILED"
		if errors.Is(err, ErrInvalidProfileRequest) {
			errorCode = "INVALID_PROFILE_REQUEST"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

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
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if len(input.Profile) == 0 {
		return nil, fmt.Errorf("%w: profile payload is required", ErrInvalidProfileRequest)
	}

	var schema map[string]interface{}
	switch input.ProfileType {
	case ProfileTypeOrganization:
		schema = organizationSchema
	case ProfileTypeProgram:
		schema = programSchema
	default:
		return nil, fmt.Errorf("%w: unknown profile type %q", ErrInvalidProfileRequest, input.ProfileType)
	}

	validationErrors := h.validateSchema(schema, input.Profile)

	switch input.ProfileType {
	case ProfileTypeOrganization:
		validationErrors = append(validationErrors, h.checkOrganizationRules(input.Profile)...)
	case ProfileTypeProgram:
		validationErrors = append(validationErrors, h.checkProgramRules(input.Profile)...)
	}

	isValid := len(validationErrors) == 0
	h.logger.Info("validation completed", map[string]interface{}{
		"profileType": input.ProfileType,
		"isValid":     isValid,
		"errorCount":  len(validationErrors),
	})

	if !isValid {
		for _, ve := range validationErrors {
			h.logger.Warn("profile field rejected", map[string]interface{}{
				"field": ve.Field,
				"code":  ve.Code,
			})
		}
		return nil, fmt.Errorf("%w: %d validation errors", ErrProfileValidationFailed, len(validationErrors))
	}

	return &Output{
		IsValid:          true,
		ProfileType:      input.ProfileType,
		ValidatedProfile: input.Profile,
		ValidationErrors: []ValidationError{},
	}, nil
}

func (h *Handler) validateSchema(schemaMap, profile map[string]interface{}) []ValidationError {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(profile)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return []ValidationError{{
			Field:   "profile",
			Code:    "SCHEMA_ERROR",
			Message: err.Error(),
		}}
	}

	if result.Valid() {
		return nil
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Code:    "SCHEMA_VIOLATION",
			Message: desc.Description(),
		})
	}
	return errs
}

func (h *Handler) checkOrganizationRules(profile map[string]interface{}) []ValidationError {
	errs := []ValidationError{}

	if email, ok := profile["email"].(string); ok && email != "" && !validation.ValidateEmail(email) {
		errs = append(errs, ValidationError{
			Field:   "email",
			Code:    "INVALID_FORMAT",
			Message: "Contact email is not a valid address",
		})
	}

	if phone, ok := profile["phone"].(string); ok && phone != "" && !validation.ValidatePhone(phone) {
		errs = append(errs, ValidationError{
			Field:   "phone",
			Code:    "INVALID_FORMAT",
			Message: "Contact phone is not a valid number",
		})
	}

	// TRL is a maturity scale; the research target cannot sit below the
	// level already reached.
	current, hasCurrent := asInt(profile["technologyReadinessLevel"])
	target, hasTarget := asInt(profile["targetResearchTrl"])
	if hasCurrent && hasTarget && target < current {
		errs = append(errs, ValidationError{
			Field:   "targetResearchTrl",
			Code:    "INVALID_TRL_ORDER",
			Message: "Target research TRL cannot be below the current level",
		})
	}

	return errs
}

func (h *Handler) checkProgramRules(profile map[string]interface{}) []ValidationError {
	errs := []ValidationError{}

	minTRL, hasMin := asInt(profile["minTrl"])
	maxTRL, hasMax := asInt(profile["maxTrl"])
	if hasMin && hasMax && minTRL > maxTRL {
		errs = append(errs, ValidationError{
			Field:   "minTrl",
			Code:    "INVALID_TRL_RANGE",
			Message: "minTrl cannot exceed maxTrl",
		})
	}

	deadline, hasDeadline, deadlineOK := parseDate(profile["deadline"])
	if !deadlineOK {
		errs = append(errs, ValidationError{
			Field:   "deadline",
			Code:    "INVALID_FORMAT",
			Message: "Deadline is not a recognized date",
		})
	}

	start, hasStart, startOK := parseDate(profile["applicationStart"])
	if !startOK {
		errs = append(errs, ValidationError{
			Field:   "applicationStart",
			Code:    "INVALID_FORMAT",
			Message: "Application start is not a recognized date",
		})
	}

	if hasDeadline && hasStart && !start.Before(deadline) {
		errs = append(errs, ValidationError{
			Field:   "applicationStart",
			Code:    "INVALID_DATE_ORDER",
			Message: "Application start must precede the deadline",
		})
	}

	if status, ok := profile["status"].(string); ok && status == "ACTIVE" && hasDeadline && deadline.Before(time.Now()) {
		errs = append(errs, ValidationError{
			Field:   "status",
			Code:    "STATUS_DEADLINE_MISMATCH",
			Message: "An ACTIVE program cannot have a deadline in the past",
		})
	}

	return errs
}

// parseDate accepts RFC3339 and plain dates; returns value, presence,
// and whether a present value parsed.
func parseDate(raw interface{}) (time.Time, bool, bool) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return time.Time{}, false, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, true, true
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, true, true
	}
	return time.Time{}, false, false
}

func asInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
