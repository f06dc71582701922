// internal/workers/communication/send-match-notification/handler.go
package sendmatchnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"

	awsclient "grantmatch-workers/internal/common/aws"
	"grantmatch-workers/internal/common/logger"
	"grantmatch-workers/internal/common/metrics"
	"grantmatch-workers/internal/common/validation"
	"grantmatch-workers/internal/models"
)

const (
	TaskType = "send-match-notification"
)

var (
	ErrNotificationSendFailed     = errors.New("NOTIFICATION_SEND_FAILED")
	ErrInvalidNotificationRequest = errors.New("INVALID_NOTIFICATION_REQUEST")
)

// SESService is the slice of the SES API the worker needs. Satisfied by
// *awsclient.SESClient and by test mocks.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SNSService is the slice of the SNS API the worker needs.
type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config      *Config
	db          *sql.DB
	logger      logger.Logger
	sesClient   SESService
	snsClient   SNSService
	templateMap map[string]models.NotificationTemplate
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) (*Handler, error) {
	templateMap, err := loadTemplates(config.TemplateRegistry)
	if err != nil {
		return nil, fmt.Errorf("load notification templates: %w", err)
	}

	sesClient, err := awsclient.NewSESClient(context.Background(), config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create ses client: %w", err)
	}

	snsClient, err := awsclient.NewSNSClient(context.Background(), config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create sns client: %w", err)
	}

	return &Handler{
		config:      config,
		db:          db,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient:   sesClient,
		snsClient:   snsClient,
		templateMap: templateMap,
	}, nil
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
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		} else if errors.Is(err, ErrInvalidNotificationRequest) {
			errorCode = "INVALID_NOTIFICATION_REQUEST"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrInvalidNotificationRequest)
	}

	template, exists := h.templateMap[input.NotificationType]
	if !exists {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidNotificationRequest, input.NotificationType)
	}

	email, phone, err := h.getRecipientContact(ctx, input.OrganizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.logger.Warn("recipient not found, notification disabled", map[string]interface{}{
				"organizationId": input.OrganizationID,
			})
			return &Output{
				NotificationID: uuid.New().String(),
				Status:         StatusDisabled,
				SentAt:         time.Now().Format(time.RFC3339),
			}, nil
		}
		return nil, fmt.Errorf("%w: lookup recipient contact: %v", ErrNotificationSendFailed, err)
	}

	// A malformed address disables the channel instead of burning an SES call.
	if email != "" && !validation.ValidateEmail(email) {
		h.logger.Warn("recipient email malformed, skipping email channel", map[string]interface{}{
			"organizationId": input.OrganizationID,
		})
		email = ""
	}
	if phone != "" && !validation.ValidatePhone(phone) {
		h.logger.Warn("recipient phone malformed, skipping sms channel", map[string]interface{}{
			"organizationId": input.OrganizationID,
		})
		phone = ""
	}

	data := map[string]interface{}{
		"organizationId":   input.OrganizationID,
		"notificationType": input.NotificationType,
		"matchCount":       input.MatchCount,
		"summary":          input.Summary,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}

	subject := renderTemplate(template.Subject, data)
	body := renderTemplate(template.Body, data)

	notificationID := uuid.New().String()
	sent := false
	failed := false
	channels := make([]string, 0, 2)

	if h.config.EmailEnabled && email != "" {
		channels = append(channels, "email")
		if err := h.sendEmail(ctx, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"organizationId": input.OrganizationID,
				"error":          err,
			})
			failed = true
		} else {
			sent = true
		}
	}

	// SMS is reserved for high priority notifications.
	if h.config.SMSEnabled && phone != "" && input.Priority == "high" {
		channels = append(channels, "sms")
		if err := h.sendSMS(ctx, phone, body); err != nil {
			h.logger.Error("sms send failed", map[string]interface{}{
				"organizationId": input.OrganizationID,
				"error":          err,
			})
			failed = true
		} else {
			sent = true
		}
	}

	status := StatusSent
	if failed {
		status = StatusFailed
	} else if !sent {
		status = StatusDisabled
	}

	sentAt := time.Now().Format(time.RFC3339)
	h.recordNotification(ctx, &models.Notification{
		ID:             notificationID,
		OrganizationID: input.OrganizationID,
		Type:           input.NotificationType,
		Channels:       channels,
		Status:         status,
		Payload:        data,
		SentAt:         sentAt,
	})

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId":   notificationID,
		"notificationType": input.NotificationType,
		"status":           status,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		SentAt:         sentAt,
	}, nil
}

// recordNotification writes the delivery outcome to the notifications
// table. A failed audit write never fails the job.
func (h *Handler) recordNotification(ctx context.Context, n *models.Notification) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		h.logger.Error("encode notification payload", map[string]interface{}{
			"notificationId": n.ID,
			"error":          err,
		})
		return
	}

	query := `INSERT INTO notifications (id, organization_id, type, channels, status, payload, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := h.db.ExecContext(ctx, query, n.ID, n.OrganizationID, n.Type, pq.Array(n.Channels), n.Status, payload, n.SentAt); err != nil {
		h.logger.Error("record notification failed", map[string]interface{}{
			"notificationId": n.ID,
			"error":          err,
		})
	}
}

// getRecipientContact reads the contact channels out of the organization
// profile document. Either field may be NULL when the profile omits it.
func (h *Handler) getRecipientContact(ctx context.Context, organizationID string) (string, string, error) {
	var email, phone sql.NullString
	query := `SELECT profile->>'email', profile->>'phone' FROM organizations WHERE id = $1`
	if err := h.db.QueryRowContext(ctx, query, organizationID).Scan(&email, &phone); err != nil {
		return "", "", err
	}
	return email.String, phone.String, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, phone, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String(phone),
	})
	return err
}

func loadTemplates(_ string) (map[string]models.NotificationTemplate, error) {
	return map[string]models.NotificationTemplate{
		TypeMatchResults: {
			ID:      "tpl-match-results",
			Type:    TypeMatchResults,
			Subject: "새로운 지원사업 매칭 결과 안내",
			Body:    "총 {{matchCount}}건의 지원사업이 매칭되었습니다. 최고 적합 사업: {{topProgram}}. {{summary}}",
			Version: "v1",
		},
		TypeDeadlineReminder: {
			ID:      "tpl-deadline-reminder",
			Type:    TypeDeadlineReminder,
			Subject: "지원사업 접수 마감 임박 안내",
			Body:    "{{programTitle}} 접수가 {{daysLeft}}일 후 마감됩니다. 신청을 서둘러 주세요.",
			Version: "v1",
		},
		TypePartnerSuggestion: {
			ID:      "tpl-partner-suggestion",
			Type:    TypePartnerSuggestion,
			Subject: "컨소시엄 파트너 추천 안내",
			Body:    "{{partnerName}} 기관이 컨소시엄 파트너로 추천되었습니다. {{summary}}",
			Version: "v1",
		},
	}, nil
}

// renderTemplate substitutes {{key}} placeholders and strips any that stay
// unresolved so recipients never see raw template syntax.
func renderTemplate(template string, data map[string]interface{}) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, fmt.Sprintf("%v", value))
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}

	return strings.TrimSpace(result)
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
