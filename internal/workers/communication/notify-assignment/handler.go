// internal/workers/communication/notify-assignment/handler.go
package notifyassignment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonaws "lead-distribution-workers/internal/common/aws"
	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/common/validation"
	"lead-distribution-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-assignment"
)

var (
	ErrNotificationFailed = errors.New("NOTIFICATION_FAILED")
)

// Define interfaces for mocking
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config      *Config
	db          *sql.DB
	logger      logger.Logger
	sesClient   SESAPI
	snsClient   SNSAPI
	templateMap map[string]map[string]string
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) (*Handler, error) {
	ctx := context.Background()

	sesClient, err := commonaws.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}

	snsClient, err := commonaws.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Handler{
		config:      config,
		db:          db,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient:   sesClient,
		snsClient:   snsClient,
		templateMap: loadTemplates(),
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
		errorCode := "NOTIFICATION_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationFailed) {
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	prefs := h.getChannelPrefs(ctx, input.UserID)

	data := map[string]interface{}{
		"name":        input.Name,
		"leadId":      input.LeadID,
		"companyName": input.CompanyName,
		"explanation": input.Explanation,
	}

	tmpl := h.templateMap[TypeLeadAssigned]
	subject := renderTemplate(tmpl["subject"], data)
	body := renderTemplate(tmpl["body"], data)
	smsBody := renderTemplate(tmpl["sms"], data)

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	emailStatus := StatusDisabled
	if prefs.EmailEnabled && input.Email != "" {
		if err := h.sendEmail(ctx, input.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": input.Email,
			})
			emailStatus = StatusFailed
		} else {
			emailStatus = StatusSent
		}
	}

	smsStatus := StatusDisabled
	if prefs.SMSEnabled && prefs.Phone != "" {
		if !validation.ValidatePhone(prefs.Phone) {
			// A malformed number would fail on every retry, so treat the
			// channel as unusable rather than as a delivery failure.
			h.logger.Warn("SMS skipped, phone number not dialable", map[string]interface{}{
				"userId": input.UserID,
				"phone":  prefs.Phone,
			})
		} else if err := h.sendSMS(ctx, prefs.Phone, smsBody); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": prefs.Phone,
			})
			smsStatus = StatusFailed
		} else {
			smsStatus = StatusSent
		}
	}

	// Fail only when every enabled channel failed. A partial delivery still
	// counts as notified, and no enabled channels means nothing to do.
	attempted := emailStatus != StatusDisabled || smsStatus != StatusDisabled
	delivered := emailStatus == StatusSent || smsStatus == StatusSent
	if attempted && !delivered {
		return nil, fmt.Errorf("%w: no enabled channel delivered for user %s",
			ErrNotificationFailed, input.UserID)
	}

	h.logger.Info("assignment notification processed", map[string]interface{}{
		"notificationId": notificationID,
		"userId":         input.UserID,
		"leadId":         input.LeadID,
		"emailStatus":    emailStatus,
		"smsStatus":      smsStatus,
	})

	return &Output{
		NotificationID: notificationID,
		EmailStatus:    emailStatus,
		SMSStatus:      smsStatus,
		SentAt:         sentAt,
	}, nil
}

// getChannelPrefs loads the user's notification settings. A missing row or a
// lookup fault falls back to email only, so a prefs outage never silently
// drops the notification.
func (h *Handler) getChannelPrefs(ctx context.Context, userID string) models.NotificationSettings {
	var prefs models.NotificationSettings
	prefs.UserID = userID

	var phone sql.NullString
	err := h.db.QueryRowContext(ctx, `
		SELECT email_enabled, sms_enabled, phone
		FROM notification_settings
		WHERE user_id = $1`, userID).
		Scan(&prefs.EmailEnabled, &prefs.SMSEnabled, &phone)
	if err != nil {
		if err != sql.ErrNoRows {
			h.logger.Warn("notification settings lookup failed, defaulting to email", map[string]interface{}{
				"error":  err,
				"userId": userID,
			})
		}
		return models.NotificationSettings{UserID: userID, EmailEnabled: true}
	}

	prefs.Phone = phone.String
	return prefs
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
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
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
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

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

// Simplified template rendering with placeholder removal for missing values
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Remove any remaining placeholders (missing values)
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func loadTemplates() map[string]map[string]string {
	return map[string]map[string]string{
		TypeLeadAssigned: {
			"subject": "New Lead Assigned: {{companyName}}",
			"body":    "Hi {{name}}, the lead {{companyName}} has been assigned to you. {{explanation}}",
			"sms":     "New lead assigned: {{companyName}}. {{explanation}}",
		},
	}
}
