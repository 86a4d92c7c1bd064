// internal/workers/communication/notify-assignment/handler_test.go
package notifyassignment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"lead-distribution-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESClient struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSClient struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		FromEmail: "noreply@leaddesk.io",
		AWSRegion: "us-east-1",
		Timeout:   30 * time.Second,
	}
}

func createTestInput() *Input {
	return &Input{
		UserID:      "user-1",
		Name:        "Dana Lee",
		Email:       "dana@example.com",
		TenantID:    "tenant-001",
		LeadID:      "lead-123",
		CompanyName: "Acme Robotics",
		Explanation: "Assigned to Dana Lee based on territory match (total score 0.82)",
	}
}

func createTestHandler(t *testing.T, db *sql.DB, sesClient SESAPI, snsClient SNSAPI) *Handler {
	return &Handler{
		config:      createTestConfig(),
		db:          db,
		logger:      newTestLogger(t),
		sesClient:   sesClient,
		snsClient:   snsClient,
		templateMap: loadTemplates(),
	}
}

func expectSettings(mock sqlmock.Sqlmock, userID string, emailEnabled, smsEnabled bool, phone interface{}) {
	mock.ExpectQuery(`SELECT email_enabled, sms_enabled, phone`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"email_enabled", "sms_enabled", "phone"}).
			AddRow(emailEnabled, smsEnabled, phone))
}

// Create a test logger that implements your logger.Logger interface
type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl // Simple implementation for testing
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (t *testLogger) With(fields map[string]interface{}) logger.Logger {
	return t
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name          string
		emailEnabled  bool
		smsEnabled    bool
		phone         interface{}
		expectedEmail string
		expectedSMS   string
	}{
		{
			name:          "email and SMS enabled",
			emailEnabled:  true,
			smsEnabled:    true,
			phone:         "+15555550100",
			expectedEmail: StatusSent,
			expectedSMS:   StatusSent,
		},
		{
			name:          "email only",
			emailEnabled:  true,
			smsEnabled:    false,
			phone:         nil,
			expectedEmail: StatusSent,
			expectedSMS:   StatusDisabled,
		},
		{
			name:          "SMS only",
			emailEnabled:  false,
			smsEnabled:    true,
			phone:         "+15555550100",
			expectedEmail: StatusDisabled,
			expectedSMS:   StatusSent,
		},
		{
			name:          "all channels opted out",
			emailEnabled:  false,
			smsEnabled:    false,
			phone:         nil,
			expectedEmail: StatusDisabled,
			expectedSMS:   StatusDisabled,
		},
		{
			name:          "SMS enabled but no phone on file",
			emailEnabled:  true,
			smsEnabled:    true,
			phone:         nil,
			expectedEmail: StatusSent,
			expectedSMS:   StatusDisabled,
		},
		{
			name:          "SMS enabled but phone not dialable",
			emailEnabled:  true,
			smsEnabled:    true,
			phone:         "12345",
			expectedEmail: StatusSent,
			expectedSMS:   StatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			input := createTestInput()
			expectSettings(mock, input.UserID, tt.emailEnabled, tt.smsEnabled, tt.phone)

			mockSES := &MockSESClient{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					assert.Equal(t, input.Email, params.Destination.ToAddresses[0])
					assert.Equal(t, "noreply@leaddesk.io", *params.Source)
					return &ses.SendEmailOutput{}, nil
				},
			}
			mockSNS := &MockSNSClient{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					assert.Equal(t, "+15555550100", *params.PhoneNumber)
					return &sns.PublishOutput{}, nil
				},
			}

			handler := createTestHandler(t, db, mockSES, mockSNS)
			output, err := handler.Execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedEmail, output.EmailStatus)
			assert.Equal(t, tt.expectedSMS, output.SMSStatus)
			assert.NotEmpty(t, output.NotificationID)
			assert.NotEmpty(t, output.SentAt)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_NoSettingsRowDefaultsToEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	input := createTestInput()
	mock.ExpectQuery(`SELECT email_enabled, sms_enabled, phone`).
		WithArgs(input.UserID).
		WillReturnError(sql.ErrNoRows)

	emailSent := false
	mockSES := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			emailSent = true
			return &ses.SendEmailOutput{}, nil
		},
	}

	handler := createTestHandler(t, db, mockSES, &MockSNSClient{})
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.True(t, emailSent, "email is the default channel when no settings row exists")
	assert.Equal(t, StatusSent, output.EmailStatus)
	assert.Equal(t, StatusDisabled, output.SMSStatus)
}

func TestHandler_Execute_SettingsLookupFaultDefaultsToEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	input := createTestInput()
	mock.ExpectQuery(`SELECT email_enabled, sms_enabled, phone`).
		WithArgs(input.UserID).
		WillReturnError(errors.New("database connection failed"))

	mockSES := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}

	handler := createTestHandler(t, db, mockSES, &MockSNSClient{})
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, StatusSent, output.EmailStatus)
	assert.Equal(t, StatusDisabled, output.SMSStatus)
}

func TestHandler_Execute_NotificationContainsExplanation(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	input := createTestInput()
	expectSettings(mock, input.UserID, true, true, "+15555550100")

	var emailBody, smsBody string
	mockSES := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			emailBody = *params.Message.Body.Text.Data
			assert.Contains(t, *params.Message.Subject.Data, input.CompanyName)
			return &ses.SendEmailOutput{}, nil
		},
	}
	mockSNS := &MockSNSClient{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			smsBody = *params.Message
			return &sns.PublishOutput{}, nil
		},
	}

	handler := createTestHandler(t, db, mockSES, mockSNS)
	_, err = handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Contains(t, emailBody, input.Name)
	assert.Contains(t, emailBody, input.CompanyName)
	assert.Contains(t, emailBody, input.Explanation,
		"the distribution explanation must reach the recipient verbatim")
	assert.Contains(t, smsBody, input.Explanation)
	assert.False(t, strings.Contains(emailBody, "{{"), "no unresolved placeholders")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_PartialDeliveryStillSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	input := createTestInput()
	expectSettings(mock, input.UserID, true, true, "+15555550100")

	mockSES := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses throttled")
		},
	}
	mockSNS := &MockSNSClient{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{}, nil
		},
	}

	handler := createTestHandler(t, db, mockSES, mockSNS)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err, "one delivered channel is enough")
	assert.Equal(t, StatusFailed, output.EmailStatus)
	assert.Equal(t, StatusSent, output.SMSStatus)
}

func TestHandler_Execute_AllEnabledChannelsFail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	input := createTestInput()
	expectSettings(mock, input.UserID, true, true, "+15555550100")

	mockSES := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses unavailable")
		},
	}
	mockSNS := &MockSNSClient{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("sns unavailable")
		},
	}

	handler := createTestHandler(t, db, mockSES, mockSNS)
	output, err := handler.Execute(context.Background(), input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrNotificationFailed))
}

func TestHandler_Execute_SingleEnabledChannelFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	input := createTestInput()
	expectSettings(mock, input.UserID, true, false, nil)

	mockSES := &MockSESClient{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses unavailable")
		},
	}

	handler := createTestHandler(t, db, mockSES, &MockSNSClient{})
	output, err := handler.Execute(context.Background(), input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrNotificationFailed))
}

// ==========================
// Template Rendering Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "replaces known placeholders",
			template: "Hi {{name}}, lead {{companyName}} is yours.",
			data:     map[string]interface{}{"name": "Dana", "companyName": "Acme"},
			expected: "Hi Dana, lead Acme is yours.",
		},
		{
			name:     "strips unknown placeholders",
			template: "Hi {{name}}, score {{missing}} done.",
			data:     map[string]interface{}{"name": "Dana"},
			expected: "Hi Dana, score  done.",
		},
		{
			name:     "formats non-string values",
			template: "Load: {{load}}",
			data:     map[string]interface{}{"load": 7},
			expected: "Load: 7",
		},
		{
			name:     "empty template",
			template: "",
			data:     map[string]interface{}{"name": "Dana"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkRenderTemplate(b *testing.B) {
	data := map[string]interface{}{
		"name":        "Dana Lee",
		"companyName": "Acme Robotics",
		"explanation": "Assigned to Dana Lee based on territory match (total score 0.82)",
	}
	tmpl := loadTemplates()[TypeLeadAssigned]["body"]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderTemplate(tmpl, data)
	}
}
