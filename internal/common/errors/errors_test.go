package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingLogger struct {
	msg    string
	fields map[string]interface{}
}

func (l *capturingLogger) Error(msg string, fields map[string]interface{}) {
	l.msg = msg
	l.fields = fields
}

func TestErrorHandler_NormalizeError(t *testing.T) {
	h := NewErrorHandler(&capturingLogger{})

	t.Run("plain error becomes internal error", func(t *testing.T) {
		stdErr := h.normalizeError(fmt.Errorf("connection reset"))

		assert.Equal(t, ErrorCode("INTERNAL_ERROR"), stdErr.Code)
		assert.Equal(t, "connection reset", stdErr.Details)
		assert.False(t, stdErr.Retryable)
	})

	t.Run("standard error passes through unchanged", func(t *testing.T) {
		original := NewPoolLoadFailedError(fmt.Errorf("db down"))

		stdErr := h.normalizeError(original)

		assert.Same(t, original, stdErr)
	})
}

func TestErrorHandler_LogError(t *testing.T) {
	log := &capturingLogger{}
	h := NewErrorHandler(log)

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                12345,
		Type:               "persist-assignment",
		ProcessInstanceKey: 98765,
		Retries:            3,
	}}
	stdErr := NewDuplicateAssignmentError("lead-1")
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	require.NotNil(t, log.fields)
	assert.Equal(t, "Job failed", log.msg)
	assert.Equal(t, int64(12345), log.fields["jobKey"])
	assert.Equal(t, "persist-assignment", log.fields["jobType"])
	assert.Equal(t, "DUPLICATE_ASSIGNMENT", log.fields["errorCode"])
	assert.Equal(t, "DUPLICATE_ASSIGNMENT", log.fields["bpmnErrorCode"])
	assert.Equal(t, "ASSIGNMENT", log.fields["errorCategory"])
	assert.Equal(t, int64(98765), log.fields["workflowInstance"])
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable technical error", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(NewPoolLoadFailedError(fmt.Errorf("db down")))

		assert.Equal(t, "POOL_LOAD_FAILED", bpmnErr.Code)
		assert.True(t, bpmnErr.Retryable)
		assert.Equal(t, 3, bpmnErr.Retries)
		assert.Equal(t, "POOL_LOAD_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
	})

	t.Run("timeouts get partial retries", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(NewQueryTimeoutError("by_tenant"))

		assert.Equal(t, 2, bpmnErr.Retries)
	})

	t.Run("business error gets no retries", func(t *testing.T) {
		bpmnErr := ConvertToBPMNError(NewDuplicateAssignmentError("lead-1"))

		assert.Equal(t, "DUPLICATE_ASSIGNMENT", bpmnErr.Code)
		assert.False(t, bpmnErr.Retryable)
		assert.Equal(t, 0, bpmnErr.Retries)
	})

	t.Run("unmapped code falls back to itself", func(t *testing.T) {
		stdErr := &StandardError{
			Code:      "SOMETHING_NEW",
			Message:   "new failure mode",
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}

		bpmnErr := ConvertToBPMNError(stdErr)

		assert.Equal(t, "SOMETHING_NEW", bpmnErr.Code)
	})
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmnErr := &BPMNError{
		Code:      "CAPACITY_CONFLICT",
		Message:   "Assignee reached capacity before the assignment persisted",
		Retryable: false,
		ErrorVariables: map[string]interface{}{
			"userId": "user-7",
		},
	}

	vars := bpmnErr.ToErrorVariables()

	assert.Equal(t, "CAPACITY_CONFLICT", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
	assert.Equal(t, "user-7", vars["userId"])
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodePoolLoadFailed, 3},
		{ErrCodeAssignmentPersistFailed, 3},
		{ErrCodeIndexWriteFailed, 3},
		{ErrCodeCRMAPIError, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeDuplicateAssignment, 0},
		{ErrCodeCapacityConflict, 0},
		{ErrCodeUnknownQueryType, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeInvalidDistributionConfig, "DISTRIBUTION"},
		{ErrCodePoolLoadFailed, "DISTRIBUTION"},
		{ErrCodeDuplicateAssignment, "ASSIGNMENT"},
		{ErrCodeCapacityConflict, "ASSIGNMENT"},
		{ErrCodeDatabaseConnectionFailed, "DATABASE"},
		{ErrCodeQueryTimeout, "DATABASE"},
		{ErrCodeSearchQueryFailed, "SEARCH"},
		{ErrCodeIndexWriteFailed, "SEARCH"},
		{ErrCodeNotificationFailed, "NOTIFICATION"},
		{ErrCodeCRMAPIError, "CRM"},
		{ErrCodeLeadValidationFailed, "VALIDATION"},
		{"INTERNAL_ERROR", "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}
