// Package errors defines the structured error model the lead workers hand
// to Camunda: stable error codes, retry recommendations, and the conversion
// into BPMN errors that boundary events can catch.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode identifies a failure mode. The same codes appear as BPMN error
// codes on the process diagrams, so renaming one is a process change, not
// just a refactor.
type ErrorCode string

const (
	ErrCodeLeadValidationFailed ErrorCode = "LEAD_VALIDATION_FAILED"

	ErrCodeInvalidDistributionConfig ErrorCode = "INVALID_DISTRIBUTION_CONFIG"
	ErrCodePoolLoadFailed            ErrorCode = "POOL_LOAD_FAILED"

	ErrCodeDuplicateAssignment     ErrorCode = "DUPLICATE_ASSIGNMENT"
	ErrCodeCapacityConflict        ErrorCode = "CAPACITY_CONFLICT"
	ErrCodeAssignmentPersistFailed ErrorCode = "ASSIGNMENT_PERSIST_FAILED"

	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexWriteFailed              ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeIndexTimeout                  ErrorCode = "INDEX_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeUnknownQueryType              ErrorCode = "UNKNOWN_QUERY_TYPE"

	ErrCodeCRMNotConfigured ErrorCode = "CRM_NOT_CONFIGURED"
	ErrCodeCRMAPIError      ErrorCode = "CRM_API_ERROR"
)

// Cross-cutting codes used by the shared infrastructure clients rather
// than any single worker.
const (
	ErrCodeBusinessRule    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication  ErrorCode = "AUTHENTICATION_ERROR"
)

// StandardError is the error type workers raise internally before it is
// translated into a job failure or BPMN error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func newStandardError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// BPMNError is what actually reaches the engine: a code the diagram can
// route on, plus the retry budget for the job fail command.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("bpmn error %s: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into process variables so downstream
// gateways and listeners can inspect what went wrong.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// NewLeadValidationFailedError marks an intake validation fault. Malformed
// lead data itself is a business outcome, not an error; this code is for
// schema-compilation and other internal validation faults.
func NewLeadValidationFailedError(details string) *StandardError {
	return newStandardError(ErrCodeLeadValidationFailed, "Lead validation could not run", details, false)
}

func NewInvalidDistributionConfigError(err error) *StandardError {
	return newStandardError(ErrCodeInvalidDistributionConfig, "Distribution configuration rejected", err.Error(), false)
}

func NewPoolLoadFailedError(err error) *StandardError {
	return newStandardError(ErrCodePoolLoadFailed, "Failed to load candidate pool", err.Error(), true)
}

func NewDuplicateAssignmentError(leadID string) *StandardError {
	return newStandardError(ErrCodeDuplicateAssignment, "Lead is already assigned", "leadId: "+leadID, false)
}

// NewCapacityConflictError reports that the winner filled up between scoring
// and persistence. Retrying the same write cannot succeed; the process must
// re-run distribution.
func NewCapacityConflictError(userID string) *StandardError {
	return newStandardError(ErrCodeCapacityConflict, "Assignee reached capacity before the assignment persisted", "userId: "+userID, false)
}

func NewAssignmentPersistFailedError(err error) *StandardError {
	return newStandardError(ErrCodeAssignmentPersistFailed, "Failed to persist assignment", err.Error(), true)
}

func NewNotificationFailedError(channel string, err error) *StandardError {
	details := fmt.Sprintf("channel: %s, error: %s", channel, err.Error())
	return newStandardError(ErrCodeNotificationFailed, "Assignment notification delivery failed", details, true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newStandardError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	details := fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error())
	return newStandardError(ErrCodeQueryExecutionFailed, "Database query execution error", details, true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newStandardError(ErrCodeQueryTimeout, "Database query timeout", "queryType: "+queryType, true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newStandardError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

func NewIndexWriteFailedError(err error) *StandardError {
	return newStandardError(ErrCodeIndexWriteFailed, "Assignment index write failed", err.Error(), true)
}

func NewIndexTimeoutError(indexName string) *StandardError {
	return newStandardError(ErrCodeIndexTimeout, "Assignment index write timeout", "indexName: "+indexName, true)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newStandardError(ErrCodeIndexNotFound, "Elasticsearch index not found", "indexName: "+indexName, false)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	details := fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error())
	return newStandardError(ErrCodeSearchQueryFailed, "Elasticsearch query error", details, true)
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return newStandardError(ErrCodeSearchTimeout, "Elasticsearch query timeout", "queryType: "+queryType, true)
}

func NewUnknownQueryTypeError(queryType string) *StandardError {
	return newStandardError(ErrCodeUnknownQueryType, "Unsupported query type", "queryType: "+queryType, false)
}

func NewCRMNotConfiguredError(details string) *StandardError {
	return newStandardError(ErrCodeCRMNotConfigured, "CRM integration is not configured", details, false)
}

func NewCRMAPIError(err error) *StandardError {
	return newStandardError(ErrCodeCRMAPIError, "CRM API request failed", err.Error(), true)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newStandardError(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newStandardError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newStandardError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newStandardError(ErrCodeNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newStandardError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// GetRetryCount returns the retry budget for an error code. Technical faults
// get the full budget, timeouts a reduced one, business faults none.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePoolLoadFailed,
		ErrCodeAssignmentPersistFailed,
		ErrCodeNotificationFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCRMAPIError:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeIndexTimeout:
		// A timeout that struck twice is unlikely to clear on the third try.
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError prepares a StandardError for the engine. Internal codes
// double as BPMN error codes, so the conversion is mostly about attaching
// the retry policy and provenance variables.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// IsRetryableErrorCode reports whether the code carries a retry budget.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory buckets codes for log filtering and dashboards.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DISTRIBUTION") || strings.Contains(codeStr, "POOL"):
		return "DISTRIBUTION"
	case strings.Contains(codeStr, "ASSIGNMENT") || strings.Contains(codeStr, "CAPACITY"):
		return "ASSIGNMENT"
	// SEARCH before DATABASE: SEARCH_QUERY_FAILED must not match "QUERY_".
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "CRM"):
		return "CRM"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
