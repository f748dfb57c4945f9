// Package errors provides the hunt error taxonomy and its BPMN mapping.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Hunt outcomes. The first five end a hunt early.
const (
	ErrCodeHuntUnavailable      ErrorCode = "HUNT_UNAVAILABLE"
	ErrCodeHuntQuotaExceeded    ErrorCode = "HUNT_QUOTA_EXCEEDED"
	ErrCodeHuntProviderError    ErrorCode = "HUNT_PROVIDER_ERROR"
	ErrCodeHuntTimeout          ErrorCode = "HUNT_TIMEOUT"
	ErrCodeHuntTransportFailure ErrorCode = "HUNT_TRANSPORT_FAILURE"
	ErrCodeHuntCancelled        ErrorCode = "HUNT_CANCELLED"
	ErrCodeHuntBusy             ErrorCode = "HUNT_BUSY"

	ErrCodeLeadPersistenceFailed ErrorCode = "LEAD_PERSISTENCE_FAILED"
	ErrCodeDuplicateLead         ErrorCode = "DUPLICATE_LEAD"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"

	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As extracts a *StandardError from anywhere in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or ErrCodeInternal when err carries none.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// ==========================
// 3. Error Constructors
// ==========================

// NewHuntUnavailableError reports a hunt attempted with no provider keys.
func NewHuntUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntUnavailable,
		Message:   "no search keys configured",
		Details:   "the key pool is empty; search is unavailable",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewHuntQuotaExceededError() *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntQuotaExceeded,
		Message:   "search quota exceeded, try again later",
		Details:   "provider answered 429",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewHuntProviderError(statusCode int) *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntProviderError,
		Message:   fmt.Sprintf("search provider error: %d", statusCode),
		Details:   fmt.Sprintf("statusCode: %d", statusCode),
		Retryable: false,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
	}
}

func NewHuntTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntTimeout,
		Message:   "search timed out",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewHuntTransportFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntTransportFailure,
		Message:   fmt.Sprintf("search failed: %s", errDetails(err)),
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewHuntCancelledError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntCancelled,
		Message:   "hunt cancelled before the search was sent",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewHuntBusyError reports a background dispatcher at capacity.
func NewHuntBusyError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeHuntBusy,
		Message:   "too many hunts in progress",
		Details:   fmt.Sprintf("maxConcurrentHunts: %d", limit),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLeadPersistenceFailedError wraps a failed lead insert. It never ends a hunt.
func NewLeadPersistenceFailedError(phone string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLeadPersistenceFailed,
		Message:   "lead could not be stored",
		Details:   fmt.Sprintf("phone: %s, error: %s", phone, errDetails(err)),
		Retryable: false,
		Metadata:  map[string]interface{}{"phone": phone},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDuplicateLeadError(phone, source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateLead,
		Message:   "lead already recorded",
		Details:   fmt.Sprintf("phone: %s, source: %s", phone, source),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewEngineUnavailableError wraps a failed call to the Zeebe gateway.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineUnavailable,
		Message:   "Workflow engine unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInputValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled on
// BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeHuntUnavailable:          "HUNT_UNAVAILABLE",
	ErrCodeHuntQuotaExceeded:        "HUNT_QUOTA_EXCEEDED",
	ErrCodeHuntProviderError:        "HUNT_PROVIDER_ERROR",
	ErrCodeHuntTimeout:              "HUNT_TIMEOUT",
	ErrCodeHuntTransportFailure:     "HUNT_TRANSPORT_FAILURE",
	ErrCodeHuntCancelled:            "HUNT_CANCELLED",
	ErrCodeHuntBusy:                 "HUNT_BUSY",
	ErrCodeLeadPersistenceFailed:    "LEAD_PERSISTENCE_FAILED",
	ErrCodeDuplicateLead:            "DUPLICATE_LEAD",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeInputValidationFailed:    "INPUT_VALIDATION_FAILED",
}

// GetRetryCount returns the job retry budget for a code. Hunt failures are
// never retried: a retry would spend another provider request.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed:
		return 3
	case ErrCodeHuntBusy:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsHuntFailure reports whether code ends a hunt early.
func IsHuntFailure(code ErrorCode) bool {
	return strings.HasPrefix(string(code), "HUNT_")
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "HUNT_"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "LEAD_") || strings.Contains(codeStr, "DUPLICATE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
