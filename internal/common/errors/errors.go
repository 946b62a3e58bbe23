// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidSymptoms ErrorCode = "INVALID_SYMPTOMS"
	ErrCodeInvalidRating   ErrorCode = "INVALID_RATING"
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"

	ErrCodeRatingStoreFailed  ErrorCode = "RATING_STORE_FAILED"
	ErrCodeProfileStoreFailed ErrorCode = "PROFILE_STORE_FAILED"

	ErrCodeAlertSendFailed ErrorCode = "ALERT_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
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

// NewInvalidSymptomsError is thrown when the symptom payload is missing or not an object.
func NewInvalidSymptomsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSymptoms,
		Message:   "Symptoms are required and must be an object",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRatingError covers missing doctor ids and ratings outside 1-5.
func NewInvalidRatingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRating,
		Message:   "Valid doctorId and rating (1-5) are required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRatingStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRatingStoreFailed,
		Message:   fmt.Sprintf("Rating store %s failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewProfileStoreFailedError(userID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileStoreFailed,
		Message:   "User profile store failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"userId": userID},
		Timestamp: time.Now().UTC(),
	}
}

func NewAlertSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertSendFailed,
		Message:   fmt.Sprintf("Failed to send %s alert", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidSymptoms:    "INVALID_SYMPTOMS",
	ErrCodeInvalidRating:      "INVALID_RATING",
	ErrCodeInvalidRequest:     "INVALID_REQUEST",
	ErrCodeRatingStoreFailed:  "RATING_STORE_FAILED",
	ErrCodeProfileStoreFailed: "PROFILE_STORE_FAILED",
	ErrCodeAlertSendFailed:    "ALERT_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRatingStoreFailed,
		ErrCodeProfileStoreFailed,
		ErrCodeAlertSendFailed:
		return 3

	default:
		return 0 // business errors are thrown, not retried
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

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "ALERT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
