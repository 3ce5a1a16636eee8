// Package errors provides the standardized error taxonomy for the match engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	ErrCodeCandidateScoringFailed ErrorCode = "CANDIDATE_SCORING_FAILED"
	ErrCodeSweepOpeningFailed     ErrorCode = "SWEEP_OPENING_FAILED"
	ErrCodeDatabaseQueryFailed    ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseUpsertFailed   ErrorCode = "DATABASE_UPSERT_FAILED"
)

// EngineError represents a structured application error.
type EngineError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("EngineError[%s]: %s", e.Code, e.Message)
}

// NewNotFoundError creates a non-retryable lookup error.
func NewNotFoundError(resource, id string) *EngineError {
	return &EngineError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable validation error.
func NewInvalidInputError(details string) *EngineError {
	return &EngineError{
		Code:      ErrCodeInvalidInput,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a non-retryable authorization error.
func NewForbiddenError(details string) *EngineError {
	return &EngineError{
		Code:      ErrCodeForbidden,
		Message:   "Actor is not a participant of this match",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCandidateScoringError creates a per-candidate scoring error. The batch
// generator logs and skips these, it never aborts the batch.
func NewCandidateScoringError(candidateID string, err error) *EngineError {
	return &EngineError{
		Code:      ErrCodeCandidateScoringFailed,
		Message:   "Candidate scoring failed",
		Details:   fmt.Sprintf("candidateId: %s, error: %s", candidateID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSweepOpeningError creates a per-opening sweep error, counted in the run summary.
func NewSweepOpeningError(openingID string, err error) *EngineError {
	return &EngineError{
		Code:      ErrCodeSweepOpeningFailed,
		Message:   "Opening sweep failed",
		Details:   fmt.Sprintf("openingId: %s, error: %s", openingID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryError creates a retryable query error.
func NewDatabaseQueryError(operation string, err error) *EngineError {
	return &EngineError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseUpsertError creates a retryable upsert error.
func NewDatabaseUpsertError(err error) *EngineError {
	return &EngineError{
		Code:      ErrCodeDatabaseUpsertFailed,
		Message:   "Match upsert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func codeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool { return codeOf(err) == ErrCodeNotFound }

// IsInvalidInput reports whether err carries the INVALID_INPUT code.
func IsInvalidInput(err error) bool { return codeOf(err) == ErrCodeInvalidInput }

// IsForbidden reports whether err carries the FORBIDDEN code.
func IsForbidden(err error) bool { return codeOf(err) == ErrCodeForbidden }

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Retryable
	}
	return false
}
