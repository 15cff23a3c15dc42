package errors

import "fmt"

// Application error types organized by category for better error handling

type ErrorType int

// Request/validation errors
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound

	// Upstream call outcomes - produced by the retry executor and the
	// circuit breaker; callers branch on these to decide whether a
	// failure is worth retrying or showing stale data for
	ErrorTypeCircuitOpen
	ErrorTypeTransient
	ErrorTypeRetriesExhausted
	ErrorTypeNonRetryable
	ErrorTypeNormalization

	// System errors
	ErrorTypeDatabase
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeCircuitOpen:
		return "CIRCUIT_OPEN_ERROR"
	case ErrorTypeTransient:
		return "TRANSIENT_ERROR"
	case ErrorTypeRetriesExhausted:
		return "RETRIES_EXHAUSTED_ERROR"
	case ErrorTypeNonRetryable:
		return "NON_RETRYABLE_ERROR"
	case ErrorTypeNormalization:
		return "NORMALIZATION_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrorTypeNotFound, message)
}

// NewCircuitOpenError signals that the breaker for an upstream is open
// and the call was rejected without any network attempt.
func NewCircuitOpenError(upstreamID string) *AppError {
	return New(ErrorTypeCircuitOpen, fmt.Sprintf("circuit open for upstream %q", upstreamID))
}

// NewTransientError marks a failure worth retrying: timeouts, network
// errors, 5xx responses and 429 rate limits.
func NewTransientError(message string, cause error) *AppError {
	return Wrap(ErrorTypeTransient, message, cause)
}

// NewRetriesExhaustedError wraps the last transient failure after all
// retry attempts were used up.
func NewRetriesExhaustedError(attempts int, cause error) *AppError {
	return Wrap(ErrorTypeRetriesExhausted, fmt.Sprintf("all %d attempts failed", attempts), cause)
}

// NewNonRetryableError marks a permanent upstream rejection (4xx other
// than 429); retrying would not help.
func NewNonRetryableError(message string, cause error) *AppError {
	return Wrap(ErrorTypeNonRetryable, message, cause)
}

// NewNormalizationError reports a 2xx payload of unexpected shape.
func NewNormalizationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeNormalization, message, cause)
}

func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(ErrorTypeDatabase, message, cause)
}

func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeConfiguration, message, cause)
}

// Helper functions for error type checking
func isType(err error, t ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == t
	}
	return false
}

func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

func IsCircuitOpenError(err error) bool {
	return isType(err, ErrorTypeCircuitOpen)
}

func IsTransientError(err error) bool {
	return isType(err, ErrorTypeTransient)
}

func IsRetriesExhaustedError(err error) bool {
	return isType(err, ErrorTypeRetriesExhausted)
}

func IsNonRetryableError(err error) bool {
	return isType(err, ErrorTypeNonRetryable)
}

func IsNormalizationError(err error) bool {
	return isType(err, ErrorTypeNormalization)
}

func IsDatabaseError(err error) bool {
	return isType(err, ErrorTypeDatabase)
}

func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}
