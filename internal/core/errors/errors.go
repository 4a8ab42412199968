package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Input validation
	ErrValidation          = errors.New("validation failed")
	ErrAlarmIDRequired     = errors.New("alarm ID is required")
	ErrInvalidService      = errors.New("invalid service")
	ErrInvalidImpact       = errors.New("invalid impact")
	ErrInvalidStatus       = errors.New("invalid ticket status")
	ErrInvalidNotification = errors.New("invalid notification status")
	ErrInvalidTimeRange    = errors.New("invalid time range")

	// Lookups
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAlarmNotFound    = errors.New("alarm not found")
	ErrCustomerNotFound = errors.New("customer not found")

	// Collaborators
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrPublishFailure        = errors.New("message publish failed")

	// Request handling
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError reports a request the handlers could not read at all.
// The result matches ErrBadRequest and the cause.
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrBadRequest, err),
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

// NewPublishFailureError hides the broker cause from clients. The cause stays
// reachable through Unwrap for logging.
func NewPublishFailureError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "The event could not be published. Please retry.",
		Code:       "PUBLISH_FAILED",
		StatusCode: 502,
	}
}

// NewInternalError reports a failure the client cannot act on, such as a
// recovered panic.
func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrInternal, err),
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// PublishFailure wraps a transport error so callers can match ErrPublishFailure
// while keeping the cause.
func PublishFailure(topic string, cause error) error {
	return fmt.Errorf("%w: topic %s: %w", ErrPublishFailure, topic, cause)
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
	causes []error
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

// NewFieldError is shorthand for a ValidationErrors with a single entry.
func NewFieldError(field, message string) *ValidationErrors {
	v := NewValidationErrors()
	v.Add(field, message)
	return v
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

// AddCause records a field failure that callers can match with errors.Is
// against the given sentinel.
func (v *ValidationErrors) AddCause(field, message string, cause error) {
	v.Add(field, message)
	v.causes = append(v.causes, cause)
}

// WithCause attaches a sentinel to every failure already recorded.
func (v *ValidationErrors) WithCause(cause error) *ValidationErrors {
	v.causes = append(v.causes, cause)
	return v
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}

// Is lets errors.Is(err, ErrValidation) match any field-level failure.
func (v *ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap exposes the attached sentinels, e.g. ErrInvalidImpact.
func (v *ValidationErrors) Unwrap() []error {
	return v.causes
}
