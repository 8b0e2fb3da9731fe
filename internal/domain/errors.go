package domain

import "fmt"

// ValidationError marks input that failed a domain invariant; the HTTP
// layer maps it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError marks a lookup that found nothing; the HTTP layer maps it
// to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ProviderUnavailableError marks a failure to reach an external embedding
// or LLM provider; the HTTP layer maps it to 500.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// NewProviderUnavailableError builds a ProviderUnavailableError.
func NewProviderUnavailableError(provider string, err error) error {
	return &ProviderUnavailableError{Provider: provider, Err: err}
}

// BackendInconsistencyError marks a detected mismatch between the
// relational metadata store and the vector store (e.g. a chunk row with no
// matching point, or vice versa); the HTTP layer maps it to 500.
type BackendInconsistencyError struct {
	Message string
}

func (e *BackendInconsistencyError) Error() string { return e.Message }

// NewBackendInconsistencyError builds a BackendInconsistencyError.
func NewBackendInconsistencyError(msg string) error {
	return &BackendInconsistencyError{Message: msg}
}

// DeadlineExceededError marks a use case that was cancelled or timed out;
// the HTTP layer maps it to a timeout status.
type DeadlineExceededError struct {
	Operation string
	Err       error
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("%s deadline exceeded: %v", e.Operation, e.Err)
}

func (e *DeadlineExceededError) Unwrap() error { return e.Err }

// NewDeadlineExceededError builds a DeadlineExceededError.
func NewDeadlineExceededError(operation string, err error) error {
	return &DeadlineExceededError{Operation: operation, Err: err}
}

// InternalError wraps anything else unexpected; the HTTP layer maps it to
// 500 without leaking details to the caller.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return fmt.Sprintf("internal error: %v", e.Err) }

func (e *InternalError) Unwrap() error { return e.Err }

// NewInternalError builds an InternalError.
func NewInternalError(err error) error {
	return &InternalError{Err: err}
}
