package analysis

import "fmt"

// ErrorKind classifies model-orchestration failures
type ErrorKind string

// Model failure kinds
const (
	// KindUnreachable means the backend could not be reached or errored
	KindUnreachable ErrorKind = "unreachable"
	// KindInvalidResponse means the response stayed malformed after the
	// corrective retry
	KindInvalidResponse ErrorKind = "invalid_response"
	// KindTimeout means the backend call exceeded its deadline
	KindTimeout ErrorKind = "timeout"
)

// ModelError represents a failure to obtain a valid analysis from the backend
type ModelError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("model error (%s): %s", e.Kind, e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}
