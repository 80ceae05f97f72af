package forecast

import "fmt"

// ValidationError reports a request the engine refuses to fit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, a ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, a...)}
}

// InternalError wraps a numerical failure during fit or predict.
// Callers should surface a generic message and log Err.
type InternalError struct {
	Model ModelType
	Op    string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Model, e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
