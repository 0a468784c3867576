package errorkit

import (
	"errors"
	"fmt"
	"time"
)

// PipelineError is the enhanced representation of a pipeline failure. Kind and
// Severity are assigned exactly once, when the raw error is first classified,
// and never mutated afterwards.
type PipelineError struct {
	Message  string
	Kind     ErrorKind
	Severity Severity
	Metadata map[string]interface{}
	Time     time.Time
	Err      error // underlying error if any
}

// Error implements the error interface for PipelineError.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Kind, e.Severity, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Kind, e.Severity, e.Message)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// WithContext records the operation context in the error metadata and returns
// the same error for chaining. Existing metadata keys are preserved.
func (e *PipelineError) WithContext(context string) *PipelineError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata["context"] = context
	return e
}

// NewPipelineError builds an enhanced error from a raw failure.
//
// Parameters:
//   - message: human readable error message
//   - kind: classified error kind
//   - severity: policy-assigned severity
//   - err: underlying error if any
func NewPipelineError(message string, kind ErrorKind, severity Severity, err error) *PipelineError {
	return &PipelineError{
		Message:  message,
		Kind:     kind,
		Severity: severity,
		Metadata: make(map[string]interface{}),
		Time:     time.Now(),
		Err:      err,
	}
}

// AsPipelineError returns the wrapped *PipelineError if err carries one.
// Used to guarantee a failure is classified at most once.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a PipelineError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	if pe, ok := AsPipelineError(err); ok {
		return pe.Kind == kind
	}
	return false
}
