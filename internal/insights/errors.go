package insights

import "fmt"

// UpstreamErrorCode represents specific model failure types.
type UpstreamErrorCode string

const (
	ErrNotConfigured   UpstreamErrorCode = "NOT_CONFIGURED"
	ErrRequestFailed   UpstreamErrorCode = "REQUEST_FAILED"
	ErrEmptyResponse   UpstreamErrorCode = "EMPTY_RESPONSE"
	ErrMalformedOutput UpstreamErrorCode = "MALFORMED_OUTPUT"
)

// UpstreamModelError describes a failed model interaction. It is logged and
// replaced by a fallback result; Generator methods never return it.
type UpstreamModelError struct {
	Code      UpstreamErrorCode
	Operation string
	Message   string
	Cause     error
}

func (e *UpstreamModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Operation, e.Message)
}

func (e *UpstreamModelError) Unwrap() error {
	return e.Cause
}
