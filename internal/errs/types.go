package errs

import "strings"

// FieldError represents a field-level error.
// Example:
//
//	{ "field": "id", "error": "must be numeric" }
type FieldError struct {
	// Field is the request key the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRetry tells the client it may retry after Value seconds.
	ActionTypeRetry ActionType = "retry"
)

// Action describes an optional "what the client should do next" instruction.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the main custom error type for API responses.
//
// It is serialized directly to JSON by the global error handler.
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: when false, the error handler may replace Message in production.
//   - Errors: per-field errors (validation, not-found lookups).
//   - Details: extra machine-readable context, e.g. the conflicting user_id.
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors  []FieldError   `json:"errors"`
	Details map[string]any `json:"details,omitempty"`
	Action  *Action        `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError, regardless of code or status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithFieldErrors returns a copy of this HTTPError carrying the given field errors.
func (e *HTTPError) WithFieldErrors(fieldErrors ...FieldError) *HTTPError {
	cp := *e
	cp.Errors = append([]FieldError(nil), fieldErrors...)
	return &cp
}

// WithDetail returns a copy of this HTTPError with key set in Details.
func (e *HTTPError) WithDetail(key string, value any) *HTTPError {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
