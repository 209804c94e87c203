package chatconnect

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrNotConfigured indicates the connector is missing credentials and no
	// call was attempted.
	ErrNotConfigured = errors.New("chatconnect: connector is not configured")

	// ErrInvalidRequest indicates the request shape was rejected by the
	// endpoint.
	ErrInvalidRequest = errors.New("chatconnect: invalid request")

	// ErrAuthFailed indicates the endpoint rejected the credentials.
	ErrAuthFailed = errors.New("chatconnect: authentication failed")

	// ErrUnknownModel indicates the requested model is not in the catalog.
	ErrUnknownModel = errors.New("chatconnect: unknown model")
)

// ErrorKind is the failure taxonomy for one generation call.
type ErrorKind string

// Known error kinds
const (
	// KindNotConfigured: credentials missing; assigned by the connector
	// before any call is attempted, never by Classify.
	KindNotConfigured ErrorKind = "not_configured"

	// KindValidation: the endpoint rejected the request shape.
	KindValidation ErrorKind = "validation_error"

	// KindAuth: the endpoint rejected the credentials.
	KindAuth ErrorKind = "auth_error"

	// KindTransient: a retryable network or service failure. Still fatal for
	// the call at hand; no automatic retry is performed.
	KindTransient ErrorKind = "transient_error"

	// KindUnknown: anything else.
	KindUnknown ErrorKind = "unknown"
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	return string(k)
}

// Severity returns the log severity for this kind. Every call-level failure
// is logged at error severity.
func (k ErrorKind) Severity() string {
	return "error"
}

// Fixed user-facing messages per kind. The raw error text is never shown to
// the end user; it goes to the structured log instead.
const (
	MsgNotConfigured = "Error: the connector is not configured. Please check your credentials."
	MsgValidation    = "Error: The request format was invalid. This may be due to model requirements or input formatting."
	MsgAuth          = "Error: Unable to authenticate with the provider. Please check your credentials."
	MsgTransient     = "Error: The service is temporarily unavailable. Please try again in a moment."
	MsgUnknown       = "Error: An unexpected error occurred. Please check logs for details."
)

// UserMessage returns the fixed user-facing message for an error kind.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindNotConfigured:
		return MsgNotConfigured
	case KindValidation:
		return MsgValidation
	case KindAuth:
		return MsgAuth
	case KindTransient:
		return MsgTransient
	default:
		return MsgUnknown
	}
}

// ClassifiedError is the result of mapping a raw failure into the taxonomy.
// Message is safe to show to an end user; the wrapped error carries the raw
// detail for logging and never reaches the user or exposes credentials.
type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Context map[string]interface{}
	Err     error
}

func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Markers the endpoint embeds in its error text. Matching on them is the
// contract the original service exposes; there is no structured error code
// on the streaming path.
const (
	markerValidation         = "ValidationException"
	markerAccessDenied       = "AccessDenied"
	markerUnrecognizedClient = "UnrecognizedClient"
)

// Classify maps a raw failure into the taxonomy. First match wins:
//
//  1. validation-error marker in the error text
//  2. access-denied or unrecognized-client marker
//  3. otherwise unknown
//
// KindNotConfigured is assigned by the connector before any call is
// attempted, not here. The supplied context is attached as-is; for
// validation errors callers typically include the first formatted message's
// role.
func Classify(err error, context map[string]interface{}) *ClassifiedError {
	if context == nil {
		context = map[string]interface{}{}
	}

	kind := KindUnknown
	text := ""
	if err != nil {
		text = err.Error()
	}

	switch {
	case strings.Contains(text, markerValidation), errors.Is(err, ErrInvalidRequest):
		kind = KindValidation
	case strings.Contains(text, markerAccessDenied), strings.Contains(text, markerUnrecognizedClient):
		kind = KindAuth
	}

	return &ClassifiedError{
		Kind:    kind,
		Message: UserMessage(kind),
		Context: context,
		Err:     err,
	}
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthFailed) {
		return true
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind == KindAuth
	}
	return false
}

// IsValidationError checks if an error indicates a rejected request shape.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidRequest) {
		return true
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind == KindValidation
	}
	return false
}

// IsNotConfigured checks if an error indicates missing credentials.
func IsNotConfigured(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return true
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind == KindNotConfigured
	}
	return false
}
