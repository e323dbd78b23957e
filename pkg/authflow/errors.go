package authflow

import "fmt"

// ErrorKind classifies a failed flow outcome.
type ErrorKind string

const (
	KindMissingCode   ErrorKind = "missing_code"
	KindProviderError ErrorKind = "provider_error"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindTransport     ErrorKind = "transport"
	KindConfigError   ErrorKind = "config_error"
	KindInvalidState  ErrorKind = "invalid_state"
)

// FlowError is a domain outcome returned as a value. A failed
// authentication attempt must never take the serving process down, so
// nothing in this package panics on provider misbehavior.
type FlowError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

func (e FlowError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func missingCodeError() FlowError {
	return FlowError{Kind: KindMissingCode, Message: "callback received no authorization code"}
}

func providerError(code, message string) FlowError {
	return FlowError{Kind: KindProviderError, Code: code, Message: message}
}

func unauthorizedError(message string) FlowError {
	return FlowError{Kind: KindUnauthorized, Message: message}
}

func transportError(detail string) FlowError {
	return FlowError{Kind: KindTransport, Message: detail}
}

func configError(message string) FlowError {
	return FlowError{Kind: KindConfigError, Message: message}
}

func invalidStateError() FlowError {
	return FlowError{Kind: KindInvalidState, Message: "state token unknown, expired, or already used"}
}
