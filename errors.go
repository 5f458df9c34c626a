package authclient

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeTokenMalformed    = "TOKEN_MALFORMED"
	textCodeTokenExpired      = "TOKEN_EXPIRED"
	textCodeNoCredentials     = "NO_CREDENTIALS"
	textCodeConnectivity      = "SERVICE_UNREACHABLE"
	textCodeRejected          = "REQUEST_REJECTED"
	textCodeInvalidTransition = "INVALID_FLOW_TRANSITION"
	textCodeFlowClosed        = "FLOW_CLOSED"
	textCodeCallInFlight      = "CALL_IN_FLIGHT"
	textCodeFieldValidation   = "FIELD_VALIDATION"
)

// connectivityMessage is the one user-visible message for transport-level
// failures. Application rejections carry the server-supplied reason instead.
const connectivityMessage = "could not reach the server, check your connection"

// ErrTokenMalformed is returned when a token cannot be decoded.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when a decoded token is past its expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoCredentials is the local mapping of the backend's "no valid
// credentials" rejection (HTTP 401 or the structured marker). Callers that
// own the session translate it into a forced logout.
var ErrNoCredentials = goerrors.New("no valid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeNoCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidTransition is returned when a submit does not match the current
// wizard step.
var ErrInvalidTransition = goerrors.New("invalid auth flow transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrFlowClosed is returned when a submit (or a late remote response) arrives
// after the flow was cancelled or committed.
var ErrFlowClosed = goerrors.New("auth flow is closed", goerrors.CategoryConflict).
	WithTextCode(textCodeFlowClosed).
	WithCode(goerrors.CodeConflict)

// ErrCallInFlight is returned when a submit is issued while the previous
// step's remote call has not resolved yet.
var ErrCallInFlight = goerrors.New("a remote call is already in flight", goerrors.CategoryConflict).
	WithTextCode(textCodeCallInFlight).
	WithCode(goerrors.CodeConflict)

// ConnectivityError wraps a transport-level failure (no response at all) with
// the fixed generic message.
func ConnectivityError(err error, op string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, connectivityMessage).
		WithTextCode(textCodeConnectivity).
		WithMetadata(map[string]any{"op": op})
}

// RejectionError maps a well-formed non-success response. The reason is the
// server-supplied message when present, otherwise the caller's per-endpoint
// default.
func RejectionError(op, reason string, status int) *goerrors.Error {
	return goerrors.New(reason, goerrors.CategoryOperation).
		WithTextCode(textCodeRejected).
		WithMetadata(map[string]any{"op": op, "status": status})
}

// FieldError wraps a local validation failure. Field errors short-circuit
// before any remote call is made.
func FieldError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).
		WithTextCode(textCodeFieldValidation).
		WithCode(goerrors.CodeBadRequest)
}

// IsFieldError reports whether err is a local field-validation failure.
func IsFieldError(err error) bool {
	return hasTextCode(err, textCodeFieldValidation)
}

// IsConnectivityError reports whether err is a transport-level failure as
// opposed to an application rejection.
func IsConnectivityError(err error) bool {
	return hasTextCode(err, textCodeConnectivity)
}

// IsRejectionError reports whether err is an application-level rejection.
func IsRejectionError(err error) bool {
	return hasTextCode(err, textCodeRejected)
}

// IsNoCredentialsError reports whether err means the backend no longer
// accepts our credentials, locally or remotely detected.
func IsNoCredentialsError(err error) bool {
	if goerrors.Is(err, ErrNoCredentials) {
		return true
	}
	return hasTextCode(err, textCodeNoCredentials)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}
