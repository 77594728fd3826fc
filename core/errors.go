package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	SessionErrorBadInput           = "SESSION_BAD_INPUT"
	SessionErrorCredentialRejected = "SESSION_CREDENTIAL_REJECTED"
	SessionErrorNotAuthenticated   = "SESSION_NOT_AUTHENTICATED"
	SessionErrorLoginFailed        = "SESSION_LOGIN_FAILED"
	SessionErrorStoreFailed        = "SESSION_STORE_FAILED"
	SessionErrorTransport          = "SESSION_TRANSPORT_FAILED"
	SessionErrorInternal           = "SESSION_INTERNAL_ERROR"
)

// IsCredentialRejection reports whether err carries the gateway's
// authorization-failure envelope. Only these errors may demote a session.
func IsCredentialRejection(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryAuth
}

// sessionErrorMapper normalizes whatever reaches the manager or gateway into
// the session envelope. Callers classify failures where they happen (sentinel
// errors, typed envelopes at the emit site); the mapper never inspects
// message text.
func sessionErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureSessionErrorEnvelope(richErr)
	}

	if errors.Is(err, ErrInvalidSessionStatusTransition) || errors.Is(err, ErrSessionInvariantViolated) {
		return ensureSessionErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryInternal, "core: session state failure"),
		)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureSessionErrorEnvelope(mapped)
}

// storeFailureError builds the envelope for a credential store failure.
func storeFailureError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return ensureSessionErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryInternal, "core: credential store failure").
			WithTextCode(SessionErrorStoreFailed),
	)
}

func ensureSessionErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = sessionHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultSessionTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultSessionTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return SessionErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return SessionErrorCredentialRejected
	case goerrors.CategoryExternal:
		return SessionErrorTransport
	default:
		return SessionErrorInternal
	}
}

func sessionHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
