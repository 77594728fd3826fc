package api

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-blog-session/core"
	goerrors "github.com/goliatone/go-errors"
)

func endpointError(path string, status int, reason string) error {
	message := fmt.Sprintf("api: %s returned %d", path, status)
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}

	category := goerrors.CategoryExternal
	textCode := core.SessionErrorTransport
	switch {
	case status == http.StatusUnauthorized:
		category = goerrors.CategoryAuth
		textCode = core.SessionErrorCredentialRejected
	case status == http.StatusNotFound:
		category = goerrors.CategoryNotFound
		textCode = core.SessionErrorTransport
	case status >= 400 && status < 500:
		category = goerrors.CategoryBadInput
		textCode = core.SessionErrorBadInput
	}

	return goerrors.New(message, category).
		WithCode(status).
		WithTextCode(textCode).
		WithMetadata(map[string]any{
			"path":   path,
			"status": status,
		})
}

func decodeError(path string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("api: decode %s response", path)).
		WithCode(http.StatusBadGateway).
		WithTextCode(core.SessionErrorTransport)
}
