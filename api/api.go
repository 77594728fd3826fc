// Package api holds typed relays over the session gateway for the blog
// backend's endpoint surface. Relays never read or write credentials; the
// gateway decorates every request with the current bearer token.
package api

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-blog-session/core"
)

// dispatch issues the request and converts non-2xx responses into error
// envelopes. Gateway errors (transport failures, credential rejections)
// pass through untouched.
func dispatch(ctx context.Context, d core.Dispatcher, req core.Request) (core.Response, error) {
	res, err := d.Dispatch(ctx, req)
	if err != nil {
		return res, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res, endpointError(req.Path, res.StatusCode, failureReason(res.Body))
	}
	return res, nil
}

// failureReason pulls a human-readable reason out of an error body. The
// backend is inconsistent about envelope shape, so a few common keys are
// tried before falling back to the raw body.
func failureReason(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	envelope := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}{}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if strings.TrimSpace(envelope.Message) != "" {
			return envelope.Message
		}
		if strings.TrimSpace(envelope.Error) != "" {
			return envelope.Error
		}
	}
	return trimmed
}

func decodeBody(body []byte, out any) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
