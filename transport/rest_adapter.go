// Package transport carries gateway requests over the wire. The adapter owns
// wire mechanics only; token attachment and rejection handling live in the
// gateway, and timeouts and body limits arrive per request from its config.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-blog-session/core"
	goerrors "github.com/goliatone/go-errors"
)

const KindREST = "rest"

const defaultUserAgent = "go-blog-session/1.0"

// fallbackBodyLimit caps responses when the request carries no limit of its
// own. The gateway normally passes the configured limit.
const fallbackBodyLimit int64 = 4 << 20

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type RESTAdapter struct {
	client    HTTPDoer
	userAgent string
	bodyLimit int64
}

type AdapterOption func(*RESTAdapter)

func WithUserAgent(agent string) AdapterOption {
	return func(a *RESTAdapter) {
		if strings.TrimSpace(agent) != "" {
			a.userAgent = agent
		}
	}
}

func WithResponseBodyLimit(limit int64) AdapterOption {
	return func(a *RESTAdapter) {
		if limit > 0 {
			a.bodyLimit = limit
		}
	}
}

func NewRESTAdapter(client HTTPDoer, opts ...AdapterOption) *RESTAdapter {
	if client == nil {
		client = &http.Client{}
	}
	adapter := &RESTAdapter{
		client:    client,
		userAgent: defaultUserAgent,
		bodyLimit: fallbackBodyLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.client == nil {
		return core.TransportResponse{}, transportError(
			"transport: rest adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	httpReq, cancel, err := a.buildRequest(ctx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}
	defer cancel()

	startedAt := time.Now().UTC()
	httpRes, err := a.client.Do(httpReq)
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: request failed",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "method": httpReq.Method, "url": httpReq.URL.String()},
		)
	}
	defer httpRes.Body.Close()

	return a.collectResponse(httpRes, req.MaxResponseBodyBytes, startedAt)
}

// buildRequest turns a transport request into an *http.Request with the
// per-request timeout armed. The returned cancel func must run after the
// response body is consumed.
func (a *RESTAdapter) buildRequest(ctx context.Context, req core.TransportRequest) (*http.Request, context.CancelFunc, error) {
	target, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, nil, transportError(
			"transport: request needs an absolute url",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "url": req.URL},
		)
	}
	if len(req.Query) > 0 {
		values := target.Query()
		for key, value := range req.Query {
			if strings.TrimSpace(key) == "" {
				continue
			}
			values.Set(key, value)
		}
		target.RawQuery = values.Encode()
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	cancel := context.CancelFunc(func() {})
	if req.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		cancel()
		return nil, nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: build http request",
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "method": method, "url": target.String()},
		)
	}

	httpReq.Header.Set("User-Agent", a.userAgent)
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(key, value)
	}
	return httpReq, cancel, nil
}

func (a *RESTAdapter) collectResponse(httpRes *http.Response, requestLimit int64, startedAt time.Time) (core.TransportResponse, error) {
	limit := requestLimit
	if limit <= 0 {
		limit = a.bodyLimit
	}

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > limit {
		return core.TransportResponse{}, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "status_code": httpRes.StatusCode, "limit_bytes": limit},
		)
	}

	headers := make(map[string]string, len(httpRes.Header))
	for key := range httpRes.Header {
		headers[key] = httpRes.Header.Get(key)
	}
	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    headers,
		Body:       body,
		Metadata: map[string]any{
			"kind":        KindREST,
			"duration_ms": time.Since(startedAt).Milliseconds(),
		},
	}, nil
}

var _ core.TransportAdapter = (*RESTAdapter)(nil)
