package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Gateway is the sole channel for remote calls. Outbound it decorates every
// request with the session manager's token snapshot; inbound it is the single
// detection point for credential rejection, invoking the manager's forced
// logout before the failure reaches the caller. All other responses pass
// through uninterpreted.
type Gateway struct {
	config          Config
	logger          Logger
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	transport       TransportAdapter

	mu      sync.RWMutex
	session SessionBinding
}

func NewGateway(cfg Config, options ...Option) (*Gateway, error) {
	builder := clientBuilder{runtimeConfig: cfg}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	_, logger := glog.Resolve("blog-session.gateway", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)

	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.transport == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: gateway requires a transport adapter"))
	}

	finalConfig, err := ResolveConfig(builder.configProvider, builder.optionsResolver, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Gateway{
		config:          finalConfig,
		logger:          logger,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		transport:       builder.transport,
	}, nil
}

// BindSession attaches the session manager after construction; the manager
// itself needs the gateway for its remote calls, so wiring is two-phase.
// Until bound, requests go out unauthenticated and rejections are only
// surfaced, not reacted to.
func (g *Gateway) BindSession(binding SessionBinding) error {
	if g == nil {
		return fmt.Errorf("core: gateway is not configured")
	}
	if binding == nil {
		return fmt.Errorf("core: session binding is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session != nil {
		return fmt.Errorf("core: gateway session is already bound")
	}
	g.session = binding
	return nil
}

func (g *Gateway) sessionBinding() SessionBinding {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Dispatch issues one remote call. The token snapshot is captured here, at
// dispatch time, so a logout mid-flight does not rewrite headers already on
// the wire.
func (g *Gateway) Dispatch(ctx context.Context, req Request) (Response, error) {
	if g == nil || g.transport == nil {
		return Response{}, goerrors.New("core: gateway is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(SessionErrorInternal)
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return Response{}, goerrors.New("core: request path is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(SessionErrorBadInput)
	}

	requestID := uuid.NewString()
	headers := make(map[string]string, len(req.Headers)+3)
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[key] = value
	}
	headers[requestIDHeader] = requestID
	if len(req.Body) > 0 {
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}

	var token string
	if binding := g.sessionBinding(); binding != nil {
		token = strings.TrimSpace(binding.Token())
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = g.config.RequestTimeout()
	}

	metadata := cloneFields(req.Metadata)
	metadata["request_id"] = requestID

	startedAt := time.Now().UTC()
	transportRes, err := g.transport.Do(ctx, TransportRequest{
		Method:               method,
		URL:                  joinURL(g.config.BaseURL, path),
		Headers:              headers,
		Query:                req.Query,
		Body:                 req.Body,
		Metadata:             metadata,
		Timeout:              timeout,
		MaxResponseBodyBytes: g.config.MaxResponseBodyBytes,
	})
	if err != nil {
		// Transport failures never demote the session.
		g.observeDispatch(ctx, startedAt, method, path, 0, err)
		return Response{}, g.mapError(err)
	}

	response := Response{
		StatusCode: transportRes.StatusCode,
		Headers:    transportRes.Headers,
		Body:       transportRes.Body,
		Metadata:   transportRes.Metadata,
	}

	if transportRes.StatusCode == http.StatusUnauthorized {
		if binding := g.sessionBinding(); binding != nil {
			binding.ForceLogout(ctx, "credential rejected by "+path)
		}
		rejection := goerrors.New("core: credential rejected by remote endpoint", goerrors.CategoryAuth).
			WithCode(http.StatusUnauthorized).
			WithTextCode(SessionErrorCredentialRejected).
			WithMetadata(map[string]any{
				"request_id": requestID,
				"path":       path,
			})
		g.observeDispatch(ctx, startedAt, method, path, transportRes.StatusCode, rejection)
		return response, rejection
	}

	g.observeDispatch(ctx, startedAt, method, path, transportRes.StatusCode, nil)
	return response, nil
}

func (g *Gateway) observeDispatch(
	ctx context.Context,
	startedAt time.Time,
	method string,
	path string,
	statusCode int,
	err error,
) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	tags := map[string]string{
		"method": method,
		"status": status,
	}
	if g.metricsRecorder != nil {
		g.metricsRecorder.IncCounter(ctx, "blogsession.dispatch.total", 1, tags)
		g.metricsRecorder.ObserveHistogram(ctx, "blogsession.dispatch.duration_ms",
			float64(time.Since(startedAt).Milliseconds()), tags)
	}
	if g.logger == nil {
		return
	}
	fields := map[string]any{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"duration_ms": time.Since(startedAt).Milliseconds(),
	}
	logger := g.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(fields)
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.Error("dispatch failed", flattenFields(fields)...)
		return
	}
	logger.Info("dispatch completed", flattenFields(fields)...)
}

func (g *Gateway) mapError(err error) error {
	if err == nil {
		return nil
	}
	if g == nil || g.errorMapper == nil {
		return err
	}
	mapped := g.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func joinURL(base string, path string) string {
	trimmedBase := strings.TrimRight(strings.TrimSpace(base), "/")
	trimmedPath := strings.TrimLeft(strings.TrimSpace(path), "/")
	if trimmedPath == "" {
		return trimmedBase
	}
	return trimmedBase + "/" + trimmedPath
}

var _ Dispatcher = (*Gateway)(nil)
