package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// CredentialStore persists the single credential slot across process
// restarts. Implementations are idempotent and perform no validation of the
// record contents; that is the session manager's job. The session manager is
// the sole writer.
type CredentialStore interface {
	Read(ctx context.Context) (CredentialRecord, bool, error)
	Write(ctx context.Context, record CredentialRecord) error
	Clear(ctx context.Context) error
}

// CredentialCodec encodes a credential record into its persisted payload.
type CredentialCodec interface {
	Format() string
	Version() int
	Encode(record CredentialRecord) ([]byte, error)
	Decode(payload []byte) (CredentialRecord, error)
}

// Request is the gateway-level shape of an outbound call. Path is resolved
// against the configured base URL; the bearer token and request ID headers
// are attached by the gateway, never by callers.
type Request struct {
	Method   string
	Path     string
	Query    map[string]string
	Headers  map[string]string
	Body     []byte
	Timeout  time.Duration
	Metadata map[string]any
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportRequest is the wire-level request handed to a transport adapter.
// URL is absolute by the time it reaches the adapter.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Dispatcher is the sole channel through which remote calls are issued.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (Response, error)
}

// SessionBinding is what the gateway needs from the session manager: the
// token snapshot for request decoration and the forced-logout reaction to a
// credential rejection.
type SessionBinding interface {
	Token() string
	ForceLogout(ctx context.Context, reason string)
}

// AuthClient relays the session manager's own remote operations through the
// gateway. Implementations must not touch credentials directly.
type AuthClient interface {
	Login(ctx context.Context, credentials Credentials) (AuthResult, error)
	FetchProfile(ctx context.Context) (UserProfile, error)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (UserProfile, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
