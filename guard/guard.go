package guard

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog-session/core"
)

// Decision is the outcome of evaluating a session against a protected
// route.
type Decision string

const (
	// DecisionAllow admits the request.
	DecisionAllow Decision = "allow"
	// DecisionWait defers the request until the session resolves.
	DecisionWait Decision = "wait"
	// DecisionRedirect sends the caller to the sign-in route.
	DecisionRedirect Decision = "redirect"
)

// Evaluate maps a session snapshot to a routing decision. A resolving
// session never produces a verdict; the caller waits and re-evaluates
// once the session settles.
func Evaluate(session core.Session) Decision {
	switch session.Status {
	case core.SessionStatusAuthenticated:
		return DecisionAllow
	case core.SessionStatusResolving:
		return DecisionWait
	default:
		return DecisionRedirect
	}
}

// SessionReader supplies the session snapshot consulted on every request.
// Implemented by core.Manager.
type SessionReader interface {
	Session() core.Session
}

type sessionContextKey struct{}

// SessionFromContext returns the session snapshot the guard attached to
// an admitted request.
func SessionFromContext(ctx context.Context) (core.Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(core.Session)
	return session, ok
}

type guardOptions struct {
	signInPath   string
	retryAfter   int
	onUnresolved http.Handler
}

type Option func(*guardOptions)

// WithSignInPath overrides the redirect target for anonymous sessions.
func WithSignInPath(path string) Option {
	return func(o *guardOptions) {
		trimmed := strings.TrimSpace(path)
		if trimmed != "" {
			o.signInPath = trimmed
		}
	}
}

// WithRetryAfter sets the Retry-After seconds returned while the session
// is still resolving.
func WithRetryAfter(seconds int) Option {
	return func(o *guardOptions) {
		if seconds > 0 {
			o.retryAfter = seconds
		}
	}
}

// WithUnresolvedHandler replaces the default 503 response for resolving
// sessions, e.g. to render a loading page.
func WithUnresolvedHandler(handler http.Handler) Option {
	return func(o *guardOptions) {
		if handler != nil {
			o.onUnresolved = handler
		}
	}
}

// Guard returns middleware that admits, defers, or redirects requests
// based on the current session. A resolving session is never redirected;
// the request is answered 503 with Retry-After so the caller retries
// after bootstrap settles.
func Guard(reader SessionReader, opts ...Option) func(http.Handler) http.Handler {
	options := guardOptions{
		signInPath: "/login",
		retryAfter: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reader == nil {
				http.Redirect(w, r, options.signInPath, http.StatusFound)
				return
			}

			session := reader.Session()
			switch Evaluate(session) {
			case DecisionAllow:
				ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
				next.ServeHTTP(w, r.WithContext(ctx))
			case DecisionWait:
				if options.onUnresolved != nil {
					options.onUnresolved.ServeHTTP(w, r)
					return
				}
				w.Header().Set("Retry-After", strconv.Itoa(options.retryAfter))
				http.Error(w, "session resolving", http.StatusServiceUnavailable)
			default:
				http.Redirect(w, r, options.signInPath, http.StatusFound)
			}
		})
	}
}
