package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Manager owns the session state machine. It is the single writer of the
// credential store and the gateway's source of truth for the dispatch token.
//
// Concurrent Bootstrap/Login calls are serialized by sequence numbers taken
// at dispatch time: a call may only apply its outcome if no call dispatched
// after it has already settled, so an earlier, slower response never
// overwrites a later, faster one.
type Manager struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	store           CredentialStore
	auth            AuthClient

	mu sync.Mutex
	// session is the public snapshot; it honors the token<->status invariant.
	session Session
	// dispatchToken is what the gateway attaches to outbound requests. It
	// diverges from session.Token only while Bootstrap validates a persisted
	// token: the snapshot stays resolving (no token), the wire carries the
	// tentative credential.
	dispatchToken    string
	nextSeq          uint64
	appliedSeq       uint64
	bootstrapStarted bool
}

func NewManager(cfg Config, options ...Option) (*Manager, error) {
	builder := clientBuilder{runtimeConfig: cfg}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("blog-session", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("blog-session"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}

	finalConfig, err := ResolveConfig(builder.configProvider, builder.optionsResolver, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.credentialStore == nil && builder.repositoryFactory != nil {
		if configurer, ok := builder.repositoryFactory.(CredentialStoreConfigurer); ok {
			configurer.ConfigureCredentialStore(finalConfig.CredentialSlot, builder.credentialCodec)
		}
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if storeProvider != nil {
				builder.credentialStore = storeProvider.CredentialStore()
			}
		} else if storeProvider, ok := builder.repositoryFactory.(StoreProvider); ok {
			builder.credentialStore = storeProvider.CredentialStore()
		}
	}
	if builder.credentialStore == nil {
		builder.credentialStore = NewMemoryCredentialStore()
	}
	if builder.authClient == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: auth client is required"))
	}

	return &Manager{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		store:           builder.credentialStore,
		auth:            builder.authClient,
		session:         Session{Status: SessionStatusResolving},
	}, nil
}

func (m *Manager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config
}

// Session returns a defensive snapshot of the latest settled state. Readers
// never observe a transition in progress.
func (m *Manager) Session() Session {
	if m == nil {
		return Session{Status: SessionStatusAnonymous}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Token is the gateway's per-dispatch token snapshot.
func (m *Manager) Token() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatchToken
}

// Bootstrap resolves the initial session exactly once per process. With no
// persisted record it lands anonymous without a network call; with a record
// it validates the token through a profile fetch and adopts or discards it.
// Repeat calls return the current snapshot untouched.
func (m *Manager) Bootstrap(ctx context.Context) (Session, error) {
	if m == nil {
		return Session{}, fmt.Errorf("core: session manager is not configured")
	}
	startedAt := time.Now().UTC()

	m.mu.Lock()
	if m.bootstrapStarted {
		snapshot := m.session.Clone()
		m.mu.Unlock()
		return snapshot, nil
	}
	m.bootstrapStarted = true
	m.nextSeq++
	seq := m.nextSeq
	m.mu.Unlock()

	record, present, err := m.store.Read(ctx)
	if err != nil {
		m.settle(ctx, seq, anonymousSession(), true)
		m.observe(ctx, startedAt, "bootstrap", err, map[string]any{"outcome": "store_read_failed"})
		return m.Session(), storeFailureError(err)
	}
	if !present {
		m.settle(ctx, seq, anonymousSession(), false)
		m.observe(ctx, startedAt, "bootstrap", nil, map[string]any{"outcome": "anonymous"})
		return m.Session(), nil
	}

	// Tentative credential: attached to the validation fetch while the
	// public snapshot stays resolving.
	m.mu.Lock()
	if m.session.Status == SessionStatusResolving {
		m.dispatchToken = record.Token
	}
	m.mu.Unlock()

	user, err := m.auth.FetchProfile(ctx)
	if err != nil {
		m.settle(ctx, seq, anonymousSession(), true)
		m.observe(ctx, startedAt, "bootstrap", err, map[string]any{"outcome": "token_rejected"})
		return m.Session(), m.mapError(err)
	}

	adopted := record.User.Merge(user)
	next := Session{
		Status: SessionStatusAuthenticated,
		User:   &adopted,
		Token:  record.Token,
	}
	m.settle(ctx, seq, next, true)
	m.observe(ctx, startedAt, "bootstrap", nil, map[string]any{"outcome": "authenticated", "user_id": adopted.ID})
	return m.Session(), nil
}

// Login relays credentials through the gateway and adopts the outcome under
// the last-settled-wins rule. A failed attempt mutates nothing but still
// counts as settled so it supersedes slower in-flight calls.
func (m *Manager) Login(ctx context.Context, credentials Credentials) (Session, error) {
	if m == nil {
		return Session{}, fmt.Errorf("core: session manager is not configured")
	}
	startedAt := time.Now().UTC()
	if err := credentials.Validate(); err != nil {
		return m.Session(), m.badInput(err)
	}

	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	m.mu.Unlock()

	result, err := m.auth.Login(ctx, credentials)
	if err != nil {
		m.settleUnchanged(seq)
		m.observe(ctx, startedAt, "login", err, nil)
		return m.Session(), m.mapError(err)
	}

	user := result.User
	next := Session{
		Status: SessionStatusAuthenticated,
		User:   &user,
		Token:  result.Token,
	}
	if err := m.settle(ctx, seq, next, true); err != nil {
		m.observe(ctx, startedAt, "login", err, nil)
		return m.Session(), m.mapError(err)
	}
	m.observe(ctx, startedAt, "login", nil, map[string]any{"user_id": user.ID})
	return m.Session(), nil
}

// Logout clears the credential store and lands anonymous unconditionally.
// Navigation afterwards is the caller's responsibility.
func (m *Manager) Logout(ctx context.Context) error {
	if m == nil {
		return fmt.Errorf("core: session manager is not configured")
	}
	startedAt := time.Now().UTC()

	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	m.mu.Unlock()

	err := m.settle(ctx, seq, anonymousSession(), true)
	m.observe(ctx, startedAt, "logout", err, nil)
	if err != nil {
		return m.mapError(err)
	}
	return nil
}

// ForceLogout is the gateway-triggered variant of Logout, driven by a
// credential rejection rather than user action. Idempotent when already
// anonymous; a late rejection from a stale request still lands here.
func (m *Manager) ForceLogout(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	startedAt := time.Now().UTC()

	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	wasAnonymous := m.session.Status == SessionStatusAnonymous
	m.mu.Unlock()

	err := m.settle(ctx, seq, anonymousSession(), true)
	m.observe(ctx, startedAt, "forced_logout", err, map[string]any{
		"reason":         reason,
		"already_logged": wasAnonymous,
	})
}

// UpdateProfile relays the patch while authenticated and merges the returned
// fields into the cached user. A rejection never demotes the session; if the
// session changed while the call was in flight the result is returned but
// not applied.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) (UserProfile, error) {
	if m == nil {
		return UserProfile{}, fmt.Errorf("core: session manager is not configured")
	}
	startedAt := time.Now().UTC()
	if patch.Empty() {
		return UserProfile{}, m.badInput(fmt.Errorf("core: profile patch is empty"))
	}

	m.mu.Lock()
	if m.session.Status != SessionStatusAuthenticated {
		m.mu.Unlock()
		err := m.errorFactory("core: profile update requires an authenticated session", goerrors.CategoryAuth).
			WithTextCode(SessionErrorNotAuthenticated)
		return UserProfile{}, ensureSessionErrorEnvelope(err)
	}
	tokenAtDispatch := m.session.Token
	m.mu.Unlock()

	updated, err := m.auth.UpdateProfile(ctx, patch)
	if err != nil {
		m.observe(ctx, startedAt, "update_profile", err, nil)
		return UserProfile{}, m.mapError(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Status != SessionStatusAuthenticated || m.session.Token != tokenAtDispatch {
		// Session moved on while the update was in flight; the remote state
		// changed but this process no longer owns that identity.
		m.observe(ctx, startedAt, "update_profile", nil, map[string]any{"applied": false})
		return updated, nil
	}
	merged := m.session.User.Merge(updated)
	m.session.User = &merged
	if storeErr := m.store.Write(ctx, CredentialRecord{Token: m.session.Token, User: merged}); storeErr != nil {
		m.logError(ctx, "credential store write failed", map[string]any{"error": storeErr.Error()})
	}
	m.observe(ctx, startedAt, "update_profile", nil, map[string]any{"applied": true})
	return merged, nil
}

// settle applies an outcome if no later-dispatched call has settled first.
// Store writes happen inside the critical section so durable state stays in
// lockstep with the in-memory transition.
//
// A superseded outcome still applies while the machine sits in resolving:
// only bootstrap can leave that state, and a failed login that settled first
// mutates nothing, so discarding bootstrap's exit would strand the session.
func (m *Manager) settle(ctx context.Context, seq uint64, next Session, persist bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq <= m.appliedSeq && m.session.Status != SessionStatusResolving {
		return nil
	}
	if seq > m.appliedSeq {
		m.appliedSeq = seq
	}
	if err := m.session.TransitionTo(next); err != nil {
		return err
	}
	m.dispatchToken = next.Token
	if !persist {
		return nil
	}
	var storeErr error
	if next.Status == SessionStatusAuthenticated {
		storeErr = m.store.Write(ctx, CredentialRecord{Token: next.Token, User: *next.User})
	} else {
		storeErr = m.store.Clear(ctx)
	}
	if storeErr != nil {
		m.logError(ctx, "credential store update failed", map[string]any{"error": storeErr.Error()})
	}
	return nil
}

// settleUnchanged records a settled call without mutating state, so a failed
// attempt still supersedes older in-flight calls.
func (m *Manager) settleUnchanged(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq > m.appliedSeq {
		m.appliedSeq = seq
	}
}

func (m *Manager) badInput(err error) error {
	if err == nil {
		return nil
	}
	return ensureSessionErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryBadInput, "core: invalid input").
			WithTextCode(SessionErrorBadInput),
	)
}

func (m *Manager) mapError(err error) error {
	if err == nil {
		return nil
	}
	if m == nil || m.errorMapper == nil {
		return err
	}
	mapped := m.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func anonymousSession() Session {
	return Session{Status: SessionStatusAnonymous}
}

var _ SessionBinding = (*Manager)(nil)
