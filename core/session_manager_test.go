package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://backend.test"
	return cfg
}

func newTestManager(t *testing.T, store CredentialStore, auth AuthClient) *Manager {
	t.Helper()
	manager, err := NewManager(testConfig(),
		WithCredentialStore(store),
		WithAuthClient(auth),
	)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func assertSessionInvariant(t *testing.T, session Session) {
	t.Helper()
	if err := session.Validate(); err != nil {
		t.Fatalf("session invariant violated: %v", err)
	}
}

func TestManagerBootstrapEmptyStoreLandsAnonymous(t *testing.T) {
	store := NewMemoryCredentialStore()
	auth := &stubAuthClient{}
	manager := newTestManager(t, store, auth)

	if got := manager.Session().Status; got != SessionStatusResolving {
		t.Fatalf("expected resolving before bootstrap, got %q", got)
	}

	session, err := manager.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if session.Status != SessionStatusAnonymous {
		t.Fatalf("expected anonymous, got %q", session.Status)
	}
	if session.Token != "" {
		t.Fatalf("expected empty token, got %q", session.Token)
	}
	if auth.fetchCalls != 0 {
		t.Fatalf("expected no network calls, got %d", auth.fetchCalls)
	}
	assertSessionInvariant(t, session)
}

func TestManagerBootstrapAdoptsPersistedCredential(t *testing.T) {
	store := NewMemoryCredentialStore()
	record := CredentialRecord{
		Token: "persisted-token",
		User:  UserProfile{ID: "u1", FullName: "Pat Doe", Email: "pat@example.com"},
	}
	if err := store.Write(context.Background(), record); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	auth := &stubAuthClient{
		fetchProfile: func(context.Context) (UserProfile, error) {
			return UserProfile{ID: "u1", FullName: "Pat Doe", PhoneNumber: "555-0100"}, nil
		},
	}
	manager := newTestManager(t, store, auth)

	session, err := manager.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if session.Status != SessionStatusAuthenticated {
		t.Fatalf("expected authenticated, got %q", session.Status)
	}
	if session.Token != "persisted-token" {
		t.Fatalf("expected persisted token, got %q", session.Token)
	}
	if session.User == nil || session.User.PhoneNumber != "555-0100" {
		t.Fatalf("expected fetched fields merged into user, got %+v", session.User)
	}
	if session.User.Email != "pat@example.com" {
		t.Fatalf("expected persisted email kept, got %q", session.User.Email)
	}
	assertSessionInvariant(t, session)
}

func TestManagerBootstrapRejectedTokenClearsStore(t *testing.T) {
	store := NewMemoryCredentialStore()
	record := CredentialRecord{Token: "stale-token", User: UserProfile{ID: "u1"}}
	if err := store.Write(context.Background(), record); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	auth := &stubAuthClient{
		fetchProfile: func(context.Context) (UserProfile, error) {
			return UserProfile{}, goerrors.New("rejected", goerrors.CategoryAuth).
				WithTextCode(SessionErrorCredentialRejected)
		},
	}
	manager := newTestManager(t, store, auth)

	session, err := manager.Bootstrap(context.Background())
	if err == nil {
		t.Fatalf("expected bootstrap error for rejected token")
	}
	if !IsCredentialRejection(err) {
		t.Fatalf("expected credential rejection, got %v", err)
	}
	if session.Status != SessionStatusAnonymous {
		t.Fatalf("expected anonymous, got %q", session.Status)
	}
	if _, present, _ := store.Read(context.Background()); present {
		t.Fatalf("expected store cleared after rejected token")
	}
	assertSessionInvariant(t, session)
}

func TestManagerBootstrapRunsOnce(t *testing.T) {
	store := NewMemoryCredentialStore()
	if err := store.Write(context.Background(), CredentialRecord{
		Token: "token-1",
		User:  UserProfile{ID: "u1"},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	auth := &stubAuthClient{
		fetchProfile: func(context.Context) (UserProfile, error) {
			return UserProfile{ID: "u1"}, nil
		},
	}
	manager := newTestManager(t, store, auth)

	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if auth.fetchCalls != 1 {
		t.Fatalf("expected one validation fetch, got %d", auth.fetchCalls)
	}
}

func TestManagerBootstrapTokenAttachedWhileResolving(t *testing.T) {
	store := NewMemoryCredentialStore()
	if err := store.Write(context.Background(), CredentialRecord{
		Token: "tentative-token",
		User:  UserProfile{ID: "u1"},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	var manager *Manager
	var statusDuringFetch SessionStatus
	var tokenDuringFetch string
	auth := &stubAuthClient{
		fetchProfile: func(context.Context) (UserProfile, error) {
			statusDuringFetch = manager.Session().Status
			tokenDuringFetch = manager.Token()
			return UserProfile{ID: "u1"}, nil
		},
	}
	manager = newTestManager(t, store, auth)

	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if statusDuringFetch != SessionStatusResolving {
		t.Fatalf("expected resolving snapshot during validation, got %q", statusDuringFetch)
	}
	if tokenDuringFetch != "tentative-token" {
		t.Fatalf("expected tentative dispatch token, got %q", tokenDuringFetch)
	}
}

func TestManagerLoginPersistsCredential(t *testing.T) {
	store := NewMemoryCredentialStore()
	auth := &stubAuthClient{
		login: func(_ context.Context, credentials Credentials) (AuthResult, error) {
			return AuthResult{
				Token: "fresh-token",
				User:  UserProfile{ID: "u2", Email: credentials.Email},
			}, nil
		},
	}
	manager := newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	session, err := manager.Login(context.Background(), Credentials{
		Email:    "pat@example.com",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Status != SessionStatusAuthenticated || session.Token != "fresh-token" {
		t.Fatalf("unexpected session after login: %+v", session)
	}
	record, present, err := store.Read(context.Background())
	if err != nil || !present {
		t.Fatalf("expected persisted credential, present=%v err=%v", present, err)
	}
	if record.Token != "fresh-token" || record.User.ID != "u2" {
		t.Fatalf("unexpected persisted record: %+v", record)
	}
	if manager.Token() != "fresh-token" {
		t.Fatalf("expected dispatch token updated, got %q", manager.Token())
	}
	assertSessionInvariant(t, session)
}

func TestManagerLoginRejectsInvalidInput(t *testing.T) {
	auth := &stubAuthClient{}
	manager := newTestManager(t, NewMemoryCredentialStore(), auth)

	_, err := manager.Login(context.Background(), Credentials{Password: "x"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input envelope, got %v", err)
	}
	if auth.loginCalls != 0 {
		t.Fatalf("expected no login relay for invalid input, got %d", auth.loginCalls)
	}
}

func TestManagerLoginFailureKeepsSession(t *testing.T) {
	store := NewMemoryCredentialStore()
	auth := &stubAuthClient{
		login: func(context.Context, Credentials) (AuthResult, error) {
			return AuthResult{}, goerrors.New("bad credentials", goerrors.CategoryAuth).
				WithTextCode(SessionErrorCredentialRejected)
		},
	}
	manager := newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	session, err := manager.Login(context.Background(), Credentials{
		Email:    "pat@example.com",
		Password: "wrong",
	})
	if err == nil {
		t.Fatalf("expected login error")
	}
	if session.Status != SessionStatusAnonymous {
		t.Fatalf("expected session unchanged, got %q", session.Status)
	}
	if _, present, _ := store.Read(context.Background()); present {
		t.Fatalf("expected no credential persisted after failed login")
	}
}

func TestManagerLogoutClearsStore(t *testing.T) {
	store := NewMemoryCredentialStore()
	auth := &stubAuthClient{
		login: func(context.Context, Credentials) (AuthResult, error) {
			return AuthResult{Token: "t", User: UserProfile{ID: "u"}}, nil
		},
	}
	manager := newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := manager.Login(context.Background(), Credentials{Email: "a@b.c", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	session := manager.Session()
	if session.Status != SessionStatusAnonymous || session.Token != "" || session.User != nil {
		t.Fatalf("unexpected session after logout: %+v", session)
	}
	if _, present, _ := store.Read(context.Background()); present {
		t.Fatalf("expected store cleared after logout")
	}
	if manager.Token() != "" {
		t.Fatalf("expected dispatch token cleared, got %q", manager.Token())
	}
}

func TestManagerForceLogoutIsIdempotent(t *testing.T) {
	store := NewMemoryCredentialStore()
	auth := &stubAuthClient{
		login: func(context.Context, Credentials) (AuthResult, error) {
			return AuthResult{Token: "t", User: UserProfile{ID: "u"}}, nil
		},
	}
	manager := newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := manager.Login(context.Background(), Credentials{Email: "a@b.c", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	manager.ForceLogout(context.Background(), "credential rejected by /p")
	manager.ForceLogout(context.Background(), "credential rejected by /blogs")

	session := manager.Session()
	if session.Status != SessionStatusAnonymous {
		t.Fatalf("expected anonymous after forced logout, got %q", session.Status)
	}
	if _, present, _ := store.Read(context.Background()); present {
		t.Fatalf("expected store cleared after forced logout")
	}
}

func TestManagerUpdateProfileMergesAndPersists(t *testing.T) {
	store := NewMemoryCredentialStore()
	auth := &stubAuthClient{
		login: func(context.Context, Credentials) (AuthResult, error) {
			return AuthResult{
				Token: "t",
				User:  UserProfile{ID: "u", FullName: "Old Name", Email: "pat@example.com"},
			}, nil
		},
		updateProfile: func(_ context.Context, patch ProfilePatch) (UserProfile, error) {
			return UserProfile{FullName: *patch.FullName}, nil
		},
	}
	manager := newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := manager.Login(context.Background(), Credentials{Email: "a@b.c", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	name := "New Name"
	updated, err := manager.UpdateProfile(context.Background(), ProfilePatch{FullName: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != "New Name" {
		t.Fatalf("expected merged name, got %q", updated.FullName)
	}
	if updated.Email != "pat@example.com" {
		t.Fatalf("expected email untouched, got %q", updated.Email)
	}

	session := manager.Session()
	if session.Status != SessionStatusAuthenticated || session.Token != "t" {
		t.Fatalf("expected session status/token unchanged, got %+v", session)
	}
	if session.User == nil || session.User.FullName != "New Name" {
		t.Fatalf("expected cached user updated, got %+v", session.User)
	}
	record, present, _ := store.Read(context.Background())
	if !present || record.User.FullName != "New Name" {
		t.Fatalf("expected persisted user updated, got present=%v record=%+v", present, record)
	}
}

func TestManagerUpdateProfileRequiresAuthenticated(t *testing.T) {
	manager := newTestManager(t, NewMemoryCredentialStore(), &stubAuthClient{})
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	name := "x"
	_, err := manager.UpdateProfile(context.Background(), ProfilePatch{FullName: &name})
	if err == nil {
		t.Fatalf("expected error while anonymous")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != SessionErrorNotAuthenticated {
		t.Fatalf("expected not-authenticated envelope, got %v", err)
	}
}

func TestManagerUpdateProfileNotAppliedAfterLogout(t *testing.T) {
	store := NewMemoryCredentialStore()
	var manager *Manager
	auth := &stubAuthClient{
		login: func(context.Context, Credentials) (AuthResult, error) {
			return AuthResult{Token: "t", User: UserProfile{ID: "u", FullName: "Old"}}, nil
		},
		updateProfile: func(ctx context.Context, patch ProfilePatch) (UserProfile, error) {
			// Session moves on while the update is in flight.
			if err := manager.Logout(ctx); err != nil {
				return UserProfile{}, err
			}
			return UserProfile{FullName: *patch.FullName}, nil
		},
	}
	manager = newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := manager.Login(context.Background(), Credentials{Email: "a@b.c", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	name := "New"
	updated, err := manager.UpdateProfile(context.Background(), ProfilePatch{FullName: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != "New" {
		t.Fatalf("expected remote result returned, got %+v", updated)
	}
	session := manager.Session()
	if session.Status != SessionStatusAnonymous || session.User != nil {
		t.Fatalf("expected result not applied to logged-out session, got %+v", session)
	}
	if _, present, _ := store.Read(context.Background()); present {
		t.Fatalf("expected store to stay cleared")
	}
}

func TestManagerConcurrentLoginsLastSettledWins(t *testing.T) {
	store := NewMemoryCredentialStore()

	type gate struct {
		entered chan struct{}
		release chan struct{}
	}
	gates := map[string]*gate{
		"first@example.com":  {entered: make(chan struct{}), release: make(chan struct{})},
		"second@example.com": {entered: make(chan struct{}), release: make(chan struct{})},
	}
	auth := &stubAuthClient{
		login: func(_ context.Context, credentials Credentials) (AuthResult, error) {
			g := gates[credentials.Email]
			close(g.entered)
			<-g.release
			return AuthResult{
				Token: "token-" + credentials.Email,
				User:  UserProfile{ID: credentials.Email},
			}, nil
		},
	}
	manager := newTestManager(t, store, auth)
	if _, err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	var wg sync.WaitGroup
	runLogin := func(email string) {
		defer wg.Done()
		_, _ = manager.Login(context.Background(), Credentials{Email: email, Password: "p"})
	}

	wg.Add(2)
	go runLogin("first@example.com")
	<-gates["first@example.com"].entered
	go runLogin("second@example.com")
	<-gates["second@example.com"].entered

	// The later-dispatched login settles first and wins.
	close(gates["second@example.com"].release)
	waitForToken(t, manager, "token-second@example.com")

	// The earlier login settles afterwards; its outcome is discarded.
	close(gates["first@example.com"].release)
	wg.Wait()

	session := manager.Session()
	if session.Token != "token-second@example.com" {
		t.Fatalf("expected later-dispatched outcome to stand, got token %q", session.Token)
	}
	if session.User == nil || session.User.ID != "second@example.com" {
		t.Fatalf("expected matching user, got %+v", session.User)
	}
	record, present, _ := store.Read(context.Background())
	if !present || record.Token != "token-second@example.com" {
		t.Fatalf("expected winning credential persisted, got present=%v record=%+v", present, record)
	}
	assertSessionInvariant(t, session)
}

func TestManagerFailedLoginDuringBootstrapStillResolves(t *testing.T) {
	store := NewMemoryCredentialStore()
	if err := store.Write(context.Background(), CredentialRecord{
		Token: "persisted-token",
		User:  UserProfile{ID: "u1", Email: "pat@example.com"},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fetchEntered := make(chan struct{})
	fetchRelease := make(chan struct{})
	auth := &stubAuthClient{
		fetchProfile: func(context.Context) (UserProfile, error) {
			close(fetchEntered)
			<-fetchRelease
			return UserProfile{ID: "u1", FullName: "Pat Doe"}, nil
		},
		login: func(context.Context, Credentials) (AuthResult, error) {
			return AuthResult{}, goerrors.New("login rejected", goerrors.CategoryExternal)
		},
	}
	manager := newTestManager(t, store, auth)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := manager.Bootstrap(context.Background()); err != nil {
			t.Errorf("bootstrap: %v", err)
		}
	}()
	<-fetchEntered

	// A fast failing login settles while bootstrap is mid-validation. It
	// mutates nothing and must not block bootstrap's exit from resolving.
	if _, err := manager.Login(context.Background(), Credentials{Email: "pat@example.com", Password: "wrong"}); err == nil {
		t.Fatalf("expected login failure")
	}

	close(fetchRelease)
	wg.Wait()

	session := manager.Session()
	if session.Status != SessionStatusAuthenticated {
		t.Fatalf("expected bootstrap to complete, got %q", session.Status)
	}
	if session.Token != "persisted-token" {
		t.Fatalf("expected persisted token adopted, got %q", session.Token)
	}
	if manager.Token() != "persisted-token" {
		t.Fatalf("expected dispatch token settled, got %q", manager.Token())
	}
	assertSessionInvariant(t, session)
}

func TestManagerRequiresAuthClient(t *testing.T) {
	_, err := NewManager(testConfig(), WithCredentialStore(NewMemoryCredentialStore()))
	if err == nil {
		t.Fatalf("expected construction error without auth client")
	}
	if !strings.Contains(err.Error(), "auth client") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func waitForToken(t *testing.T, manager *Manager, token string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if manager.Session().Token == token {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never adopted token %q", token)
}

type stubAuthClient struct {
	mu            sync.Mutex
	loginCalls    int
	fetchCalls    int
	updateCalls   int
	login         func(ctx context.Context, credentials Credentials) (AuthResult, error)
	fetchProfile  func(ctx context.Context) (UserProfile, error)
	updateProfile func(ctx context.Context, patch ProfilePatch) (UserProfile, error)
}

func (s *stubAuthClient) Login(ctx context.Context, credentials Credentials) (AuthResult, error) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()
	if s.login == nil {
		return AuthResult{}, goerrors.New("login unavailable", goerrors.CategoryExternal)
	}
	return s.login(ctx, credentials)
}

func (s *stubAuthClient) FetchProfile(ctx context.Context) (UserProfile, error) {
	s.mu.Lock()
	s.fetchCalls++
	s.mu.Unlock()
	if s.fetchProfile == nil {
		return UserProfile{}, goerrors.New("profile unavailable", goerrors.CategoryExternal)
	}
	return s.fetchProfile(ctx)
}

func (s *stubAuthClient) UpdateProfile(ctx context.Context, patch ProfilePatch) (UserProfile, error) {
	s.mu.Lock()
	s.updateCalls++
	s.mu.Unlock()
	if s.updateProfile == nil {
		return UserProfile{}, goerrors.New("update unavailable", goerrors.CategoryExternal)
	}
	return s.updateProfile(ctx, patch)
}
