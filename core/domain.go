package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSessionStatus           = errors.New("core: invalid session status")
	ErrInvalidSessionStatusTransition = errors.New("core: invalid session status transition")
	ErrSessionInvariantViolated       = errors.New("core: session token/status invariant violated")
)

type SessionStatus string

const (
	// SessionStatusResolving is the initial status. It is entered exactly
	// once per process and left at most once.
	SessionStatusResolving SessionStatus = "resolving"

	SessionStatusAuthenticated SessionStatus = "authenticated"
	SessionStatusAnonymous     SessionStatus = "anonymous"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusResolving, SessionStatusAuthenticated, SessionStatusAnonymous:
		return true
	default:
		return false
	}
}

var sessionStatusTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusResolving: {SessionStatusAuthenticated, SessionStatusAnonymous},
	// authenticated->authenticated covers a login that replaces an existing
	// session under the last-settled-wins rule.
	SessionStatusAuthenticated: {SessionStatusAuthenticated, SessionStatusAnonymous},
	// anonymous->anonymous keeps forced logout idempotent.
	SessionStatusAnonymous: {SessionStatusAuthenticated, SessionStatusAnonymous},
}

func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UserProfile is the cached identity of the signed-in user. Email is not
// user-editable after registration; update relays never send it.
type UserProfile struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	// PhotoURL may hold an inline data-URL payload rather than an address.
	// Opaque to the session core beyond round-trip fidelity.
	PhotoURL string `json:"photoUrl"`
}

// Merge overlays the non-empty fields of other onto p. Email keeps its
// original value regardless of what the server echoed back.
func (p UserProfile) Merge(other UserProfile) UserProfile {
	merged := p
	if strings.TrimSpace(other.ID) != "" {
		merged.ID = other.ID
	}
	if strings.TrimSpace(other.FullName) != "" {
		merged.FullName = other.FullName
	}
	if strings.TrimSpace(other.PhoneNumber) != "" {
		merged.PhoneNumber = other.PhoneNumber
	}
	if strings.TrimSpace(other.PhotoURL) != "" {
		merged.PhotoURL = other.PhotoURL
	}
	return merged
}

// ProfilePatch carries the user-editable subset of the profile. Nil fields
// are omitted from the update relay.
type ProfilePatch struct {
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
}

func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.PhoneNumber == nil && p.PhotoURL == nil
}

// Session is the authoritative snapshot of authorization state.
// Token is non-empty if and only if Status is authenticated.
type Session struct {
	Status SessionStatus
	User   *UserProfile
	Token  string
}

func (s Session) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSessionStatus, s.Status)
	}
	authenticated := s.Status == SessionStatusAuthenticated
	if authenticated != (strings.TrimSpace(s.Token) != "") {
		return fmt.Errorf("%w: status %q with token %q", ErrSessionInvariantViolated, s.Status, redactToken(s.Token))
	}
	if authenticated && s.User == nil {
		return fmt.Errorf("%w: authenticated session without user", ErrSessionInvariantViolated)
	}
	if !authenticated && s.User != nil {
		return fmt.Errorf("%w: %q session with user", ErrSessionInvariantViolated, s.Status)
	}
	return nil
}

func (s Session) Authenticated() bool {
	return s.Status == SessionStatusAuthenticated
}

func (s Session) Clone() Session {
	cloned := s
	if s.User != nil {
		user := *s.User
		cloned.User = &user
	}
	return cloned
}

// TransitionTo replaces the session content after checking the status graph.
func (s *Session) TransitionTo(next Session) error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ErrInvalidSessionStatusTransition)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if !s.Status.CanTransitionTo(next.Status) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidSessionStatusTransition, s.Status, next.Status)
	}
	*s = next.Clone()
	return nil
}

// CredentialRecord is the durable mirror of an authenticated session. It is
// written whenever the session becomes authenticated or the profile is
// patched, and erased whenever the session becomes anonymous.
type CredentialRecord struct {
	Token string
	User  UserProfile
}

func (r CredentialRecord) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return fmt.Errorf("core: credential record requires a token")
	}
	return nil
}

// Credentials are the sign-in inputs relayed to the authentication endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("core: email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("core: password is required")
	}
	return nil
}

// RegistrationInput is relayed to the registration endpoint untouched by the
// session core; a successful registration does not sign the user in.
type RegistrationInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

func (r RegistrationInput) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("core: full name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("core: email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("core: password is required")
	}
	return nil
}

// AuthResult is what the authentication endpoint yields on success.
type AuthResult struct {
	Token string
	User  UserProfile
}

func redactToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
