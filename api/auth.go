package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-blog-session/core"
)

const (
	pathRegister      = "/regis"
	pathLogin         = "/login"
	pathProfile       = "/p"
	pathUpdateProfile = "/put"
	pathResetPassword = "/blogs"
)

// AuthAPI relays the account and identity endpoints. It implements
// core.AuthClient for the session manager and the account surface used by
// registration and password reset.
type AuthAPI struct {
	dispatcher core.Dispatcher
}

func NewAuthAPI(dispatcher core.Dispatcher) *AuthAPI {
	return &AuthAPI{dispatcher: dispatcher}
}

type loginResponse struct {
	Token string           `json:"token"`
	User  core.UserProfile `json:"user"`
}

func (a *AuthAPI) Login(ctx context.Context, credentials core.Credentials) (core.AuthResult, error) {
	if a == nil || a.dispatcher == nil {
		return core.AuthResult{}, fmt.Errorf("api: auth dispatcher is required")
	}
	body, err := json.Marshal(credentials)
	if err != nil {
		return core.AuthResult{}, fmt.Errorf("api: encode login request: %w", err)
	}

	res, err := dispatch(ctx, a.dispatcher, core.Request{
		Method: http.MethodPost,
		Path:   pathLogin,
		Body:   body,
	})
	if err != nil {
		return core.AuthResult{}, err
	}

	decoded := loginResponse{}
	if err := decodeBody(res.Body, &decoded); err != nil {
		return core.AuthResult{}, decodeError(pathLogin, err)
	}
	if strings.TrimSpace(decoded.Token) == "" {
		return core.AuthResult{}, decodeError(pathLogin, fmt.Errorf("response has no token"))
	}
	return core.AuthResult{Token: decoded.Token, User: decoded.User}, nil
}

func (a *AuthAPI) FetchProfile(ctx context.Context) (core.UserProfile, error) {
	if a == nil || a.dispatcher == nil {
		return core.UserProfile{}, fmt.Errorf("api: auth dispatcher is required")
	}
	res, err := dispatch(ctx, a.dispatcher, core.Request{
		Method: http.MethodGet,
		Path:   pathProfile,
	})
	if err != nil {
		return core.UserProfile{}, err
	}

	profile := core.UserProfile{}
	if err := decodeBody(res.Body, &profile); err != nil {
		return core.UserProfile{}, decodeError(pathProfile, err)
	}
	return profile, nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, patch core.ProfilePatch) (core.UserProfile, error) {
	if a == nil || a.dispatcher == nil {
		return core.UserProfile{}, fmt.Errorf("api: auth dispatcher is required")
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("api: encode profile patch: %w", err)
	}

	res, err := dispatch(ctx, a.dispatcher, core.Request{
		Method: http.MethodPut,
		Path:   pathUpdateProfile,
		Body:   body,
	})
	if err != nil {
		return core.UserProfile{}, err
	}

	// The backend does not reliably echo the profile back; fall back to the
	// patch fields so the caller's merge still applies them.
	profile := core.UserProfile{}
	if err := decodeBody(res.Body, &profile); err != nil || profile == (core.UserProfile{}) {
		return profileFromPatch(patch), nil
	}
	return profile, nil
}

// Register creates an account. A successful registration does not sign the
// user in; callers log in explicitly afterwards.
func (a *AuthAPI) Register(ctx context.Context, input core.RegistrationInput) error {
	if a == nil || a.dispatcher == nil {
		return fmt.Errorf("api: auth dispatcher is required")
	}
	if err := input.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("api: encode registration request: %w", err)
	}

	_, err = dispatch(ctx, a.dispatcher, core.Request{
		Method: http.MethodPost,
		Path:   pathRegister,
		Body:   body,
	})
	return err
}

// ResetPassword relays the password reset. The backend keys the reset off
// the authenticated identity; only the new password travels, as a query
// parameter.
func (a *AuthAPI) ResetPassword(ctx context.Context, newPassword string) error {
	if a == nil || a.dispatcher == nil {
		return fmt.Errorf("api: auth dispatcher is required")
	}
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("api: new password is required")
	}

	_, err := dispatch(ctx, a.dispatcher, core.Request{
		Method: http.MethodPatch,
		Path:   pathResetPassword,
		Query:  map[string]string{"pass": newPassword},
	})
	return err
}

func profileFromPatch(patch core.ProfilePatch) core.UserProfile {
	profile := core.UserProfile{}
	if patch.FullName != nil {
		profile.FullName = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		profile.PhoneNumber = *patch.PhoneNumber
	}
	if patch.PhotoURL != nil {
		profile.PhotoURL = *patch.PhotoURL
	}
	return profile
}
