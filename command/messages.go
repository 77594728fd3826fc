package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blog-session/core"
)

const (
	TypeLogin         = "blogsession.command.login"
	TypeRegister      = "blogsession.command.register"
	TypeLogout        = "blogsession.command.logout"
	TypeUpdateProfile = "blogsession.command.profile.update"
	TypeResetPassword = "blogsession.command.password.reset"
)

type LoginMessage struct {
	Credentials core.Credentials
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if err := m.Credentials.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}

type RegisterMessage struct {
	Input core.RegistrationInput
}

func (RegisterMessage) Type() string { return TypeRegister }

func (m RegisterMessage) Validate() error {
	if err := m.Input.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }

type UpdateProfileMessage struct {
	Patch core.ProfilePatch
}

func (UpdateProfileMessage) Type() string { return TypeUpdateProfile }

func (m UpdateProfileMessage) Validate() error {
	if m.Patch.Empty() {
		return fmt.Errorf("command: profile patch has no fields")
	}
	return nil
}

type ResetPasswordMessage struct {
	NewPassword string
}

func (ResetPasswordMessage) Type() string { return TypeResetPassword }

func (m ResetPasswordMessage) Validate() error {
	if strings.TrimSpace(m.NewPassword) == "" {
		return fmt.Errorf("command: new password is required")
	}
	return nil
}
