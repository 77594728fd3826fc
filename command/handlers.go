package command

import (
	"context"

	"github.com/goliatone/go-blog-session/core"
	gocmd "github.com/goliatone/go-command"
)

// MutatingSession covers the session transitions a command can trigger.
// Implemented by core.Manager.
type MutatingSession interface {
	Login(ctx context.Context, credentials core.Credentials) (core.Session, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch core.ProfilePatch) (core.UserProfile, error)
}

// AccountService covers account operations that do not touch the active
// session. Implemented by the auth API client.
type AccountService interface {
	Register(ctx context.Context, input core.RegistrationInput) error
	ResetPassword(ctx context.Context, newPassword string) error
}

type LoginCommand struct {
	session MutatingSession
}

func NewLoginCommand(session MutatingSession) *LoginCommand {
	return &LoginCommand{session: session}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.session == nil {
		return commandDependencyError("command: login session is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	out, err := c.session.Login(ctx, msg.Credentials)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterCommand struct {
	service AccountService
}

func NewRegisterCommand(service AccountService) *RegisterCommand {
	return &RegisterCommand{service: service}
}

func (c *RegisterCommand) Execute(ctx context.Context, msg RegisterMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	return c.service.Register(ctx, msg.Input)
}

type LogoutCommand struct {
	session MutatingSession
}

func NewLogoutCommand(session MutatingSession) *LogoutCommand {
	return &LogoutCommand{session: session}
}

func (c *LogoutCommand) Execute(ctx context.Context, msg LogoutMessage) error {
	if c == nil || c.session == nil {
		return commandDependencyError("command: logout session is required")
	}
	return c.session.Logout(ctx)
}

type UpdateProfileCommand struct {
	session MutatingSession
}

func NewUpdateProfileCommand(session MutatingSession) *UpdateProfileCommand {
	return &UpdateProfileCommand{session: session}
}

func (c *UpdateProfileCommand) Execute(ctx context.Context, msg UpdateProfileMessage) error {
	if c == nil || c.session == nil {
		return commandDependencyError("command: profile session is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	out, err := c.session.UpdateProfile(ctx, msg.Patch)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResetPasswordCommand struct {
	service AccountService
}

func NewResetPasswordCommand(service AccountService) *ResetPasswordCommand {
	return &ResetPasswordCommand{service: service}
}

func (c *ResetPasswordCommand) Execute(ctx context.Context, msg ResetPasswordMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	return c.service.ResetPassword(ctx, msg.NewPassword)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
