package blogsession

import (
	"fmt"

	blogcommand "github.com/goliatone/go-blog-session/command"
	blogquery "github.com/goliatone/go-blog-session/query"
)

// SessionService is the session-facing surface the command/query handlers
// need. Implemented by core.Manager.
type SessionService interface {
	blogcommand.MutatingSession
	blogquery.SessionReader
}

// AccountAPI is the account-facing surface. Implemented by api.AuthAPI.
type AccountAPI interface {
	blogcommand.AccountService
	blogquery.ProfileReader
}

type Commands struct {
	Login         *blogcommand.LoginCommand
	Register      *blogcommand.RegisterCommand
	Logout        *blogcommand.LogoutCommand
	UpdateProfile *blogcommand.UpdateProfileCommand
	ResetPassword *blogcommand.ResetPasswordCommand
}

type Queries struct {
	CurrentSession *blogquery.CurrentSessionQuery
	FetchProfile   *blogquery.FetchProfileQuery
}

// Facade exposes the session operations as go-command handlers for hosts
// that route everything through a message dispatcher.
type Facade struct {
	session  SessionService
	account  AccountAPI
	commands Commands
	queries  Queries
}

func NewFacade(session SessionService, account AccountAPI) (*Facade, error) {
	if session == nil {
		return nil, fmt.Errorf("blogsession: session service is required")
	}
	if account == nil {
		return nil, fmt.Errorf("blogsession: account api is required")
	}

	facade := &Facade{session: session, account: account}
	facade.commands = Commands{
		Login:         blogcommand.NewLoginCommand(session),
		Register:      blogcommand.NewRegisterCommand(account),
		Logout:        blogcommand.NewLogoutCommand(session),
		UpdateProfile: blogcommand.NewUpdateProfileCommand(session),
		ResetPassword: blogcommand.NewResetPasswordCommand(account),
	}
	facade.queries = Queries{
		CurrentSession: blogquery.NewCurrentSessionQuery(session),
		FetchProfile:   blogquery.NewFetchProfileQuery(account),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Session() SessionService {
	if f == nil {
		return nil
	}
	return f.session
}
