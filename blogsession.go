package blogsession

import "github.com/goliatone/go-blog-session/core"

type Config = core.Config

type Option = core.Option

type Session = core.Session
type SessionStatus = core.SessionStatus
type UserProfile = core.UserProfile
type ProfilePatch = core.ProfilePatch
type Credentials = core.Credentials
type RegistrationInput = core.RegistrationInput
type CredentialRecord = core.CredentialRecord

type CredentialStore = core.CredentialStore
type CredentialCodec = core.CredentialCodec
type TransportAdapter = core.TransportAdapter
type Dispatcher = core.Dispatcher
type AuthClient = core.AuthClient
type MetricsRecorder = core.MetricsRecorder

type Request = core.Request
type Response = core.Response

const (
	SessionStatusResolving     = core.SessionStatusResolving
	SessionStatusAuthenticated = core.SessionStatusAuthenticated
	SessionStatusAnonymous     = core.SessionStatusAnonymous
)

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithCredentialStore   = core.WithCredentialStore
	WithCredentialCodec   = core.WithCredentialCodec
	WithTransport         = core.WithTransport
	WithAuthClient        = core.WithAuthClient
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}
