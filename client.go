// Package blogsession manages the client-side session lifecycle for the
// blog backend: durable credentials, an authorized request gateway, and
// the session state machine that ties them together.
package blogsession

import (
	"context"

	"github.com/goliatone/go-blog-session/api"
	"github.com/goliatone/go-blog-session/core"
	"github.com/goliatone/go-blog-session/transport"
)

// Client bundles the wired session stack: gateway, session manager, and
// the typed endpoint relays. Construction is two-phase under the hood;
// the gateway exists before the manager so the manager's own remote calls
// (login, profile fetch) travel through it like everything else.
type Client struct {
	config   Config
	gateway  *core.Gateway
	manager  *core.Manager
	auth     *api.AuthAPI
	blogs    *api.BlogAPI
	feedback *api.FeedbackAPI
	facade   *Facade
}

func New(cfg Config, opts ...Option) (*Client, error) {
	gatewayOpts := append(
		[]Option{WithTransport(transport.NewRESTAdapter(nil))},
		opts...,
	)
	gateway, err := core.NewGateway(cfg, gatewayOpts...)
	if err != nil {
		return nil, err
	}

	auth := api.NewAuthAPI(gateway)

	managerOpts := append([]Option{WithAuthClient(auth)}, opts...)
	manager, err := core.NewManager(cfg, managerOpts...)
	if err != nil {
		return nil, err
	}
	if err := gateway.BindSession(manager); err != nil {
		return nil, err
	}

	client := &Client{
		config:   manager.Config(),
		gateway:  gateway,
		manager:  manager,
		auth:     auth,
		blogs:    api.NewBlogAPI(gateway),
		feedback: api.NewFeedbackAPI(gateway),
	}
	facade, err := NewFacade(manager, auth)
	if err != nil {
		return nil, err
	}
	client.facade = facade
	return client, nil
}

// Setup builds the client and resolves the initial session from the
// credential store in one call.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	client, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := client.Bootstrap(ctx); err != nil {
		return client, err
	}
	return client, nil
}

func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

// Bootstrap resolves the initial session exactly once per process.
func (c *Client) Bootstrap(ctx context.Context) (Session, error) {
	return c.manager.Bootstrap(ctx)
}

// Session returns the latest settled session snapshot.
func (c *Client) Session() Session {
	if c == nil {
		return Session{Status: SessionStatusAnonymous}
	}
	return c.manager.Session()
}

func (c *Client) Login(ctx context.Context, credentials Credentials) (Session, error) {
	return c.manager.Login(ctx, credentials)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.manager.Logout(ctx)
}

func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (UserProfile, error) {
	return c.manager.UpdateProfile(ctx, patch)
}

func (c *Client) Register(ctx context.Context, input RegistrationInput) error {
	return c.auth.Register(ctx, input)
}

func (c *Client) ResetPassword(ctx context.Context, newPassword string) error {
	return c.auth.ResetPassword(ctx, newPassword)
}

func (c *Client) FetchProfile(ctx context.Context) (UserProfile, error) {
	return c.auth.FetchProfile(ctx)
}

// Dispatch issues an arbitrary authorized request through the gateway.
func (c *Client) Dispatch(ctx context.Context, req Request) (Response, error) {
	return c.gateway.Dispatch(ctx, req)
}

func (c *Client) Blogs() *api.BlogAPI {
	if c == nil {
		return nil
	}
	return c.blogs
}

func (c *Client) Feedback() *api.FeedbackAPI {
	if c == nil {
		return nil
	}
	return c.feedback
}

func (c *Client) Gateway() Dispatcher {
	if c == nil {
		return nil
	}
	return c.gateway
}

func (c *Client) Manager() *core.Manager {
	if c == nil {
		return nil
	}
	return c.manager
}

func (c *Client) Facade() *Facade {
	if c == nil {
		return nil
	}
	return c.facade
}
