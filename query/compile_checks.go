package query

import (
	"github.com/goliatone/go-blog-session/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[CurrentSessionMessage, core.Session]   = (*CurrentSessionQuery)(nil)
	_ gocmd.Querier[FetchProfileMessage, core.UserProfile] = (*FetchProfileQuery)(nil)
)
