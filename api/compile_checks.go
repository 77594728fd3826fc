package api

import "github.com/goliatone/go-blog-session/core"

var _ core.AuthClient = (*AuthAPI)(nil)
