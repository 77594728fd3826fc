package query

import (
	"context"

	"github.com/goliatone/go-blog-session/core"
)

// SessionReader exposes the current session snapshot. Implemented by
// core.Manager.
type SessionReader interface {
	Session() core.Session
}

// ProfileReader fetches the signed-in user's profile from the backend.
// Implemented by the auth API client.
type ProfileReader interface {
	FetchProfile(ctx context.Context) (core.UserProfile, error)
}

type CurrentSessionQuery struct {
	reader SessionReader
}

func NewCurrentSessionQuery(reader SessionReader) *CurrentSessionQuery {
	return &CurrentSessionQuery{reader: reader}
}

func (q *CurrentSessionQuery) Query(ctx context.Context, msg CurrentSessionMessage) (core.Session, error) {
	if q == nil || q.reader == nil {
		return core.Session{}, queryDependencyError("query: session reader is required")
	}
	return q.reader.Session(), nil
}

type FetchProfileQuery struct {
	reader ProfileReader
}

func NewFetchProfileQuery(reader ProfileReader) *FetchProfileQuery {
	return &FetchProfileQuery{reader: reader}
}

func (q *FetchProfileQuery) Query(ctx context.Context, msg FetchProfileMessage) (core.UserProfile, error) {
	if q == nil || q.reader == nil {
		return core.UserProfile{}, queryDependencyError("query: profile reader is required")
	}
	return q.reader.FetchProfile(ctx)
}
