package query

const (
	TypeCurrentSession = "blogsession.query.session.current"
	TypeFetchProfile   = "blogsession.query.profile.fetch"
)

type CurrentSessionMessage struct{}

func (CurrentSessionMessage) Type() string { return TypeCurrentSession }

func (CurrentSessionMessage) Validate() error { return nil }

type FetchProfileMessage struct{}

func (FetchProfileMessage) Type() string { return TypeFetchProfile }

func (FetchProfileMessage) Validate() error { return nil }
