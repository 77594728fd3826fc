package sqlstore

import "github.com/goliatone/go-blog-session/core"

var (
	_ core.CredentialStore           = (*CredentialStore)(nil)
	_ core.StoreProvider             = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory    = (*RepositoryFactory)(nil)
	_ core.CredentialStoreConfigurer = (*RepositoryFactory)(nil)
)
