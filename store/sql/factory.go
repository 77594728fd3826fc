package sqlstore

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blog-session/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

const DefaultCredentialSlot = "default"

type RepositoryFactory struct {
	db    *bun.DB
	codec core.CredentialCodec
	slot  string

	credentialStore *CredentialStore
}

type FactoryOption func(*RepositoryFactory)

func WithCredentialSlot(slot string) FactoryOption {
	return func(f *RepositoryFactory) {
		f.slot = slot
	}
}

func WithCredentialCodec(codec core.CredentialCodec) FactoryOption {
	return func(f *RepositoryFactory) {
		f.codec = codec
	}
}

func NewRepositoryFactory(options ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{
		codec: core.JSONCredentialCodec{},
		slot:  DefaultCredentialSlot,
	}
	for _, option := range options {
		if option != nil {
			option(factory)
		}
	}
	if strings.TrimSpace(factory.slot) == "" {
		factory.slot = DefaultCredentialSlot
	}
	if factory.codec == nil {
		factory.codec = core.JSONCredentialCodec{}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, options ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(options...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, options ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(options...)
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// ConfigureCredentialStore adopts the session config's slot and codec before
// stores are built. A slot set explicitly through WithCredentialSlot wins
// over config; a non-nil codec always wins over the JSON default.
func (f *RepositoryFactory) ConfigureCredentialStore(slot string, codec core.CredentialCodec) {
	if f == nil || f.credentialStore != nil {
		return
	}
	if trimmed := strings.TrimSpace(slot); trimmed != "" && f.slot == DefaultCredentialSlot {
		f.slot = trimmed
	}
	if codec != nil {
		f.codec = codec
	}
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.credentialStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) CredentialStore() core.CredentialStore {
	if f == nil || f.credentialStore == nil {
		return nil
	}
	return f.credentialStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	credentialRepo := repository.NewRepository[*credentialSlotRecord](f.db, credentialSlotHandlers())
	if validator, ok := credentialRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("sqlstore: invalid credential repository wiring: %w", err)
		}
	}

	f.credentialStore = &CredentialStore{
		db:    f.db,
		repo:  credentialRepo,
		codec: f.codec,
		slot:  f.slot,
	}
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
