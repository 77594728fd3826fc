package core

import (
	"context"
	"sync"
)

// MemoryCredentialStore keeps the credential slot in process memory. It is
// the default store for ephemeral clients and tests; durable clients use the
// bun-backed store in store/sql.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	record  CredentialRecord
	present bool
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Read(context.Context) (CredentialRecord, bool, error) {
	if s == nil {
		return CredentialRecord{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return CredentialRecord{}, false, nil
	}
	return s.record, true, nil
}

func (s *MemoryCredentialStore) Write(_ context.Context, record CredentialRecord) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record
	s.present = true
	return nil
}

func (s *MemoryCredentialStore) Clear(context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = CredentialRecord{}
	s.present = false
	return nil
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)
