package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blog-session/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CredentialStore persists a single credential payload per named slot.
type CredentialStore struct {
	db    *bun.DB
	repo  repository.Repository[*credentialSlotRecord]
	codec core.CredentialCodec
	slot  string
}

func (s *CredentialStore) Read(ctx context.Context) (core.CredentialRecord, bool, error) {
	if s == nil || s.repo == nil {
		return core.CredentialRecord{}, false, fmt.Errorf("sqlstore: credential store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("slot", "=", s.slot),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.CredentialRecord{}, false, err
	}
	if len(records) == 0 {
		return core.CredentialRecord{}, false, nil
	}
	decoded, err := s.codec.Decode(records[0].Payload)
	if err != nil {
		return core.CredentialRecord{}, false, fmt.Errorf("sqlstore: decode credential slot %q: %w", s.slot, err)
	}
	return decoded, true, nil
}

func (s *CredentialStore) Write(ctx context.Context, record core.CredentialRecord) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	if strings.TrimSpace(record.Token) == "" {
		return fmt.Errorf("sqlstore: credential token is required")
	}
	payload, err := s.codec.Encode(record)
	if err != nil {
		return fmt.Errorf("sqlstore: encode credential slot %q: %w", s.slot, err)
	}
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, updateErr := tx.NewUpdate().
			Model((*credentialSlotRecord)(nil)).
			Set("payload = ?", payload).
			Set("payload_format = ?", s.codec.Format()).
			Set("payload_version = ?", s.codec.Version()).
			Set("updated_at = ?", now).
			Where("slot = ?", s.slot).
			Exec(ctx)
		if updateErr != nil {
			return updateErr
		}
		if affected, affectedErr := result.RowsAffected(); affectedErr == nil && affected > 0 {
			return nil
		}

		inserted := &credentialSlotRecord{
			ID:             uuid.NewString(),
			Slot:           s.slot,
			Payload:        payload,
			PayloadFormat:  s.codec.Format(),
			PayloadVersion: s.codec.Version(),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, createErr := s.repo.CreateTx(ctx, tx, inserted); createErr != nil {
			return createErr
		}
		return nil
	})
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*credentialSlotRecord)(nil)).
		Where("slot = ?", s.slot).
		Exec(ctx)
	return err
}
