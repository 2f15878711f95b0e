package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// IdentityStore implements store.IdentityStore on SQLite.
type IdentityStore struct {
	db *DB
}

// NewIdentityStore creates an IdentityStore backed by db.
func NewIdentityStore(db *DB) *IdentityStore {
	return &IdentityStore{db: db}
}

var _ store.IdentityStore = (*IdentityStore)(nil)

// ResolveIdentity implements store.IdentityResolver.
func (s *IdentityStore) ResolveIdentity(ctx context.Context, userID int64) (domain.MessagingIdentity, error) {
	var id domain.MessagingIdentity
	err := sqlx.GetContext(ctx, s.db, &id,
		`SELECT user_id, telegram_id FROM telegram_profiles WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MessagingIdentity{}, store.ErrIdentityNotFound
		}
		return domain.MessagingIdentity{}, store.NewStoreError("identity", "resolve", "query failed", err)
	}
	return id, nil
}

// LinkTelegram implements store.IdentityStore.
func (s *IdentityStore) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO telegram_profiles (user_id, telegram_id) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET telegram_id = excluded.telegram_id`,
		userID, telegramID,
	)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrDuplicate) {
			return fmt.Errorf("%w: %v", store.ErrTelegramIDTaken, err)
		}
		return mapped
	}
	return nil
}
