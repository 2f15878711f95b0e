package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

// PostgresIdentityStore resolves users to their linked Telegram accounts.
type PostgresIdentityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresIdentityStore creates a new PostgresIdentityStore.
func NewPostgresIdentityStore(db store.DBTX, logger *slog.Logger) *PostgresIdentityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresIdentityStore{
		db:     db,
		logger: logger.With(slog.String("component", "identity_store")),
	}
}

var _ store.IdentityStore = (*PostgresIdentityStore)(nil)

// ResolveIdentity implements store.IdentityResolver.
func (s *PostgresIdentityStore) ResolveIdentity(ctx context.Context, userID int64) (domain.MessagingIdentity, error) {
	var id domain.MessagingIdentity
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, telegram_id FROM telegram_profiles WHERE user_id = $1`, userID,
	).Scan(&id.UserID, &id.TelegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MessagingIdentity{}, store.ErrIdentityNotFound
		}
		return domain.MessagingIdentity{}, store.NewStoreError("identity", "resolve", "query failed", MapError(err))
	}
	return id, nil
}

// LinkTelegram implements store.IdentityStore.
func (s *PostgresIdentityStore) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO telegram_profiles (user_id, telegram_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET telegram_id = EXCLUDED.telegram_id`,
		userID, telegramID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, "", "telegram_profiles_telegram_id_key", store.ErrTelegramIDTaken)
		}
		return MapError(err)
	}

	log.Info("telegram account linked", slog.Int64("user_id", userID))
	return nil
}
