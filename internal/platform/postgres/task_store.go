package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/redact"
	"github.com/phrazzld/todo-api/internal/store"
)

const taskColumns = `id, user_id, title, description, due_date, is_completed, notification_sent, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
// If logger is nil, slog.Default() is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore.
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a store that runs every query inside tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// SelectDueUnnotified implements store.TaskStore.
// Rows come back in (due_date, id) order for keyset paging.
func (s *PostgresTaskStore) SelectDueUnnotified(ctx context.Context, now time.Time, page store.Page) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE due_date <= $1 AND is_completed = FALSE AND notification_sent = FALSE`
	args := []any{now.UTC()}
	if page.After != nil {
		query += ` AND (due_date, id) > ($2, $3)`
		args = append(args, page.After.DueDate.UTC(), page.After.ID)
	}
	query += `
		ORDER BY due_date ASC, id ASC`
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due tasks", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "select_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, store.NewStoreError("task", "select_due", "scan failed", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "select_due", "row iteration failed", MapError(err))
	}

	log.Debug("selected due tasks", slog.Int("count", len(tasks)), slog.Time("now", now))
	return tasks, nil
}

// MarkNotificationSent implements store.TaskStore.
//
// The update is conditional on notification_sent = FALSE. Postgres re-checks
// the predicate after acquiring the row lock, so of two concurrent callers
// exactly one gets the row back.
func (s *PostgresTaskStore) MarkNotificationSent(ctx context.Context, id string, at time.Time) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("task_id", id))

	query := `UPDATE tasks
		SET notification_sent = TRUE, updated_at = $2
		WHERE id = $1 AND notification_sent = FALSE
		RETURNING ` + taskColumns

	var t domain.Task
	err := scanTask(s.db.QueryRowContext(ctx, query, id, at.UTC()), &t)
	if err == nil {
		log.Debug("notification flag set")
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to mark notification sent", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "mark_notified", "update failed", MapError(err))
	}

	exists, err := s.exists(ctx, id)
	if err != nil {
		return nil, store.NewStoreError("task", "mark_notified", "existence check failed", MapError(err))
	}
	if !exists {
		return nil, store.ErrTaskNotFound
	}
	return nil, store.ErrAlreadyNotified
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t domain.Task
	if err := scanTask(s.db.QueryRowContext(ctx, query, id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id FROM task_categories WHERE task_id = $1 ORDER BY category_id`, id)
	if err != nil {
		return nil, store.NewStoreError("task", "get", "category query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var categoryID string
		if err := rows.Scan(&categoryID); err != nil {
			return nil, store.NewStoreError("task", "get", "category scan failed", err)
		}
		t.CategoryIDs = append(t.CategoryIDs, categoryID)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "get", "category iteration failed", MapError(err))
	}

	return &t, nil
}

// Create implements store.TaskStore.
// When the store wraps a *sql.DB the task row and its category links are
// written in one transaction; a store returned by WithTx uses the caller's.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if beginner, ok := s.db.(store.TxBeginner); ok {
		return store.RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).insert(ctx, task)
		})
	}
	return s.insert(ctx, task)
}

func (s *PostgresTaskStore) insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate.UTC(),
		task.IsCompleted,
		task.NotificationSent,
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("task_id", task.ID),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}

	for _, categoryID := range task.CategoryIDs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO task_categories (task_id, category_id) VALUES ($1, $2)`,
			task.ID, categoryID,
		); err != nil {
			return MapError(err)
		}
	}

	log.Info("task created", slog.String("task_id", task.ID), slog.Int64("user_id", task.UserID))
	return nil
}

func (s *PostgresTaskStore) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, t *domain.Task) error {
	return row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&t.IsCompleted,
		&t.NotificationSent,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
