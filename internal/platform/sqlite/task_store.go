package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

const taskColumns = `id, user_id, title, description, due_date, is_completed, notification_sent, created_at, updated_at`

type taskRow struct {
	ID               string `db:"id"`
	UserID           int64  `db:"user_id"`
	Title            string `db:"title"`
	Description      string `db:"description"`
	DueDate          string `db:"due_date"`
	IsCompleted      bool   `db:"is_completed"`
	NotificationSent bool   `db:"notification_sent"`
	CreatedAt        string `db:"created_at"`
	UpdatedAt        string `db:"updated_at"`
}

func (r taskRow) toDomain() (domain.Task, error) {
	t := domain.Task{
		ID:               r.ID,
		UserID:           r.UserID,
		Title:            r.Title,
		Description:      r.Description,
		IsCompleted:      r.IsCompleted,
		NotificationSent: r.NotificationSent,
	}
	var err error
	if t.DueDate, err = parseTime(r.DueDate); err != nil {
		return t, fmt.Errorf("parsing due_date: %w", err)
	}
	if t.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return t, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return t, fmt.Errorf("parsing updated_at: %w", err)
	}
	return t, nil
}

// TaskStore implements store.TaskStore on SQLite.
type TaskStore struct {
	db     *DB
	logger *slog.Logger
}

// NewTaskStore creates a TaskStore backed by db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db, logger: db.logger.With(slog.String("store", "task"))}
}

var _ store.TaskStore = (*TaskStore)(nil)

// SelectDueUnnotified implements store.TaskStore.
// Timestamps are stored in a fixed-width layout, so text order is time order.
func (s *TaskStore) SelectDueUnnotified(ctx context.Context, now time.Time, page store.Page) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date <= ? AND is_completed = 0 AND notification_sent = 0`
	args := []any{formatTime(now)}
	if page.After != nil {
		query += ` AND (due_date, id) > (?, ?)`
		args = append(args, formatTime(page.After.DueDate), page.After.ID)
	}
	query += ` ORDER BY due_date ASC, id ASC`
	if page.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, page.Limit)
	}

	var rows []taskRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		return nil, store.NewStoreError("task", "select_due", "query failed", err)
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, store.NewStoreError("task", "select_due", "decode failed", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// MarkNotificationSent implements store.TaskStore.
func (s *TaskStore) MarkNotificationSent(ctx context.Context, id string, at time.Time) (*domain.Task, error) {
	query := `UPDATE tasks SET notification_sent = 1, updated_at = ?
		WHERE id = ? AND notification_sent = 0
		RETURNING ` + taskColumns

	var r taskRow
	err := sqlx.GetContext(ctx, s.db, &r, query, formatTime(at), id)
	if err == nil {
		t, err := r.toDomain()
		if err != nil {
			return nil, store.NewStoreError("task", "mark_notified", "decode failed", err)
		}
		logger.FromContextOrDefault(ctx, s.logger).Debug("notification flag set", slog.String("task_id", id))
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, store.NewStoreError("task", "mark_notified", "update failed", mapError(err))
	}

	var exists bool
	if err := sqlx.GetContext(ctx, s.db, &exists, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)`, id); err != nil {
		return nil, store.NewStoreError("task", "mark_notified", "existence check failed", err)
	}
	if !exists {
		return nil, store.ErrTaskNotFound
	}
	return nil, store.ErrAlreadyNotified
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var r taskRow
	if err := sqlx.GetContext(ctx, s.db, &r, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "query failed", err)
	}

	t, err := r.toDomain()
	if err != nil {
		return nil, store.NewStoreError("task", "get", "decode failed", err)
	}

	if err := sqlx.SelectContext(ctx, s.db, &t.CategoryIDs,
		`SELECT category_id FROM task_categories WHERE task_id = ? ORDER BY category_id`, id); err != nil {
		return nil, store.NewStoreError("task", "get", "category query failed", err)
	}
	if len(t.CategoryIDs) == 0 {
		t.CategoryIDs = nil
	}

	return &t, nil
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.UserID, task.Title, task.Description, formatTime(task.DueDate),
			task.IsCompleted, task.NotificationSent, formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		for _, categoryID := range task.CategoryIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO task_categories (task_id, category_id) VALUES (?, ?)`, task.ID, categoryID,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// CreateCategory inserts a category row so tasks can link to it.
func (s *TaskStore) CreateCategory(ctx context.Context, userID int64, name string) (string, error) {
	id := domain.GenerateHashID(userID, name, time.Now().UTC())
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name) VALUES (?, ?, ?)`, id, userID, name,
	); err != nil {
		return "", mapError(err)
	}
	return id, nil
}
