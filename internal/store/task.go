package store

import (
	"context"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
)

// TaskStore defines the persistence operations the notification pipeline
// needs from the task repository.
type TaskStore interface {
	// SelectDueUnnotified returns tasks with due_date <= now that are neither
	// completed nor notified, ordered by (due_date, id) and starting strictly
	// after page.After when it is set. A page limit of 0 or less means no limit.
	// The call has no side effects and may run concurrently.
	SelectDueUnnotified(ctx context.Context, now time.Time, page Page) ([]domain.Task, error)

	// MarkNotificationSent atomically flips notification_sent from false to true
	// for one task and returns the updated task. Only notification_sent and
	// updated_at are written. Returns ErrTaskNotFound if the task does not exist
	// and ErrAlreadyNotified if the flag was already set; of two concurrent
	// calls for the same id exactly one succeeds.
	MarkNotificationSent(ctx context.Context, id string, at time.Time) (*domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Create validates and inserts a task together with its category links.
	Create(ctx context.Context, task *domain.Task) error
}

// Cursor is a keyset position in the (due_date, id) ordering of due tasks.
type Cursor struct {
	DueDate time.Time
	ID      string
}

// Page bounds one call to SelectDueUnnotified. The zero Page selects every
// due task.
type Page struct {
	Limit int
	After *Cursor
}

// CursorAfter returns the cursor that resumes a scan after t.
func CursorAfter(t domain.Task) *Cursor {
	return &Cursor{DueDate: t.DueDate, ID: t.ID}
}
