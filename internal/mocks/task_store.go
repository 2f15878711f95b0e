package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore.
type MockTaskStore struct {
	// Custom behavior functions
	SelectDueUnnotifiedFn  func(ctx context.Context, now time.Time, page store.Page) ([]domain.Task, error)
	MarkNotificationSentFn func(ctx context.Context, id string, at time.Time) (*domain.Task, error)

	mu    sync.Mutex
	tasks map[string]domain.Task

	// Call tracking for verification
	SelectCalls int
	MarkCalls   []string
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a MockTaskStore seeded with tasks.
func NewMockTaskStore(tasks ...domain.Task) *MockTaskStore {
	m := &MockTaskStore{tasks: make(map[string]domain.Task, len(tasks))}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

// SelectDueUnnotified implements store.TaskStore.
func (m *MockTaskStore) SelectDueUnnotified(ctx context.Context, now time.Time, page store.Page) ([]domain.Task, error) {
	m.mu.Lock()
	m.SelectCalls++
	fn := m.SelectDueUnnotifiedFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, now, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var due []domain.Task
	for _, t := range m.tasks {
		if t.IsDue(now) && (page.After == nil || after(t, page.After)) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].DueDate.Equal(due[j].DueDate) {
			return due[i].ID < due[j].ID
		}
		return due[i].DueDate.Before(due[j].DueDate)
	})
	if page.Limit > 0 && len(due) > page.Limit {
		due = due[:page.Limit]
	}
	return due, nil
}

func after(t domain.Task, c *store.Cursor) bool {
	if t.DueDate.Equal(c.DueDate) {
		return t.ID > c.ID
	}
	return t.DueDate.After(c.DueDate)
}

// MarkNotificationSent implements store.TaskStore.
func (m *MockTaskStore) MarkNotificationSent(ctx context.Context, id string, at time.Time) (*domain.Task, error) {
	m.mu.Lock()
	m.MarkCalls = append(m.MarkCalls, id)
	fn := m.MarkNotificationSentFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id, at)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if t.NotificationSent {
		return nil, store.ErrAlreadyNotified
	}
	t.NotificationSent = true
	t.UpdatedAt = at
	m.tasks[id] = t
	return &t, nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	m.tasks[task.ID] = *task
	return nil
}

// Task returns the stored copy of a task.
func (m *MockTaskStore) Task(id string) (domain.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	return t, ok
}

// MarkCallCount returns the number of MarkNotificationSent calls.
func (m *MockTaskStore) MarkCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.MarkCalls)
}
