package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// MockIdentityResolver implements store.IdentityResolver from a fixed map.
type MockIdentityResolver struct {
	ResolveIdentityFn func(ctx context.Context, userID int64) (domain.MessagingIdentity, error)

	// TelegramIDs maps user IDs to telegram chat IDs.
	TelegramIDs map[int64]int64

	mu    sync.Mutex
	Calls []int64
}

var _ store.IdentityResolver = (*MockIdentityResolver)(nil)

// ResolveIdentity implements store.IdentityResolver.
func (m *MockIdentityResolver) ResolveIdentity(ctx context.Context, userID int64) (domain.MessagingIdentity, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, userID)
	m.mu.Unlock()

	if m.ResolveIdentityFn != nil {
		return m.ResolveIdentityFn(ctx, userID)
	}

	telegramID, ok := m.TelegramIDs[userID]
	if !ok {
		return domain.MessagingIdentity{}, store.ErrIdentityNotFound
	}
	return domain.MessagingIdentity{UserID: userID, TelegramID: telegramID}, nil
}

// CallCount returns the number of ResolveIdentity calls.
func (m *MockIdentityResolver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
