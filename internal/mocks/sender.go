package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/todo-api/internal/domain"
)

// SentMessage records one delivered message.
type SentMessage struct {
	Identity domain.MessagingIdentity
	Text     string
}

// MockSender records messages and returns Err, or the result of SendFn when set.
type MockSender struct {
	SendFn func(ctx context.Context, identity domain.MessagingIdentity, text string) error
	Err    error

	mu   sync.Mutex
	Sent []SentMessage
}

// Send implements notify.Sender.
func (m *MockSender) Send(ctx context.Context, identity domain.MessagingIdentity, text string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentMessage{Identity: identity, Text: text})
	fn, err := m.SendFn, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, identity, text)
	}
	return err
}

// Messages returns a copy of the recorded messages.
func (m *MockSender) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.Sent...)
}
