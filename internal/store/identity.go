package store

import (
	"context"

	"github.com/phrazzld/todo-api/internal/domain"
)

// IdentityResolver maps a user to the chat account that receives their notifications.
type IdentityResolver interface {
	// ResolveIdentity returns ErrIdentityNotFound if the user never linked an account.
	ResolveIdentity(ctx context.Context, userID int64) (domain.MessagingIdentity, error)
}

// IdentityStore extends IdentityResolver with the write used when a user links
// a chat account.
type IdentityStore interface {
	IdentityResolver

	// LinkTelegram creates or replaces the user's telegram link.
	// Returns ErrTelegramIDTaken if the telegram ID belongs to another user.
	LinkTelegram(ctx context.Context, userID, telegramID int64) error
}
