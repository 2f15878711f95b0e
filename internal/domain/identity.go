package domain

import "fmt"

// MessagingIdentity links an application user to the chat account that
// receives their notifications.
type MessagingIdentity struct {
	UserID     int64 `json:"user_id"     db:"user_id"`
	TelegramID int64 `json:"telegram_id" db:"telegram_id"`
}

// Validate checks that the identity can be used as a delivery target.
func (i MessagingIdentity) Validate() error {
	if i.UserID <= 0 {
		return fmt.Errorf("%w: user ID must be positive", ErrInvalidIdentity)
	}
	if i.TelegramID == 0 {
		return fmt.Errorf("%w: telegram ID is not set", ErrInvalidIdentity)
	}
	return nil
}
