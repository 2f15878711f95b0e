package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/todo-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestErrorHierarchy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		notFound   bool
		invalid    bool
		duplicate  bool
		wantString string
	}{
		{"task not found", store.ErrTaskNotFound, true, false, false, "entity not found: task"},
		{"identity not found", store.ErrIdentityNotFound, true, false, false, "entity not found: messaging identity"},
		{"already notified", store.ErrAlreadyNotified, false, true, false, "invalid entity state: notification already sent"},
		{"telegram id taken", store.ErrTelegramIDTaken, false, false, true, "entity already exists: telegram id"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("outer: %w", tc.err)
			assert.Equal(t, tc.notFound, store.IsNotFoundError(wrapped))
			assert.Equal(t, tc.invalid, errors.Is(wrapped, store.ErrInvalidState))
			assert.Equal(t, tc.duplicate, errors.Is(wrapped, store.ErrDuplicate))
			assert.Equal(t, tc.wantString, tc.err.Error())
		})
	}

	assert.False(t, errors.Is(store.ErrAlreadyNotified, store.ErrTaskNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection reset")
	err := store.NewStoreError("task", "select_due", "query failed", inner)

	assert.Equal(t, "select_due operation on task failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := store.NewStoreError("task", "mark", "no rows", nil)
	assert.Equal(t, "mark operation on task failed: no rows", bare.Error())
}
