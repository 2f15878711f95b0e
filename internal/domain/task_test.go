package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateHashID(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 12, 30, 0, 123456789, time.UTC)
	id := GenerateHashID(42, "Buy milk", at)

	sum := sha256.Sum256([]byte("42:Buy milk:2024-01-01T12:30:00.123456789Z"))
	want := hex.EncodeToString(sum[:])

	if id != want {
		t.Errorf("Expected %s, got %s", want, id)
	}
	if len(id) != HashIDLength {
		t.Errorf("Expected length %d, got %d", HashIDLength, len(id))
	}
	if !IsValidHashID(id) {
		t.Errorf("Expected generated ID to be valid: %s", id)
	}

	// Any change in input yields a different ID
	if GenerateHashID(43, "Buy milk", at) == id {
		t.Error("Expected different IDs for different users")
	}
	if GenerateHashID(42, "Buy bread", at) == id {
		t.Error("Expected different IDs for different identifiers")
	}
	if GenerateHashID(42, "Buy milk", at.Add(time.Nanosecond)) == id {
		t.Error("Expected different IDs for different timestamps")
	}
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewTask(7, "Write report", "quarterly numbers", due)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !IsValidHashID(task.ID) {
		t.Errorf("Expected valid hash ID, got %q", task.ID)
	}
	if task.UserID != 7 {
		t.Errorf("Expected user ID 7, got %d", task.UserID)
	}
	if task.IsCompleted || task.NotificationSent {
		t.Error("Expected new task to be incomplete and not notified")
	}
	if !task.DueDate.Equal(due) {
		t.Errorf("Expected due date %v, got %v", due, task.DueDate)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	_, err = NewTask(7, "   ", "", due)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}

	_, err = NewTask(0, "title", "", due)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := Task{
		ID:      GenerateHashID(1, "t", time.Unix(0, 0)),
		UserID:  1,
		Title:   "t",
		DueDate: time.Unix(1700000000, 0),
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{"valid", func(*Task) {}, nil},
		{"short id", func(t *Task) { t.ID = "abc" }, ErrInvalidID},
		{"uppercase id", func(t *Task) { t.ID = strings.ToUpper(t.ID) }, ErrInvalidID},
		{"zero user", func(t *Task) { t.UserID = 0 }, ErrValidation},
		{"empty title", func(t *Task) { t.Title = "" }, ErrEmptyTitle},
		{"long title", func(t *Task) { t.Title = strings.Repeat("я", MaxTitleLength+1) }, ErrTitleTooLong},
		{"max title", func(t *Task) { t.Title = strings.Repeat("я", MaxTitleLength) }, nil},
		{"no due date", func(t *Task) { t.DueDate = time.Time{} }, ErrMissingDueDate},
		{"bad category", func(t *Task) { t.CategoryIDs = []string{"nope"} }, ErrInvalidID},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := valid
			tc.mutate(&task)
			err := task.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTaskIsDue(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := due.Add(5 * time.Minute)

	tests := []struct {
		name string
		task Task
		now  time.Time
		want bool
	}{
		{"past due", Task{DueDate: due}, now, true},
		{"exactly due", Task{DueDate: due}, due, true},
		{"not yet due", Task{DueDate: now.Add(time.Second)}, now, false},
		{"completed", Task{DueDate: due, IsCompleted: true}, now, false},
		{"already notified", Task{DueDate: due, NotificationSent: true}, now, false},
	}

	for _, tc := range tests {
		if got := tc.task.IsDue(tc.now); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestMessagingIdentityValidate(t *testing.T) {
	t.Parallel()

	if err := (MessagingIdentity{UserID: 1, TelegramID: 555}).Validate(); err != nil {
		t.Errorf("Expected valid identity, got %v", err)
	}
	if err := (MessagingIdentity{UserID: 1}).Validate(); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("Expected ErrInvalidIdentity, got %v", err)
	}
	if err := (MessagingIdentity{TelegramID: 555}).Validate(); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("Expected ErrInvalidIdentity, got %v", err)
	}
}
