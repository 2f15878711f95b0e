package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters allowed in a task title.
const MaxTitleLength = 255

// HashIDLength is the length of identifiers produced by GenerateHashID.
const HashIDLength = 64

// Task represents a to-do item owned by a user.
// Only the notification pipeline mutates NotificationSent, and only from false to true.
type Task struct {
	ID               string    `json:"id"                db:"id"`
	UserID           int64     `json:"user_id"           db:"user_id"`
	Title            string    `json:"title"             db:"title"`
	Description      string    `json:"description"       db:"description"`
	DueDate          time.Time `json:"due_date"          db:"due_date"`
	IsCompleted      bool      `json:"is_completed"      db:"is_completed"`
	NotificationSent bool      `json:"notification_sent" db:"notification_sent"`
	CreatedAt        time.Time `json:"created_at"        db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"        db:"updated_at"`
	CategoryIDs      []string  `json:"category_ids,omitempty" db:"-"`
}

// GenerateHashID derives a 64-character hex identifier from the owning user,
// a caller-supplied identifier (the title for tasks) and a timestamp.
func GenerateHashID(userID int64, identifier string, at time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(userID, 10))
	b.WriteByte(':')
	b.WriteString(identifier)
	b.WriteByte(':')
	b.WriteString(at.Format(time.RFC3339Nano))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// NewTask creates a new, validated Task with a generated hash ID.
// New tasks are never completed and never notified.
func NewTask(userID int64, title, description string, dueDate time.Time, categoryIDs ...string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          GenerateHashID(userID, title, now),
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
		CategoryIDs: categoryIDs,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the Task has valid data.
func (t *Task) Validate() error {
	if !IsValidHashID(t.ID) {
		return fmt.Errorf("%w: task ID must be a %d-character hex string", ErrInvalidID, HashIDLength)
	}

	if t.UserID <= 0 {
		return fmt.Errorf("%w: user ID must be positive", ErrValidation)
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}

	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return fmt.Errorf("%w: %d characters max", ErrTitleTooLong, MaxTitleLength)
	}

	if t.DueDate.IsZero() {
		return ErrMissingDueDate
	}

	for _, id := range t.CategoryIDs {
		if !IsValidHashID(id) {
			return fmt.Errorf("%w: category ID %q", ErrInvalidID, id)
		}
	}

	return nil
}

// IsDue reports whether the task is eligible for a due-date notification at now.
func (t *Task) IsDue(now time.Time) bool {
	return !t.IsCompleted && !t.NotificationSent && !t.DueDate.After(now)
}

// IsValidHashID reports whether id has the shape produced by GenerateHashID.
func IsValidHashID(id string) bool {
	if len(id) != HashIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
