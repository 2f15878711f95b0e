package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyTitle is returned when a task has no title.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("task title too long")

	// ErrMissingDueDate is returned when a task has no due date.
	ErrMissingDueDate = errors.New("task due date is required")

	// ErrInvalidIdentity is returned when a messaging identity has no usable endpoint.
	ErrInvalidIdentity = errors.New("invalid messaging identity")

	// ErrEmptyMessage is returned when a rendered notification has no text.
	ErrEmptyMessage = errors.New("message cannot be empty")
)
