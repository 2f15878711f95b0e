package notify

import "errors"

// Pipeline errors. Store-level conditions (store.ErrTaskNotFound,
// store.ErrAlreadyNotified) pass through unchanged.
var (
	// ErrIdentityUnresolved means the task owner has no reachable messaging endpoint.
	ErrIdentityUnresolved = errors.New("messaging identity unresolved")

	// ErrDeliveryFailed wraps any error returned by a Sender.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrQueueClosed is returned when enqueuing after the queue was closed.
	ErrQueueClosed = errors.New("job queue is closed")

	// ErrSchedulerRunning is returned by Start on a scheduler that is already running.
	ErrSchedulerRunning = errors.New("scheduler already running")
)
