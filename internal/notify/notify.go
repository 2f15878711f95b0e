package notify

import (
	"context"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
)

// Sender delivers rendered text to a user's messaging identity.
// Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, identity domain.MessagingIdentity, text string) error
}

// SenderFunc adapts an ordinary function to the Sender interface.
type SenderFunc func(ctx context.Context, identity domain.MessagingIdentity, text string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, identity domain.MessagingIdentity, text string) error {
	return f(ctx, identity, text)
}

// Locker grants a time-limited lease shared by every process running sweeps.
type Locker interface {
	// Acquire returns acquired=false without error when another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// Recorder receives pipeline measurements.
type Recorder interface {
	ObserveOutcome(outcome Outcome)
	ObserveSweep(result SweepResult, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOutcome(Outcome)           {}
func (nopRecorder) ObserveSweep(SweepResult, error) {}

// Outcome classifies what happened to one task during a sweep.
type Outcome string

// Possible outcomes of processing a single due task.
const (
	OutcomeDelivered          Outcome = "delivered"
	OutcomeAlreadyNotified    Outcome = "skipped_already_notified"
	OutcomeNotFound           Outcome = "skipped_not_found"
	OutcomeIdentityUnresolved Outcome = "identity_unresolved"
	OutcomeDeliveryFailed     Outcome = "delivery_failed"
	OutcomeError              Outcome = "error"
)

// Skipped reports whether the outcome means another actor already handled the task.
func (o Outcome) Skipped() bool {
	return o == OutcomeAlreadyNotified || o == OutcomeNotFound
}

// Failed reports whether the outcome is a per-task failure.
func (o Outcome) Failed() bool {
	return o == OutcomeIdentityUnresolved || o == OutcomeDeliveryFailed || o == OutcomeError
}

// Result is the outcome of dispatching one task.
type Result struct {
	TaskID  string
	Outcome Outcome
	Err     error
}
