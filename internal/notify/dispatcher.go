package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/redact"
	"github.com/phrazzld/todo-api/internal/store"
)

// DefaultSendTimeout bounds a single Sender call when no timeout is configured.
const DefaultSendTimeout = 10 * time.Second

// DispatcherConfig holds configuration for the Dispatcher.
type DispatcherConfig struct {
	// SendTimeout bounds each Sender call. Zero means DefaultSendTimeout.
	SendTimeout time.Duration

	// Now returns the time written as the task's updated_at when it is marked.
	// Nil means time.Now.
	Now func() time.Time
}

// Dispatcher processes a single due task: it resolves the owner's identity,
// marks the task as notified, renders the reminder and sends it.
type Dispatcher struct {
	tasks       store.TaskStore
	identities  store.IdentityResolver
	sender      Sender
	sendTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	tasks store.TaskStore,
	identities store.IdentityResolver,
	sender Sender,
	config DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultSendTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		tasks:       tasks,
		identities:  identities,
		sender:      sender,
		sendTimeout: config.SendTimeout,
		now:         config.Now,
		logger:      logger.With(slog.String("component", "notification_dispatcher")),
	}
}

// Process dispatches one task and reports the outcome. Every failure is
// reported in the Result.
//
// The identity is resolved before the task is marked; a task whose owner has
// no linked account stays eligible for the next sweep.
func (d *Dispatcher) Process(ctx context.Context, task domain.Task) Result {
	log := logger.FromContextOrDefault(ctx, d.logger).With(
		slog.String("task_id", task.ID),
		slog.Int64("user_id", task.UserID),
	)

	identity, err := d.identities.ResolveIdentity(ctx, task.UserID)
	if err == nil {
		err = identity.Validate()
	}
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) || errors.Is(err, domain.ErrInvalidIdentity) {
			log.Warn("no messaging identity for task owner, leaving task eligible",
				slog.String("error", redact.Error(err)))
			return Result{TaskID: task.ID, Outcome: OutcomeIdentityUnresolved, Err: fmt.Errorf("%w: %v", ErrIdentityUnresolved, err)}
		}
		log.Error("failed to resolve messaging identity", slog.String("error", redact.Error(err)))
		return Result{TaskID: task.ID, Outcome: OutcomeError, Err: err}
	}

	marked, err := d.tasks.MarkNotificationSent(ctx, task.ID, d.now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyNotified):
		log.Info("task already notified, skipping")
		return Result{TaskID: task.ID, Outcome: OutcomeAlreadyNotified, Err: err}
	case errors.Is(err, store.ErrTaskNotFound):
		log.Warn("task no longer exists, skipping")
		return Result{TaskID: task.ID, Outcome: OutcomeNotFound, Err: err}
	default:
		log.Error("failed to mark notification sent", slog.String("error", redact.Error(err)))
		return Result{TaskID: task.ID, Outcome: OutcomeError, Err: err}
	}

	text := domain.RenderMessage(marked)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Send(sendCtx, identity, text); err != nil {
		// The flag stays set: delivery is at-most-once.
		log.Error("notification delivery failed, task remains marked as notified",
			slog.String("error", redact.Error(err)),
			slog.Duration("elapsed", time.Since(start)))
		return Result{TaskID: task.ID, Outcome: OutcomeDeliveryFailed, Err: fmt.Errorf("%w: %w", ErrDeliveryFailed, err)}
	}

	log.Info("notification delivered", slog.Duration("elapsed", time.Since(start)))
	return Result{TaskID: task.ID, Outcome: OutcomeDelivered}
}
