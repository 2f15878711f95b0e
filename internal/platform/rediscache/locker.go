package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// releaseScript deletes the lease only if the caller still holds it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Locker grants sweep leases with SET NX PX.
type Locker struct {
	client   Client
	newToken func() string
}

// NewLocker creates a Locker.
func NewLocker(client Client) *Locker {
	return &Locker{client: client, newToken: uuid.NewString}
}

// Acquire tries to take key for ttl. It satisfies notify.Locker.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lease %q: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lease %q: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}
