package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

var ErrLockHeld = errors.New("lock is held by another owner")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out expiring exclusive locks.
type Locker struct {
	pool *redis.Pool
}

func NewLocker(pool *redis.Pool) *Locker {
	return &Locker{pool: pool}
}

// Acquire takes key for ttl on behalf of token. ErrLockHeld is returned when
// someone else holds it. The returned func releases the lock.
func (l *Locker) Acquire(ctx context.Context, key, token string, ttl time.Duration) (func(context.Context) error, error) {
	conn, err := l.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("get redis conn: %w", err)
	}
	defer conn.Close()

	_, err = redis.String(conn.Do("SET", key, token, "NX", "PX", ttl.Milliseconds()))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("SET NX: %w", err)
	}

	release := func(ctx context.Context) error {
		conn, err := l.pool.GetContext(ctx)
		if err != nil {
			return fmt.Errorf("get redis conn: %w", err)
		}
		defer conn.Close()

		if _, err := releaseScript.Do(conn, key, token); err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		return nil
	}

	return release, nil
}
