package redis

import (
	"context"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

const (
	maxIdle     = 4
	idleTimeout = 4 * time.Minute
)

// NewRedisPool accepts either host:port or a redis:// URL.
func NewRedisPool(logger *zap.SugaredLogger, url string) *redis.Pool {
	dial := func(ctx context.Context) (redis.Conn, error) {
		if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
			return redis.DialURL(url)
		}
		return redis.DialContext(ctx, "tcp", url)
	}

	pool := &redis.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: idleTimeout,
		Dial: func() (redis.Conn, error) {
			return dial(context.Background())
		},
		DialContext: dial,
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	closer.Bind(func() {
		if err := pool.Close(); err != nil {
			logger.Errorw("Failed closing redis pool", "err", err)
		}
	})

	return pool
}
