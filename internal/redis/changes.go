package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

const changesChannelPrefix = "calendar:changes:"

func changesChannel(workspaceID int64) string {
	return changesChannelPrefix + strconv.FormatInt(workspaceID, 10)
}

// Hub fans event changes out to every subscribed instance via redis pub/sub.
type Hub struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewHub(pool *redis.Pool, logger *zap.SugaredLogger) *Hub {
	return &Hub{pool: pool, logger: logger}
}

func (h *Hub) Publish(ctx context.Context, change *model.EventChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	conn, err := h.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", changesChannel(change.WorkspaceID), payload); err != nil {
		return fmt.Errorf("PUBLISH: %w", err)
	}

	return nil
}

// Subscribe delivers changes of one workspace until ctx is done or the
// returned cancel func is called. The channel is closed afterwards.
func (h *Hub) Subscribe(ctx context.Context, workspaceID int64) (<-chan model.EventChange, func(), error) {
	conn, err := h.pool.GetContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get redis conn: %w", err)
	}

	psc := redis.PubSubConn{Conn: conn}
	if err := psc.Subscribe(changesChannel(workspaceID)); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("SUBSCRIBE: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan model.EventChange)
	unsubscribed := make(chan struct{})

	// The watcher only writes and the reader only reads, so the conn never
	// has two concurrent receivers.
	go func() {
		defer close(unsubscribed)
		<-ctx.Done()
		if err := psc.Unsubscribe(); err != nil {
			h.logger.Debugw("UNSUBSCRIBE", "workspace_id", workspaceID, "err", err)
		}
	}()

	go func() {
		defer close(out)
		defer func() {
			cancel()
			<-unsubscribed
			conn.Close()
		}()

		for {
			switch v := psc.Receive().(type) {
			case redis.Message:
				var change model.EventChange
				if err := json.Unmarshal(v.Data, &change); err != nil {
					h.logger.Warnw("bad change payload", "channel", v.Channel, "err", err)
					continue
				}
				// after cancel keep draining until the unsubscribe reply
				select {
				case out <- change:
				case <-ctx.Done():
				}
			case redis.Subscription:
				if v.Count == 0 {
					return
				}
			case error:
				if ctx.Err() == nil {
					h.logger.Errorw("changes subscription failed", "workspace_id", workspaceID, "err", v)
				}
				return
			}
		}
	}()

	return out, cancel, nil
}
