// Package realtime pushes notifications to live subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/notification"
)

const channelPrefix = "notifications."

// RedisBroker fans notifications out over redis pub/sub so every API
// instance can serve live streams regardless of which one stored the row.
type RedisBroker struct {
	client *redis.Client
	logger core.Logger
}

var _ notification.Broker = (*RedisBroker)(nil)

func NewRedisBroker(conf *core.Config, logger core.Logger) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}

	return &RedisBroker{client: client, logger: logger}, nil
}

func (b *RedisBroker) Close() error { return b.client.Close() }

func (b *RedisBroker) Publish(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "encoding notification")
	}
	if err = b.client.Publish(ctx, channelPrefix+n.UserID, payload).Err(); err != nil {
		return errors.Wrap(err, "publishing notification")
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (notification.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelPrefix+userID)

	// ensure the subscription is live before returning
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(err, "subscribing")
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     make(chan notification.Notification),
		done:   make(chan struct{}),
	}
	go sub.forward(pubsub.Channel(), b.logger)
	return sub, nil
}

type redisSubscription struct {
	pubsub    *redis.PubSub
	ch        chan notification.Notification
	done      chan struct{}
	closeOnce sync.Once
}

// forward decodes pub/sub payloads onto the subscription channel. The done
// channel unblocks a pending send once the consumer is gone; without it a
// message in flight at Close time would pin this goroutine forever.
func (s *redisSubscription) forward(msgs <-chan *redis.Message, logger core.Logger) {
	defer close(s.ch)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var n notification.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				if logger != nil {
					logger.Warn("realtime: dropping malformed notification", err)
				}
				continue
			}
			select {
			case s.ch <- n:
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Channel() <-chan notification.Notification { return s.ch }

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	if s.pubsub == nil {
		return nil
	}
	return s.pubsub.Close()
}
