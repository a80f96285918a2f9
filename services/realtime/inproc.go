package realtime

import (
	"context"
	"sync"

	"github.com/tradelore/tradelore/core/notification"
)

// InProcBroker delivers notifications within a single process. Used in tests
// and single-instance deployments where redis is overkill.
type InProcBroker struct {
	mu   sync.RWMutex
	subs map[string][]*inprocSubscription
}

var _ notification.Broker = (*InProcBroker)(nil)

func NewInProcBroker() *InProcBroker {
	return &InProcBroker{subs: make(map[string][]*inprocSubscription)}
}

func (b *InProcBroker) Publish(ctx context.Context, n notification.Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[n.UserID] {
		select {
		case sub.ch <- n:
		default: // slow subscriber, drop
		}
	}
	return nil
}

func (b *InProcBroker) Subscribe(ctx context.Context, userID string) (notification.Subscription, error) {
	sub := &inprocSubscription{
		broker: b,
		userID: userID,
		ch:     make(chan notification.Notification, 16),
	}

	b.mu.Lock()
	b.subs[userID] = append(b.subs[userID], sub)
	b.mu.Unlock()
	return sub, nil
}

type inprocSubscription struct {
	broker *InProcBroker
	userID string
	ch     chan notification.Notification
	once   sync.Once
}

func (s *inprocSubscription) Channel() <-chan notification.Notification { return s.ch }

func (s *inprocSubscription) Close() error {
	s.once.Do(func() {
		s.broker.mu.Lock()
		subs := s.broker.subs[s.userID]
		for i, sub := range subs {
			if sub == s {
				s.broker.subs[s.userID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.broker.mu.Unlock()
		close(s.ch)
	})
	return nil
}
