// Package notification delivers per-user notifications and site-wide
// announcements, with optional realtime fan-out through a Broker.
package notification

import (
	"context"
	"time"
)

// RecentLimit caps how many notifications a user's feed returns.
const RecentLimit = 20

type (
	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		IsRead    bool      `json:"is_read"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Repository interface {
		CreateNotifications(ctx context.Context, ns []Notification) ([]Notification, error)
		// RecentNotifications returns the user's latest notifications,
		// newest first, capped at RecentLimit.
		RecentNotifications(ctx context.Context, userID string) ([]Notification, error)
		MarkNotificationsRead(ctx context.Context, userID string, ids ...string) error
		MarkAllNotificationsRead(ctx context.Context, userID string) error
	}

	// Subscription is a live feed of one user's notifications.
	Subscription interface {
		Channel() <-chan Notification
		Close() error
	}

	// Broker pushes stored notifications to live subscribers.
	Broker interface {
		Publish(ctx context.Context, n Notification) error
		Subscribe(ctx context.Context, userID string) (Subscription, error)
	}

	// Directory resolves announcement recipients.
	Directory interface {
		ActiveUserIDs(ctx context.Context) ([]string, error)
	}

	Logger interface {
		Warn(msg string, args ...interface{})
	}

	Service struct {
		repo   Repository
		broker Broker
		dir    Directory
		logger Logger
	}
)

func NewService(repo Repository, broker Broker, dir Directory, logger Logger) *Service {
	return &Service{repo: repo, broker: broker, dir: dir, logger: logger}
}

// Notify stores a notification for one user and publishes it to live
// subscribers. Publish failures are logged, not returned; the stored
// notification is the source of truth.
func (svc *Service) Notify(ctx context.Context, userID, title, message string) (Notification, error) {
	ns, err := svc.repo.CreateNotifications(ctx, []Notification{{
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}})
	if err != nil {
		return Notification{}, err
	}
	svc.publish(ctx, ns...)
	return ns[0], nil
}

// Announce fans a notification out to every active user.
func (svc *Service) Announce(ctx context.Context, title, message string) (int, error) {
	userIDs, err := svc.dir.ActiveUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	ns := make([]Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		ns = append(ns, Notification{
			UserID:    uid,
			Title:     title,
			Message:   message,
			CreatedAt: now,
		})
	}
	ns, err = svc.repo.CreateNotifications(ctx, ns)
	if err != nil {
		return 0, err
	}
	svc.publish(ctx, ns...)
	return len(ns), nil
}

func (svc *Service) Recent(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.RecentNotifications(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, userID string, ids ...string) error {
	return svc.repo.MarkNotificationsRead(ctx, userID, ids...)
}

func (svc *Service) MarkAllRead(ctx context.Context, userID string) error {
	return svc.repo.MarkAllNotificationsRead(ctx, userID)
}

// Stream subscribes to a user's live notification feed.
func (svc *Service) Stream(ctx context.Context, userID string) (Subscription, error) {
	return svc.broker.Subscribe(ctx, userID)
}

func (svc *Service) publish(ctx context.Context, ns ...Notification) {
	if svc.broker == nil {
		return
	}
	for _, n := range ns {
		if err := svc.broker.Publish(ctx, n); err != nil && svc.logger != nil {
			svc.logger.Warn("notification: publish failed", "user_id", n.UserID, "error", err)
		}
	}
}
