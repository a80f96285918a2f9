package realtime

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tradelore/tradelore/core/notification"
)

func Test_redisSubscription_forward(t *testing.T) {
	newSub := func() (*redisSubscription, chan *redis.Message) {
		msgs := make(chan *redis.Message, 2)
		sub := &redisSubscription{
			ch:   make(chan notification.Notification),
			done: make(chan struct{}),
		}
		go sub.forward(msgs, nil)
		return sub, msgs
	}

	t.Run("decodes and forwards payloads", func(t *testing.T) {
		sub, msgs := newSub()
		defer sub.Close()

		msgs <- &redis.Message{Payload: `{"id":"n1","user_id":"u1","title":"hey"}`}
		select {
		case got := <-sub.Channel():
			if got.ID != "n1" || got.UserID != "u1" {
				t.Errorf("got %+v, want id n1 for u1", got)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for notification")
		}
	})

	t.Run("drops malformed payloads", func(t *testing.T) {
		sub, msgs := newSub()
		defer sub.Close()

		msgs <- &redis.Message{Payload: `{not json`}
		msgs <- &redis.Message{Payload: `{"id":"n2","user_id":"u1"}`}
		select {
		case got := <-sub.Channel():
			if got.ID != "n2" {
				t.Errorf("got %v, want n2", got.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for notification")
		}
	})

	t.Run("close unblocks a pending send", func(t *testing.T) {
		sub, msgs := newSub()

		// nobody consumes sub.Channel(), so this send blocks in forward
		msgs <- &redis.Message{Payload: `{"id":"n3","user_id":"u1"}`}
		time.Sleep(50 * time.Millisecond)

		if err := sub.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := sub.Close(); err != nil {
			t.Fatalf("second Close() error = %v", err)
		}

		// forward must exit and close the channel instead of leaking
		select {
		case _, open := <-sub.Channel():
			for open {
				_, open = <-sub.Channel()
			}
		case <-time.After(time.Second):
			t.Fatal("forward goroutine did not exit on close")
		}
	})

	t.Run("closed message channel ends the stream", func(t *testing.T) {
		sub, msgs := newSub()
		defer sub.Close()

		close(msgs)
		select {
		case _, open := <-sub.Channel():
			if open {
				t.Error("channel should be closed")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for channel close")
		}
	})
}
