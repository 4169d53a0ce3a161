package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const changeChannel = "analytics:changed"

// ChangeFeed fans analytics mutations out to live subscribers via Redis
// pub/sub. Writers publish after every successful submission or reset;
// each streaming client re-fetches a full snapshot on notification.
type ChangeFeed struct {
	client *redis.Client
}

// NewChangeFeed constructs the feed.
func NewChangeFeed(client *redis.Client) *ChangeFeed {
	return &ChangeFeed{client: client}
}

// Publish signals that persisted analytics state changed.
func (f *ChangeFeed) Publish(ctx context.Context) error {
	if f.client == nil {
		return nil
	}
	if err := f.client.Publish(ctx, changeChannel, "1").Err(); err != nil {
		return fmt.Errorf("publish analytics change: %w", err)
	}
	return nil
}

// Listen subscribes to change notifications. The returned channel closes when
// the context is cancelled; callers must invoke the cleanup function.
func (f *ChangeFeed) Listen(ctx context.Context) (<-chan struct{}, func(), error) {
	if f.client == nil {
		ch := make(chan struct{})
		close(ch)
		return ch, func() {}, nil
	}

	sub := f.client.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe analytics changes: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				_ = msg
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, func() { _ = sub.Close() }, nil
}
