package repositories

import (
	"context"
	"errors"
)

// ErrFlagNotFound is returned by GetFlag when the flag was never set.
var ErrFlagNotFound = errors.New("flag not found")

// Subscription is a live pub/sub subscription to a single topic.
type Subscription interface {
	// Messages delivers payloads published to the topic. The channel is
	// closed when the subscription is closed or the bus connection drops.
	Messages() <-chan []byte
	Close() error
}

// EventBus is the shared cache/pub-sub collaborator: fire-and-forget topic
// publishing, list-based log append, and key-value feature flags. No
// acknowledgment and no delivery guarantee beyond the bus's own per-topic
// ordering.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	AppendLog(ctx context.Context, key string, entry []byte) error
	SetFlag(ctx context.Context, key, value string) error
	GetFlag(ctx context.Context, key string) (string, error)
}
