// Package bus implements the shared cache/pub-sub collaborator on Redis:
// presence and collaboration topics, the audit log sink, and feature flags.
package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

// Well-known topics and keys.
const (
	TopicPresence   = "presence"
	VoiceLogKey     = "logs:voice"
	FlagVoiceGate   = "feature:voice_gateway"
	logTrimLength   = 10000
	subscribeBuffer = 64
)

// CollabTopic returns the broadcast topic for a workspace's collaboration
// channel.
func CollabTopic(workspaceID string) string {
	return "collab:" + workspaceID
}

// SpatialTopic returns the broadcast topic for a workspace's position channel.
func SpatialTopic(workspaceID string) string {
	return "spatial:" + workspaceID
}

// RedisBus implements repositories.EventBus on a Redis connection.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

var _ repositories.EventBus = (*RedisBus)(nil)

// New connects to Redis at the given URL and verifies the connection.
func New(ctx context.Context, url string, logger *zap.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to redis", zap.String("addr", opts.Addr))
	return &RedisBus{client: client, logger: logger}, nil
}

// NewFromClient wraps an existing client; used by tests.
func NewFromClient(client *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger}
}

// Close releases the underlying connection.
func (b *RedisBus) Close() error {
	return b.client.Close()
}

// Publish sends payload to topic, fire-and-forget.
func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a subscription to a single topic.
func (b *RedisBus) Subscribe(ctx context.Context, topic string) (repositories.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topic)

	// force the SUBSCRIBE round trip so failures surface here
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	sub := &redisSubscription{
		pubsub:   pubsub,
		messages: make(chan []byte, subscribeBuffer),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	pubsub   *redis.PubSub
	messages chan []byte
}

func (s *redisSubscription) pump() {
	defer close(s.messages)
	for msg := range s.pubsub.Channel() {
		s.messages <- []byte(msg.Payload)
	}
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.messages
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}

// AppendLog appends an entry to a list-based log sink, trimming the list
// so it cannot grow without bound.
func (b *RedisBus) AppendLog(ctx context.Context, key string, entry []byte) error {
	pipe := b.client.TxPipeline()
	pipe.RPush(ctx, key, entry)
	pipe.LTrim(ctx, key, -logTrimLength, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append log entry to %s: %w", key, err)
	}
	return nil
}

// SetFlag stores a key-value feature flag.
func (b *RedisBus) SetFlag(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set flag %s: %w", key, err)
	}
	return nil
}

// GetFlag reads a feature flag, returning ErrFlagNotFound when unset.
func (b *RedisBus) GetFlag(ctx context.Context, key string) (string, error) {
	value, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repositories.ErrFlagNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get flag %s: %w", key, err)
	}
	return value, nil
}
