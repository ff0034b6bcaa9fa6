package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

func newTestBus(t *testing.T) (*RedisBus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewFromClient(client, zap.NewNop())
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestPublishSubscribe(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "presence")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	if err := b.Publish(ctx, "presence", []byte(`{"user_id":"u1"}`)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		if string(msg) != `{"user_id":"u1"}` {
			t.Errorf("unexpected payload: %s", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestSubscribeIsTopicScoped(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, CollabTopic("ws1"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	if err := b.Publish(ctx, CollabTopic("ws2"), []byte("other")); err != nil {
		t.Fatal(err)
	}
	if err := b.Publish(ctx, CollabTopic("ws1"), []byte("mine")); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-sub.Messages():
		if string(msg) != "mine" {
			t.Errorf("received message from wrong topic: %s", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for topic message")
	}
}

func TestAppendLog(t *testing.T) {
	b, mr := newTestBus(t)
	ctx := context.Background()

	if err := b.AppendLog(ctx, VoiceLogKey, []byte("first")); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}
	if err := b.AppendLog(ctx, VoiceLogKey, []byte("second")); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}

	entries, err := mr.List(VoiceLogKey)
	if err != nil {
		t.Fatalf("reading list: %v", err)
	}
	if len(entries) != 2 || entries[0] != "first" || entries[1] != "second" {
		t.Errorf("unexpected log entries: %v", entries)
	}
}

func TestFlags(t *testing.T) {
	b, _ := newTestBus(t)
	ctx := context.Background()

	if _, err := b.GetFlag(ctx, FlagVoiceGate); !errors.Is(err, repositories.ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound for unset flag, got %v", err)
	}

	if err := b.SetFlag(ctx, FlagVoiceGate, "off"); err != nil {
		t.Fatalf("SetFlag failed: %v", err)
	}
	value, err := b.GetFlag(ctx, FlagVoiceGate)
	if err != nil {
		t.Fatalf("GetFlag failed: %v", err)
	}
	if value != "off" {
		t.Errorf("expected off, got %q", value)
	}
}

func TestTopicNames(t *testing.T) {
	if CollabTopic("w1") != "collab:w1" {
		t.Errorf("unexpected collab topic: %s", CollabTopic("w1"))
	}
	if SpatialTopic("w1") != "spatial:w1" {
		t.Errorf("unexpected spatial topic: %s", SpatialTopic("w1"))
	}
}
