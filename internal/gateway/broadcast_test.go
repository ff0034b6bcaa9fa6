package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voiceflow-cms/server/internal/bus"
)

func TestBroadcast_RejectsMissingUserID(t *testing.T) {
	_, server := setupTestServer(t, &stubTranscriber{}, newMemBus())

	conn := dial(t, server, "/ws/collab/ws-1")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("Expected close error, got %v", err)
	}
	if closeErr.Code != CloseMissingUserID {
		t.Errorf("Expected close code %d, got %d", CloseMissingUserID, closeErr.Code)
	}
}

func TestCollab_FansOutEnvelopes(t *testing.T) {
	_, server := setupTestServer(t, &stubTranscriber{}, newMemBus())

	alice := dial(t, server, "/ws/collab/ws-1?user_id=alice")
	bob := dial(t, server, "/ws/collab/ws-1?user_id=bob")
	time.Sleep(50 * time.Millisecond) // let subscriptions settle

	if err := alice.WriteMessage(websocket.TextMessage, []byte(`{"op":"insert","pos":4}`)); err != nil {
		t.Fatal(err)
	}

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		frame := readFrame(t, conn)
		if frame["user_id"] != "alice" {
			t.Errorf("%s: expected sender alice, got %v", name, frame["user_id"])
		}
		payload, ok := frame["payload"].(map[string]interface{})
		if !ok {
			t.Fatalf("%s: expected JSON payload, got %v", name, frame["payload"])
		}
		if payload["op"] != "insert" {
			t.Errorf("%s: payload not preserved: %v", name, payload)
		}
		if _, ok := frame["timestamp"]; !ok {
			t.Errorf("%s: envelope missing timestamp", name)
		}
	}
}

func TestCollab_NonJSONTextIsCarriedAsString(t *testing.T) {
	_, server := setupTestServer(t, &stubTranscriber{}, newMemBus())

	conn := dial(t, server, "/ws/collab/ws-1?user_id=alice")
	time.Sleep(50 * time.Millisecond)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("cursor moved")); err != nil {
		t.Fatal(err)
	}
	frame := readFrame(t, conn)
	if frame["payload"] != "cursor moved" {
		t.Errorf("Expected plain text payload carried as string, got %v", frame["payload"])
	}
}

func TestCollab_ScopedToWorkspace(t *testing.T) {
	_, server := setupTestServer(t, &stubTranscriber{}, newMemBus())

	sender := dial(t, server, "/ws/collab/ws-1?user_id=alice")
	other := dial(t, server, "/ws/collab/ws-2?user_id=bob")
	time.Sleep(50 * time.Millisecond)

	if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"op":"delete"}`)); err != nil {
		t.Fatal(err)
	}
	readFrame(t, sender) // own copy arrives

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("Message leaked across workspaces")
	}
}

func TestSpatial_UsesOwnTopic(t *testing.T) {
	eventBus := newMemBus()
	_, server := setupTestServer(t, &stubTranscriber{}, eventBus)

	collab := dial(t, server, "/ws/collab/ws-1?user_id=alice")
	spatial := dial(t, server, "/ws/spatial/ws-1?user_id=alice")
	time.Sleep(50 * time.Millisecond)

	if err := spatial.WriteMessage(websocket.TextMessage, []byte(`{"x":1,"y":2}`)); err != nil {
		t.Fatal(err)
	}
	frame := readFrame(t, spatial)
	payload, ok := frame["payload"].(map[string]interface{})
	if !ok || payload["x"] != float64(1) {
		t.Fatalf("Expected spatial payload back, got %v", frame)
	}

	_ = collab.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := collab.ReadMessage(); err == nil {
		t.Error("Spatial message leaked onto the collab channel")
	}

	eventBus.mu.Lock()
	_, onSpatial := eventBus.published[bus.SpatialTopic("ws-1")]
	_, onCollab := eventBus.published[bus.CollabTopic("ws-1")]
	eventBus.mu.Unlock()
	if !onSpatial {
		t.Error("Expected a publish on the spatial topic")
	}
	if onCollab {
		t.Error("Unexpected publish on the collab topic")
	}
}

func TestBroadcast_PresenceJoinLeave(t *testing.T) {
	eventBus := newMemBus()
	_, server := setupTestServer(t, &stubTranscriber{}, eventBus)

	conn := dial(t, server, "/ws/collab/ws-9?user_id=alice")
	waitFor(t, func() bool {
		for _, action := range eventBus.presenceActions() {
			if action == "joined" {
				return true
			}
		}
		return false
	}, "Expected a joined presence event")

	eventBus.mu.Lock()
	var joined map[string]interface{}
	for _, payload := range eventBus.published[bus.TopicPresence] {
		var event map[string]interface{}
		_ = json.Unmarshal(payload, &event)
		if event["action"] == "joined" {
			joined = event
		}
	}
	eventBus.mu.Unlock()
	if joined["workspace_id"] != "ws-9" {
		t.Errorf("Joined event missing workspace, got %v", joined)
	}

	conn.Close()
	waitFor(t, func() bool {
		count := 0
		for _, action := range eventBus.presenceActions() {
			if action == "left" {
				count++
			}
		}
		return count == 1
	}, "Expected exactly one left presence event")
}
