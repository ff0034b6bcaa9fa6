package gateway

import "testing"

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	session := &Session{userID: "alice"}
	if displaced := registry.Register(session); displaced != nil {
		t.Error("First registration should not displace anything")
	}

	got, ok := registry.Get("alice")
	if !ok || got != session {
		t.Error("Expected to find the registered session")
	}
	if registry.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", registry.Len())
	}
}

func TestRegistry_LastWriteWins(t *testing.T) {
	registry := NewRegistry()

	first := &Session{userID: "alice"}
	second := &Session{userID: "alice"}

	registry.Register(first)
	displaced := registry.Register(second)

	if displaced != first {
		t.Error("Expected the older session to be displaced")
	}
	got, _ := registry.Get("alice")
	if got != second {
		t.Error("Expected the newer session to hold the slot")
	}
	if registry.Len() != 1 {
		t.Errorf("Expected 1 session after displacement, got %d", registry.Len())
	}
}

func TestRegistry_RemoveOnlyCurrentOccupant(t *testing.T) {
	registry := NewRegistry()

	first := &Session{userID: "alice"}
	second := &Session{userID: "alice"}

	registry.Register(first)
	registry.Register(second)

	// A displaced session cleaning itself up must not evict its successor.
	if registry.Remove(first) {
		t.Error("Removing a displaced session should be a no-op")
	}
	if _, ok := registry.Get("alice"); !ok {
		t.Fatal("Newer session should still be registered")
	}

	if !registry.Remove(second) {
		t.Error("Removing the current occupant should succeed")
	}
	if registry.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", registry.Len())
	}
}
