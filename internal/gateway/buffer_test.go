package gateway

import (
	"bytes"
	"testing"
)

func TestChunkBufferAppendAndLen(t *testing.T) {
	b := NewChunkBuffer(50, 10)

	if b.Len() != 0 {
		t.Fatalf("new buffer should be empty, got %d", b.Len())
	}
	for i := 0; i < 5; i++ {
		if evicted := b.Append([]byte{byte(i)}); evicted {
			t.Errorf("append %d should not evict", i)
		}
	}
	if b.Len() != 5 {
		t.Errorf("expected 5 chunks, got %d", b.Len())
	}
}

func TestChunkBufferEvictsOldest(t *testing.T) {
	b := NewChunkBuffer(50, 10)

	for i := 0; i < 51; i++ {
		b.Append([]byte{byte(i)})
	}
	if b.Len() != 50 {
		t.Fatalf("buffer must retain at most capacity, got %d", b.Len())
	}

	drained := b.Drain()
	if drained[0] != 1 {
		t.Errorf("oldest chunk should have been evicted, first byte = %d", drained[0])
	}
	if drained[len(drained)-1] != 50 {
		t.Errorf("newest chunk missing, last byte = %d", drained[len(drained)-1])
	}
}

func TestChunkBufferShouldDrainAtThreshold(t *testing.T) {
	b := NewChunkBuffer(50, 10)

	for i := 0; i < 9; i++ {
		b.Append([]byte{0})
		if b.ShouldDrain() {
			t.Fatalf("should not drain at %d chunks", b.Len())
		}
	}
	b.Append([]byte{0})
	if !b.ShouldDrain() {
		t.Error("should drain at threshold")
	}
}

func TestChunkBufferDrainConcatenatesAndClears(t *testing.T) {
	b := NewChunkBuffer(50, 10)
	b.Append([]byte("abc"))
	b.Append([]byte("def"))

	got := b.Drain()
	if !bytes.Equal(got, []byte("abcdef")) {
		t.Errorf("drain = %q, expected abcdef", got)
	}
	if b.Len() != 0 {
		t.Errorf("buffer should be empty after drain, got %d", b.Len())
	}
	if b.ShouldDrain() {
		t.Error("empty buffer should not want draining")
	}

	// the ring keeps accepting chunks after a drain
	b.Append([]byte("xyz"))
	if b.Len() != 1 {
		t.Errorf("expected 1 chunk after post-drain append, got %d", b.Len())
	}
}

func TestChunkBufferDrainEmpty(t *testing.T) {
	b := NewChunkBuffer(50, 10)
	if got := b.Drain(); len(got) != 0 {
		t.Errorf("draining empty buffer should yield no bytes, got %d", len(got))
	}
}
