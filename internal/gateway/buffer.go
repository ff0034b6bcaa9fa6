package gateway

// ChunkBuffer is a bounded per-session FIFO of raw audio chunks. Two
// independent knobs govern it: capacity is how many chunks are retained
// before the oldest is silently evicted (bounded-memory policy), and
// threshold is how many buffered chunks trigger a transcription drain.
//
// A ChunkBuffer is owned by exactly one session goroutine and is not
// safe for concurrent use.
type ChunkBuffer struct {
	chunks    [][]byte
	capacity  int
	threshold int
}

// NewChunkBuffer creates a buffer with the given eviction capacity and
// fill threshold.
func NewChunkBuffer(capacity, threshold int) *ChunkBuffer {
	return &ChunkBuffer{
		chunks:    make([][]byte, 0, capacity),
		capacity:  capacity,
		threshold: threshold,
	}
}

// Append adds a chunk, evicting the oldest entry when the buffer is at
// capacity. It reports whether an eviction happened.
func (b *ChunkBuffer) Append(chunk []byte) bool {
	evicted := false
	if len(b.chunks) >= b.capacity {
		copy(b.chunks, b.chunks[1:])
		b.chunks = b.chunks[:len(b.chunks)-1]
		evicted = true
	}
	b.chunks = append(b.chunks, chunk)
	return evicted
}

// Len returns the number of buffered, not-yet-drained chunks.
func (b *ChunkBuffer) Len() int {
	return len(b.chunks)
}

// ShouldDrain reports whether the buffer has reached the fill threshold.
func (b *ChunkBuffer) ShouldDrain() bool {
	return len(b.chunks) >= b.threshold
}

// Drain concatenates all buffered chunks into a single byte stream and
// clears the buffer. The ring keeps accepting new chunks afterwards.
func (b *ChunkBuffer) Drain() []byte {
	total := 0
	for _, chunk := range b.chunks {
		total += len(chunk)
	}
	out := make([]byte, 0, total)
	for _, chunk := range b.chunks {
		out = append(out, chunk...)
	}
	b.chunks = b.chunks[:0]
	return out
}
