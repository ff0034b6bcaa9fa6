package repositories

import "context"

// SpeakerEncoder abstracts a speaker-embedding model: mono PCM in, fixed-size
// float vector out. The gateway and voice service never depend on a concrete
// model implementation.
type SpeakerEncoder interface {
	Embed(ctx context.Context, pcm []byte) ([]float64, error)
}
