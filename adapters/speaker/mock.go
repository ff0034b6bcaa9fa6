package speaker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

const mockDimensions = 32

// MockEncoder derives a deterministic embedding from the audio bytes so
// enrollment and identification can be exercised without an external
// service. Similar inputs produce similar vectors.
type MockEncoder struct {
	logger *zap.Logger
}

// NewMockEncoder creates a new mock speaker encoder
func NewMockEncoder(logger *zap.Logger) repositories.SpeakerEncoder {
	return &MockEncoder{logger: logger}
}

// Embed implements repositories.SpeakerEncoder
func (m *MockEncoder) Embed(ctx context.Context, pcm []byte) ([]float64, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("cannot embed empty audio")
	}

	// Bucket byte values into a fixed-size histogram and normalize.
	embedding := make([]float64, mockDimensions)
	for _, b := range pcm {
		embedding[int(b)%mockDimensions]++
	}
	for i := range embedding {
		embedding[i] /= float64(len(pcm))
	}

	m.logger.Debug("Computed mock embedding", zap.Int("audioSize", len(pcm)))
	return embedding, nil
}
