// Package speaker adapts external voice embedding services to the
// SpeakerEncoder interface.
package speaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/audio"
)

const requestTimeout = 30 * time.Second

// HTTPEncoder calls an external embedding service over HTTP. The audio
// is shipped as a mono PCM-16 WAV body; the service answers with a JSON
// embedding vector.
type HTTPEncoder struct {
	endpoint   string
	sampleRate int
	client     *http.Client
	logger     *zap.Logger
}

// Ensure HTTPEncoder implements the SpeakerEncoder interface
var _ repositories.SpeakerEncoder = (*HTTPEncoder)(nil)

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewHTTPEncoder creates an encoder backed by the service at endpoint.
func NewHTTPEncoder(endpoint string, sampleRate int, logger *zap.Logger) (*HTTPEncoder, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("speaker encoder endpoint is required")
	}
	return &HTTPEncoder{
		endpoint:   endpoint,
		sampleRate: sampleRate,
		client:     &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

// Embed converts a PCM buffer into a speaker embedding vector.
func (e *HTTPEncoder) Embed(ctx context.Context, pcm []byte) ([]float64, error) {
	wav, err := audio.EncodeWAV(pcm, e.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audio: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(wav))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}

	e.logger.Debug("Computed speaker embedding",
		zap.Int("audioSize", len(pcm)),
		zap.Int("dimensions", len(parsed.Embedding)))
	return parsed.Embedding, nil
}
