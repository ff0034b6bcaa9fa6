package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

// MockTTS is a placeholder synthesizer for local development. It emits
// one chunk per word so callers can exercise the streaming path.
type MockTTS struct {
	logger *zap.Logger
}

// NewMockTTS creates a new mock text-to-speech service
func NewMockTTS(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTTS{logger: logger}
}

// ConvertTextToSpeech implements repositories.TextToSpeech
func (m *MockTTS) ConvertTextToSpeech(ctx context.Context, text, language string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	m.logger.Info("Mock synthesis",
		zap.String("text", text),
		zap.String("language", language))

	audioChan := make(chan []byte, 10)
	go func() {
		defer close(audioChan)
		for _, word := range strings.Fields(text) {
			select {
			case audioChan <- []byte(word):
			case <-ctx.Done():
				return
			}
		}
	}()

	return audioChan, nil
}
