package stt

import (
	"context"

	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

// MockTranscriber is a placeholder implementation for local development
// without cloud credentials. The transcript depends only on the audio
// size, so repeated drains of identical input stay deterministic.
type MockTranscriber struct {
	logger *zap.Logger
}

// NewMockTranscriber creates a new mock transcriber
func NewMockTranscriber(logger *zap.Logger) repositories.Transcriber {
	return &MockTranscriber{logger: logger}
}

// Transcribe implements repositories.Transcriber
func (m *MockTranscriber) Transcribe(ctx context.Context, pcm []byte, config repositories.AudioConfig) (repositories.Transcript, error) {
	m.logger.Info("Processing mock transcription",
		zap.Int("audioSize", len(pcm)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	if len(pcm) == 0 {
		return repositories.Transcript{}, nil
	}

	// Mock transcription based on audio size
	switch {
	case len(pcm) > 10000:
		return repositories.Transcript{Text: "publish the draft blog post", Confidence: 0.95}, nil
	case len(pcm) > 5000:
		return repositories.Transcript{Text: "show me the latest drafts", Confidence: 0.9}, nil
	case len(pcm) > 1000:
		return repositories.Transcript{Text: "create a new page", Confidence: 0.85}, nil
	default:
		return repositories.Transcript{Text: "hello", Confidence: 0.8}, nil
	}
}
