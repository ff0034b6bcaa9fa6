package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

// GoogleTranscriber implements Transcriber using the Google Cloud
// Speech-to-Text synchronous Recognize API. A buffered channel acts as a
// semaphore bounding in-flight recognition requests; callers over the
// bound wait until a slot frees or their context expires.
type GoogleTranscriber struct {
	client *speech.Client
	slots  chan struct{}
	logger *zap.Logger
}

// Ensure GoogleTranscriber implements the Transcriber interface
var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a transcriber backed by Google Cloud
// Speech-to-Text. Credentials come from the standard
// GOOGLE_APPLICATION_CREDENTIALS environment.
func NewGoogleTranscriber(ctx context.Context, maxConcurrent int, logger *zap.Logger) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &GoogleTranscriber{
		client: client,
		slots:  make(chan struct{}, maxConcurrent),
		logger: logger,
	}, nil
}

// Transcribe converts a PCM buffer to text. Empty audio yields an empty
// transcript without touching the API.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, pcm []byte, config repositories.AudioConfig) (repositories.Transcript, error) {
	if len(pcm) == 0 {
		return repositories.Transcript{}, nil
	}

	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return repositories.Transcript{}, fmt.Errorf("waiting for transcription slot: %w", ctx.Err())
	}
	defer func() { <-g.slots }()

	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		return repositories.Transcript{}, err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    config.Language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return repositories.Transcript{}, fmt.Errorf("recognize request failed: %w", err)
	}

	// Take the best alternative of the first result. No results means no
	// speech was detected, which is not an error for interim audio.
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		best := result.Alternatives[0]
		g.logger.Debug("Transcribed audio buffer",
			zap.Int("audioSize", len(pcm)),
			zap.Float32("confidence", best.Confidence))
		return repositories.Transcript{
			Text:       best.Transcript,
			Confidence: float64(best.Confidence),
		}, nil
	}

	return repositories.Transcript{}, nil
}

// Close releases the underlying API client.
func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// audioEncoding converts string encoding to Google Speech API enum
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
