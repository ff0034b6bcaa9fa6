// Package usecase holds the application services sitting between the
// HTTP layer and the adapters.
package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
)

// ErrSpeakerUnknown is returned when no enrolled profile matches the
// presented voice sample closely enough.
var ErrSpeakerUnknown = errors.New("no matching voice profile")

// VoiceService orchestrates one-shot transcription, synthesis, and
// speaker enrollment/identification over the adapter interfaces.
type VoiceService struct {
	transcriber repositories.Transcriber
	synthesizer repositories.TextToSpeech
	encoder     repositories.SpeakerEncoder
	profiles    repositories.VoiceProfileRepository
	audioConfig repositories.AudioConfig
	threshold   float64
	logger      *zap.Logger
}

// NewVoiceService creates a new voice service
func NewVoiceService(
	transcriber repositories.Transcriber,
	synthesizer repositories.TextToSpeech,
	encoder repositories.SpeakerEncoder,
	profiles repositories.VoiceProfileRepository,
	audioConfig repositories.AudioConfig,
	threshold float64,
	logger *zap.Logger,
) *VoiceService {
	return &VoiceService{
		transcriber: transcriber,
		synthesizer: synthesizer,
		encoder:     encoder,
		profiles:    profiles,
		audioConfig: audioConfig,
		threshold:   threshold,
		logger:      logger,
	}
}

// TranscribeBase64 decodes a base64 PCM payload and transcribes it.
func (s *VoiceService) TranscribeBase64(ctx context.Context, audioBase64 string) (repositories.Transcript, error) {
	pcm, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return repositories.Transcript{}, fmt.Errorf("failed to decode audio data: %w", err)
	}
	if len(pcm) == 0 {
		return repositories.Transcript{}, errors.New("audio data cannot be empty")
	}

	transcript, err := s.transcriber.Transcribe(ctx, pcm, s.audioConfig)
	if err != nil {
		return repositories.Transcript{}, fmt.Errorf("transcription failed: %w", err)
	}

	s.logger.Info("Transcription completed",
		zap.Int("audioSize", len(pcm)),
		zap.Float64("confidence", transcript.Confidence))
	return transcript, nil
}

// Synthesize converts text to speech and collects the streamed chunks
// into a single audio buffer.
func (s *VoiceService) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if language == "" {
		language = s.audioConfig.Language
	}

	audioChan, err := s.synthesizer.ConvertTextToSpeech(ctx, text, language)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	var audio []byte
	for chunk := range audioChan {
		audio = append(audio, chunk...)
	}
	if len(audio) == 0 {
		return nil, errors.New("synthesis produced no audio")
	}
	return audio, nil
}

// Enroll computes an embedding for each sample and stores the averaged
// vector as the user's voice profile. Re-enrolling replaces the profile.
func (s *VoiceService) Enroll(ctx context.Context, userID string, samples [][]byte) (*entities.VoiceProfile, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if len(samples) == 0 {
		return nil, errors.New("at least one audio sample is required")
	}

	var sum []float64
	for i, sample := range samples {
		embedding, err := s.encoder.Embed(ctx, sample)
		if err != nil {
			return nil, fmt.Errorf("failed to embed sample %d: %w", i, err)
		}
		if sum == nil {
			sum = make([]float64, len(embedding))
		}
		if len(embedding) != len(sum) {
			return nil, fmt.Errorf("sample %d has mismatched embedding dimensions", i)
		}
		for j, v := range embedding {
			sum[j] += v
		}
	}
	for j := range sum {
		sum[j] /= float64(len(samples))
	}

	profile := &entities.VoiceProfile{
		UserID:    userID,
		Embedding: sum,
		Threshold: s.threshold,
		Samples:   len(samples),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to store voice profile: %w", err)
	}

	s.logger.Info("Enrolled voice profile",
		zap.String("userID", userID),
		zap.Int("samples", len(samples)))
	return profile, nil
}

// Identify finds the enrolled profile most similar to the presented
// audio. The best match must clear its profile's threshold, otherwise
// ErrSpeakerUnknown is returned.
func (s *VoiceService) Identify(ctx context.Context, pcm []byte) (*entities.VoiceProfile, float64, error) {
	embedding, err := s.encoder.Embed(ctx, pcm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to embed audio: %w", err)
	}

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list voice profiles: %w", err)
	}

	var best *entities.VoiceProfile
	bestScore := -1.0
	for _, profile := range profiles {
		score, err := cosineSimilarity(embedding, profile.Embedding)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = profile
		}
	}

	if best == nil || bestScore < best.Threshold {
		return nil, bestScore, ErrSpeakerUnknown
	}

	s.logger.Info("Identified speaker",
		zap.String("userID", best.UserID),
		zap.Float64("similarity", bestScore))
	return best, bestScore, nil
}

func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, errors.New("vectors must have the same non-zero length")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, errors.New("cannot compare zero vectors")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
