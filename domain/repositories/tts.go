package repositories

import "context"

// TextToSpeech converts text into a stream of audio chunks.
type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string, language string) (<-chan []byte, error)
}
