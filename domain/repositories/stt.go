package repositories

import "context"

// Transcript is a single recognition result.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// AudioConfig represents audio parameters for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// Transcriber abstracts a blocking speech recognition runtime. Implementations
// manage their own worker pool so a heavy recognition call never stalls the
// caller's peers; callers bound the wait with ctx. Empty or silent audio yields
// an empty Transcript, not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, config AudioConfig) (Transcript, error)
}
