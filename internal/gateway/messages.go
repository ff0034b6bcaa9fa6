package gateway

import (
	"encoding/json"
	"time"

	"github.com/voiceflow-cms/server/internal/nlu"
)

// Client frame types accepted on the voice socket.
const (
	frameTypePartial    = "partial"
	frameTypeAudioFrame = "audio_frame"
	frameTypeFinal      = "final"
)

// clientFrame is the envelope for JSON text frames from the client.
type clientFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Data string `json:"data"` // base64 PCM for audio_frame
}

// helloFrame greets a freshly accepted connection.
type helloFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// partialFrame carries an interim transcript. Confidence is present only
// on the transcription path, never on the pass-through echo.
type partialFrame struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// finalFrame carries a client-declared-complete utterance plus its
// intent detection result.
type finalFrame struct {
	Type string     `json:"type"`
	Text string     `json:"text"`
	NLU  nlu.Result `json:"nlu"`
}

// errorFrame reports malformed client input on the same socket.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// noopFrame acknowledges a well-formed but unrecognized frame.
type noopFrame struct {
	Type string `json:"type"`
}

func newHelloFrame() []byte {
	out, _ := json.Marshal(helloFrame{Type: "hello", Message: "connected"})
	return out
}

func newPartialFrame(text string, confidence float64) []byte {
	out, _ := json.Marshal(partialFrame{Type: "stt_partial", Text: text, Confidence: confidence})
	return out
}

func newFinalFrame(text string, result nlu.Result) []byte {
	out, _ := json.Marshal(finalFrame{Type: "stt_final", Text: text, NLU: result})
	return out
}

func newErrorFrame(message string) []byte {
	out, _ := json.Marshal(errorFrame{Type: "error", Message: message})
	return out
}

func newNoopFrame() []byte {
	out, _ := json.Marshal(noopFrame{Type: "noop"})
	return out
}

// broadcastEnvelope tags a republished collaboration message with its
// sender and arrival time. Payload keeps whatever JSON the sender sent;
// non-JSON text is carried as a JSON string.
type broadcastEnvelope struct {
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func newBroadcastEnvelope(userID string, raw []byte) []byte {
	payload := json.RawMessage(raw)
	if !json.Valid(raw) {
		quoted, _ := json.Marshal(string(raw))
		payload = quoted
	}
	out, _ := json.Marshal(broadcastEnvelope{
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	return out
}
