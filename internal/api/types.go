package api

import (
	"time"

	"github.com/voiceflow-cms/server/domain/entities"
)

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response payload for successful authentication
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// WorkspaceRequest represents the request payload for creating a workspace
type WorkspaceRequest struct {
	Name string `json:"name" validate:"required"`
}

// ContentRequest represents the request payload for creating or updating content
type ContentRequest struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// TranscribeRequest carries a base64 PCM payload for one-shot transcription
type TranscribeRequest struct {
	Audio string `json:"audio" validate:"required"`
}

// TranscribeResponse carries the transcription result
type TranscribeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// SynthesizeRequest carries text for speech synthesis
type SynthesizeRequest struct {
	Text     string `json:"text" validate:"required"`
	Language string `json:"language"`
}

// EnrollRequest carries base64 PCM samples for voice enrollment
type EnrollRequest struct {
	Samples []string `json:"samples" validate:"required"`
}

// EnrollResponse confirms a stored voice profile
type EnrollResponse struct {
	UserID  string `json:"user_id"`
	Samples int    `json:"samples"`
}

// IdentifyRequest carries a base64 PCM sample for speaker identification
type IdentifyRequest struct {
	Audio string `json:"audio" validate:"required"`
}

// IdentifyResponse names the matched speaker
type IdentifyResponse struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// FlagRequest sets a feature flag value
type FlagRequest struct {
	Value string `json:"value" validate:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
