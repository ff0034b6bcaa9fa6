package stt

import (
	"context"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
)

func TestAudioEncoding(t *testing.T) {
	tests := []struct {
		input   string
		want    speechpb.RecognitionConfig_AudioEncoding
		wantErr bool
	}{
		{"LINEAR16", speechpb.RecognitionConfig_LINEAR16, false},
		{"WAV", speechpb.RecognitionConfig_LINEAR16, false},
		{"FLAC", speechpb.RecognitionConfig_FLAC, false},
		{"OGG_OPUS", speechpb.RecognitionConfig_OGG_OPUS, false},
		{"mp3", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, true},
		{"", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, true},
	}

	for _, tt := range tests {
		got, err := audioEncoding(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("audioEncoding(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("audioEncoding(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("audioEncoding(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMockTranscriber_Deterministic(t *testing.T) {
	transcriber := NewMockTranscriber(zap.NewNop())
	config := repositories.AudioConfig{SampleRate: 16000, Encoding: "LINEAR16", Language: "en-US"}

	pcm := make([]byte, 2000)
	first, err := transcriber.Transcribe(context.Background(), pcm, config)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	second, _ := transcriber.Transcribe(context.Background(), pcm, config)
	if first != second {
		t.Errorf("Same input should give same transcript: %v vs %v", first, second)
	}
	if first.Text == "" || first.Confidence == 0 {
		t.Errorf("Expected non-empty transcript, got %v", first)
	}
}

func TestMockTranscriber_EmptyAudio(t *testing.T) {
	transcriber := NewMockTranscriber(zap.NewNop())

	transcript, err := transcriber.Transcribe(context.Background(), nil, repositories.AudioConfig{})
	if err != nil {
		t.Fatalf("Empty audio should not error: %v", err)
	}
	if transcript.Text != "" {
		t.Errorf("Expected empty transcript, got %q", transcript.Text)
	}
}
