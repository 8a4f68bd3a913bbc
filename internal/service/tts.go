package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"
)

// Synthesizer converts script text to audio bytes.
// Concrete implementation wraps Google Cloud Text-to-Speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Fixed voices, one per host.
const (
	VoiceAlex = "en-US-Neural2-D"
	VoiceSam  = "en-US-Neural2-F"
)

// SpeechClient implements Synthesizer against the Cloud Text-to-Speech REST API.
type SpeechClient struct {
	svc *texttospeech.Service
}

// NewSpeechClient creates a ready-to-use speech-synthesis client.
func NewSpeechClient() (*SpeechClient, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &SpeechClient{svc: svc}, nil
}

// Synthesize renders text with the given voice and returns MP3 bytes.
func (s *SpeechClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         voice,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
		},
	}

	resp, err := s.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	return audio, nil
}
