package service

import "context"

// Local stand-ins for the Google clients, used when no GCP project is
// configured. They keep the full pipeline runnable offline: real citations,
// placeholder narrative and silent audio.

type dummyLLM struct{}

func (d dummyLLM) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	return "1. placeholder beat\n2. placeholder beat\n3. placeholder beat\n" +
		"4. placeholder beat\n5. placeholder beat", nil
}

func NewDummyLLM() TextGenerator {
	return dummyLLM{}
}

type dummySynthesizer struct{}

func (d dummySynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	// A single empty MP3 frame per segment keeps downstream players happy.
	return []byte{0xFF, 0xFB, 0x90, 0x00}, nil
}

func NewDummySynthesizer() Synthesizer {
	return dummySynthesizer{}
}
