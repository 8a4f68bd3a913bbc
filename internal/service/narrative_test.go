package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"repocast/internal/models"
)

// fakeLLM returns canned text per prompt kind.
type fakeLLM struct {
	outline string
	script  string
	calls   int
}

func (f *fakeLLM) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if strings.Contains(prompt, "outlining") {
		return f.outline, nil
	}
	return f.script, nil
}

// fakeTTS records synthesized segments and returns marker bytes.
type fakeTTS struct {
	segments []string
	voices   []string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.segments = append(f.segments, text)
	f.voices = append(f.voices, voice)
	return []byte("<" + voice + ">"), nil
}

// memEpisodeRepo is an in-memory EpisodeRepository.
type memEpisodeRepo struct {
	byID map[string]models.Episode
}

func newMemEpisodeRepo() *memEpisodeRepo {
	return &memEpisodeRepo{byID: map[string]models.Episode{}}
}

func (m *memEpisodeRepo) FindByID(ctx context.Context, id string) (models.Episode, error) {
	return m.byID[id], nil
}

func (m *memEpisodeRepo) Upsert(ctx context.Context, ep models.Episode) error {
	m.byID[ep.ID] = ep
	return nil
}

func narrativeFixture(t *testing.T, llm *fakeLLM, tts *fakeTTS, repo EpisodeRepository) *NarrativeService {
	t.Helper()
	fetcher := &fakeFetcher{files: map[string]string{
		"a.js": "function parseConfig() {\n}\n", "b.js": "x", "c.js": "x",
	}}
	fa := &fakeAnalysis{
		status:  models.IndexCompleted,
		answers: defaultAnswers("a.js", "b.js", "c.js"),
	}
	episodes := newTestPipeline(fa, fetcher)
	return NewNarrativeService(episodes, llm, tts, repo)
}

const goodOutline = "1. beat one (a.js)\n2. beat two (b.js)\n3. beat three (c.js)\n4. beat four (a.js)\n5. beat five (b.js)"

func TestProduceEpisode_HappyPath(t *testing.T) {
	llm := &fakeLLM{
		outline: goodOutline,
		script:  "ALEX: Welcome to the show.\nSAM: Today we read a.js.\nALEX: Let's go.",
	}
	tts := &fakeTTS{}
	repo := newMemEpisodeRepo()
	svc := narrativeFixture(t, llm, tts, repo)

	ep, err := svc.ProduceEpisode(context.Background(), "https://github.com/octocat/hello")
	if err != nil {
		t.Fatal(err)
	}

	if ep.ID != "octocat/hello" {
		t.Errorf("episode id %q, want octocat/hello", ep.ID)
	}
	if ep.Outline != goodOutline {
		t.Error("outline must be carried on the episode")
	}
	if len(ep.Audio) == 0 {
		t.Error("audio must be synthesized")
	}
	// Alternating speakers → three segments with the right voices.
	wantVoices := []string{VoiceAlex, VoiceSam, VoiceAlex}
	if len(tts.voices) != len(wantVoices) {
		t.Fatalf("got %d segments, want %d", len(tts.voices), len(wantVoices))
	}
	for i, v := range wantVoices {
		if tts.voices[i] != v {
			t.Errorf("segment %d voice %s, want %s", i, tts.voices[i], v)
		}
	}
	// Persisted.
	if stored, _ := repo.FindByID(context.Background(), "octocat/hello"); stored.ID == "" {
		t.Error("episode must be persisted")
	}
}

func TestProduceEpisode_OutlineGateRejectsThinOutlines(t *testing.T) {
	llm := &fakeLLM{outline: "1. only beat\n2. second beat"}
	svc := narrativeFixture(t, llm, &fakeTTS{}, nil)

	_, err := svc.ProduceEpisode(context.Background(), "octocat/hello")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if llm.calls != 1 {
		t.Errorf("script generation must not run after a rejected outline, got %d LLM calls", llm.calls)
	}
}

func TestProduceEpisode_ReturnsCachedEpisode(t *testing.T) {
	repo := newMemEpisodeRepo()
	repo.byID["octocat/hello"] = models.Episode{
		ID:      "octocat/hello",
		RepoURL: "https://github.com/octocat/hello",
		Script:  "cached",
	}
	llm := &fakeLLM{outline: goodOutline, script: "ALEX: hi"}
	svc := narrativeFixture(t, llm, &fakeTTS{}, repo)

	ep, err := svc.ProduceEpisode(context.Background(), "https://github.com/octocat/hello")
	if err != nil {
		t.Fatal(err)
	}
	if ep.Script != "cached" {
		t.Error("cached episode must be returned as-is")
	}
	if llm.calls != 0 {
		t.Errorf("cache hit must not call the LLM, got %d calls", llm.calls)
	}
}

func TestSplitScript_MergesConsecutiveSameSpeakerLines(t *testing.T) {
	script := "ALEX: First thought.\nALEX: Second thought.\nSAM: Reply.\nAnd a continuation line.\n"

	segs := splitScript(script)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].voice != VoiceAlex || !strings.Contains(segs[0].text, "Second thought.") {
		t.Errorf("segment 0 wrong: %+v", segs[0])
	}
	if segs[1].voice != VoiceSam || !strings.Contains(segs[1].text, "continuation") {
		t.Errorf("unmarked lines must stick with the current speaker: %+v", segs[1])
	}
}
