package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"repocast/internal/github"
	"repocast/internal/models"
)

// ---- Collaborator contracts ------------------------------------------------

// TextGenerator is the opaque text-generation service the narrative stage
// drives. Implemented by VertexLLM.
type TextGenerator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// EpisodeRepository persists finished episodes keyed by "owner/name".
// Implemented by the Mongo repository; the stage works with a nil repository
// too (nothing is cached).
type EpisodeRepository interface {
	FindByID(ctx context.Context, id string) (models.Episode, error)
	Upsert(ctx context.Context, ep models.Episode) error
}

// ---- Errors ----------------------------------------------------------------

// ValidationError reports every structural policy violation found in one
// pass, so the caller can show them all at once.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "episode validation failed: " + strings.Join(e.Reasons, "; ")
}

// ---- Narrative stage -------------------------------------------------------

// NarrativeService turns validated episode data into an outline, a
// two-speaker script, and synthesized audio.
type NarrativeService struct {
	episodes *EpisodeService
	llm      TextGenerator
	tts      Synthesizer
	repo     EpisodeRepository
}

// NewNarrativeService wires dependencies. repo may be nil.
func NewNarrativeService(episodes *EpisodeService, llm TextGenerator, tts Synthesizer, repo EpisodeRepository) *NarrativeService {
	return &NarrativeService{
		episodes: episodes,
		llm:      llm,
		tts:      tts,
		repo:     repo,
	}
}

// ProduceEpisode runs the whole flow for repoURL: verified facts → outline →
// script → audio, persisting the result. A cached episode is returned as-is.
func (n *NarrativeService) ProduceEpisode(ctx context.Context, repoURL string) (models.Episode, error) {
	id, err := ParseEpisodeID(repoURL)
	if err != nil {
		return models.Episode{}, err
	}

	if n.repo != nil {
		if ep, err := n.repo.FindByID(ctx, id); err == nil && ep.ID != "" {
			log.Printf("[Narrative] returning cached episode for %s", id)
			return ep, nil
		}
	}

	data, err := n.episodes.BuildEpisodeData(ctx, repoURL)
	if err != nil {
		return models.Episode{}, err
	}

	if res := Validate(data); !res.Valid {
		return models.Episode{}, &ValidationError{Reasons: res.Errors}
	}

	outline, err := n.llm.GenerateResponse(ctx, buildOutlinePrompt(data))
	if err != nil {
		return models.Episode{}, fmt.Errorf("outline generation: %w", err)
	}

	// Gate the generated outline with the same step rule applied to the raw
	// micro-task answer, so one draft is never judged by two yardsticks.
	if steps := CountSteps(outline); steps < minTaskSteps {
		return models.Episode{}, &ValidationError{
			Reasons: []string{fmt.Sprintf("generated outline shows %d beats, need %d", steps, minTaskSteps)},
		}
	}

	script, err := n.llm.GenerateResponse(ctx, buildScriptPrompt(outline))
	if err != nil {
		return models.Episode{}, fmt.Errorf("script generation: %w", err)
	}

	audio, err := n.renderAudio(ctx, script)
	if err != nil {
		return models.Episode{}, fmt.Errorf("audio synthesis: %w", err)
	}

	ep := models.Episode{
		ID:        id,
		RepoURL:   repoURL,
		Data:      data,
		Outline:   outline,
		Script:    script,
		Audio:     audio,
		CreatedAt: time.Now(),
	}

	if n.repo != nil {
		if err := n.repo.Upsert(ctx, ep); err != nil {
			log.Printf("[Narrative] failed to persist episode for %s: %v", repoURL, err)
			return ep, nil // episode still has value
		}
	}
	return ep, nil
}

// renderAudio synthesizes each speaker line with its host voice and
// concatenates the MP3 segments in script order.
func (n *NarrativeService) renderAudio(ctx context.Context, script string) ([]byte, error) {
	var out []byte
	for _, seg := range splitScript(script) {
		audio, err := n.tts.Synthesize(ctx, seg.text, seg.voice)
		if err != nil {
			return nil, err
		}
		out = append(out, audio...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("script produced no speakable lines")
	}
	return out, nil
}

// segment is one contiguous run of lines by a single speaker.
type segment struct {
	voice string
	text  string
}

// splitScript breaks a "SPEAKER: line" script into per-voice segments,
// merging consecutive lines by the same speaker. Unmarked lines stick with
// the current speaker.
func splitScript(script string) []segment {
	var segs []segment
	voice := VoiceAlex

	appendLine := func(v, text string) {
		if text == "" {
			return
		}
		if len(segs) > 0 && segs[len(segs)-1].voice == v {
			segs[len(segs)-1].text += " " + text
			return
		}
		segs = append(segs, segment{voice: v, text: text})
	}

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ALEX:"):
			voice = VoiceAlex
			appendLine(voice, strings.TrimSpace(strings.TrimPrefix(line, "ALEX:")))
		case strings.HasPrefix(line, "SAM:"):
			voice = VoiceSam
			appendLine(voice, strings.TrimSpace(strings.TrimPrefix(line, "SAM:")))
		default:
			appendLine(voice, line)
		}
	}
	return segs
}

// ParseEpisodeID canonicalizes repoURL to the "owner/name" episode key.
func ParseEpisodeID(repoURL string) (string, error) {
	ref, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}
	return ref.FullName(), nil
}
