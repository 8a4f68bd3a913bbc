package service

import (
	"context"
	"errors"
	"testing"

	"repocast/internal/analysis"
	"repocast/internal/models"
)

// fakeQueryClient records every Ask call.
type fakeQueryClient struct {
	calls []struct {
		question     string
		sessionID    string
		highFidelity bool
	}
	failAt int // 1-based call index to fail on; 0 = never
}

func (f *fakeQueryClient) Ask(ctx context.Context, ref models.RepoRef, question, sessionID string, highFidelity bool) (analysis.Answer, error) {
	f.calls = append(f.calls, struct {
		question     string
		sessionID    string
		highFidelity bool
	}{question, sessionID, highFidelity})

	if f.failAt == len(f.calls) {
		return analysis.Answer{}, errors.New("service error")
	}
	return analysis.Answer{
		Text:        "answer " + question[:10],
		SourcePaths: []string{"src/index.js"},
	}, nil
}

func TestGather_FiveQuestionsFixedOrder(t *testing.T) {
	client := &fakeQueryClient{}
	g := NewGatherer(client)

	answers, err := g.Gather(context.Background(), testRef)
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 5 {
		t.Fatalf("expected 5 answers, got %d", len(answers))
	}

	wantOrder := []models.QuestionTopic{
		models.TopicPurpose,
		models.TopicEntrypoints,
		models.TopicHotspots,
		models.TopicPatterns,
		models.TopicMicroTask,
	}
	for i, topic := range wantOrder {
		if answers[i].Topic != topic {
			t.Errorf("answer %d has topic %s, want %s", i, answers[i].Topic, topic)
		}
	}
}

func TestGather_SharedSessionAndQueryModes(t *testing.T) {
	client := &fakeQueryClient{}
	g := NewGatherer(client)

	if _, err := g.Gather(context.Background(), testRef); err != nil {
		t.Fatal(err)
	}

	session := client.calls[0].sessionID
	if session == "" {
		t.Fatal("session id must be set")
	}
	for i, call := range client.calls {
		if call.sessionID != session {
			t.Errorf("call %d used session %q, want shared %q", i, call.sessionID, session)
		}
	}

	// Only the two analysis-oriented questions use high-fidelity mode.
	wantFidelity := []bool{false, false, false, true, true}
	for i, call := range client.calls {
		if call.highFidelity != wantFidelity[i] {
			t.Errorf("call %d highFidelity=%v, want %v", i, call.highFidelity, wantFidelity[i])
		}
	}
}

func TestGather_AnyFailureFailsWhole(t *testing.T) {
	client := &fakeQueryClient{failAt: 3}
	g := NewGatherer(client)

	answers, err := g.Gather(context.Background(), testRef)
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatalf("got %v, want ErrQueryFailed", err)
	}
	if answers != nil {
		t.Errorf("no partial answers allowed, got %d", len(answers))
	}
}

func TestGather_FreshSessionPerGather(t *testing.T) {
	client := &fakeQueryClient{}
	g := NewGatherer(client)

	if _, err := g.Gather(context.Background(), testRef); err != nil {
		t.Fatal(err)
	}
	first := client.calls[0].sessionID

	if _, err := g.Gather(context.Background(), testRef); err != nil {
		t.Fatal(err)
	}
	second := client.calls[5].sessionID

	if first == second {
		t.Error("each gather must open its own session")
	}
}
