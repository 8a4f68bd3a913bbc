package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"repocast/internal/analysis"
	"repocast/internal/models"
)

// QueryClient is the slice of the analysis service the gatherer needs.
type QueryClient interface {
	Ask(ctx context.Context, ref models.RepoRef, question, sessionID string, highFidelity bool) (analysis.Answer, error)
}

// question pairs a topic with its prompt and query mode.
type question struct {
	topic        models.QuestionTopic
	text         string
	highFidelity bool
}

// questionPlan is the fixed, ordered interview the gatherer runs against every
// repository. Later questions ride on the same session so the service can use
// earlier answers as context; the two analysis-oriented questions use the
// slower high-fidelity mode.
var questionPlan = []question{
	{
		topic: models.TopicPurpose,
		text: "What does this repository do, and what is its main technology stack? " +
			"Answer in a few sentences and name the files that define the project's purpose.",
	},
	{
		topic: models.TopicEntrypoints,
		text: "Where does execution start in this codebase? List the main entry point files " +
			"and what each one wires up.",
	},
	{
		topic: models.TopicHotspots,
		text: "Which files or modules contain the most important or most complex logic? " +
			"Name them and say why they matter.",
	},
	{
		topic: models.TopicPatterns,
		text: "What recurring design patterns, conventions, or architectural decisions does " +
			"this codebase follow? Cite the files where each pattern shows up.",
		highFidelity: true,
	},
	{
		topic: models.TopicMicroTask,
		text: "Propose one small, concrete first contribution a newcomer could make to this " +
			"repository. Break it into numbered steps and name the files each step touches.",
		highFidelity: true,
	},
}

// Gatherer runs the fixed five-question interview against an indexed
// repository and collects the raw answers.
type Gatherer struct {
	client QueryClient
}

// NewGatherer wires the analysis client.
func NewGatherer(client QueryClient) *Gatherer {
	return &Gatherer{client: client}
}

// Gather issues all five questions in order under one session ID and returns
// the answers in the same order. Any failed call fails the whole gather with
// ErrQueryFailed—partial answers are never salvaged.
func (g *Gatherer) Gather(ctx context.Context, ref models.RepoRef) ([]models.RawAnswer, error) {
	sessionID := uuid.New().String()
	answers := make([]models.RawAnswer, 0, len(questionPlan))

	for _, q := range questionPlan {
		ans, err := g.client.Ask(ctx, ref, q.text, sessionID, q.highFidelity)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrQueryFailed, q.topic, err)
		}
		log.Printf("[Gatherer] %s: %d chars, %d source paths", q.topic, len(ans.Text), len(ans.SourcePaths))

		answers = append(answers, models.RawAnswer{
			Topic:          q.topic,
			Text:           ans.Text,
			MentionedPaths: ans.SourcePaths,
		})
	}

	return answers, nil
}
