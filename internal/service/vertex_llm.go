package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"repocast/internal/models"
)

// VertexLLM implements the TextGenerator interface using Google's Vertex AI.
type VertexLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexLLM creates a new Vertex AI text-generation client.
func NewVertexLLM(projectID, location string) (*VertexLLM, error) {
	ctx := context.Background()

	// Get credentials from environment or service account file
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash-lite-001")
	model.SetTemperature(0.7)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &VertexLLM{
		client: client,
		model:  model,
	}, nil
}

// GenerateResponse generates a response using the Vertex AI model.
func (l *VertexLLM) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	resp, err := l.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type")
	}
	return string(text), nil
}

// Close closes the Vertex AI client.
func (l *VertexLLM) Close() error {
	return l.client.Close()
}

// ---- Prompt builders -------------------------------------------------------

// buildOutlinePrompt turns the verified fact sheet into an episode outline
// request. Every claim the model is allowed to make is pinned to a citation,
// so the outline stays inside the verified evidence.
func buildOutlinePrompt(data models.EpisodeData) string {
	var cites strings.Builder
	for i, c := range data.Citations {
		cites.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Display()))
	}

	return fmt.Sprintf(`You are outlining a short two-host podcast episode about a codebase.
Use ONLY the facts below; do not invent files or behavior.

What the project does:
%s

Where execution starts:
%s

The most important code:
%s

Patterns and conventions:
%s

A first task for a newcomer:
%s

Verified citations (reference them by file path):
%s
Write an outline with at least 5 numbered beats. Each beat states one fact and
names the file backing it.`,
		data.Purpose, data.Entrypoints, data.Hotspots, data.Patterns, data.MicroTask, cites.String())
}

// buildScriptPrompt turns a gated outline into a two-speaker script request.
func buildScriptPrompt(outline string) string {
	return fmt.Sprintf(`Turn this outline into a conversational podcast script for two hosts,
ALEX and SAM. Keep every file reference from the outline verbatim. Mark each
line with the speaker name followed by a colon, e.g. "ALEX: ...".

Outline:
%s`, outline)
}
