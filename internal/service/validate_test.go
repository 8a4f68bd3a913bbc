package service

import (
	"strings"
	"testing"

	"repocast/internal/models"
)

func validEpisodeData() models.EpisodeData {
	return models.EpisodeData{
		Purpose:     strings.Repeat("A CLI tool for syncing notes across devices. ", 3),
		Entrypoints: "cmd/main.go wires everything together.",
		Hotspots:    "internal/sync/engine.go does the heavy lifting.",
		Patterns:    strings.Repeat("Repository pattern with consumer-side interfaces. ", 2),
		MicroTask:   "1. Fork the repo\n2. Add a test\n3. Fix the typo\n4. Run the suite\n5. Open a PR",
		Citations: []models.Citation{
			{Filepath: "cmd/main.go", LineStart: 1, LineEnd: 20},
			{Filepath: "internal/sync/engine.go"},
			{Filepath: "README.md"},
		},
	}
}

func TestValidate_AllChecksPass(t *testing.T) {
	res := Validate(validEpisodeData())
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
}

func TestValidate_ReportsOnlyCitationErrorWhenStepsPresent(t *testing.T) {
	data := validEpisodeData()
	data.Citations = nil
	data.MicroTask = "Step 1: x\nStep 2: y\nStep 3: z\nStep 4: w\nStep 5: v"

	res := Validate(data)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(res.Errors), res.Errors)
	}
	if !strings.Contains(res.Errors[0], "citations") {
		t.Errorf("expected a citation-count error, got %q", res.Errors[0])
	}
}

func TestValidate_AllViolationsReportedTogether(t *testing.T) {
	res := Validate(models.EpisodeData{})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 4 {
		t.Fatalf("expected 4 independent violations, got %d: %v", len(res.Errors), res.Errors)
	}
}

func TestCountSteps_MarkerStyles(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"numbered dots", "1. first\n2. second\n3. third", 3},
		{"numbered parens", "1) first\n2) second", 2},
		{"step prefix", "Step 1: a\nStep 2: b\nStep 3: c", 3},
		{"dashes", "- one\n- two\n- three\n- four", 4},
		{"stars", "* one\n* two", 2},
		{"bullets", "• one\n• two\n• three", 3},
		{"lettered", "a) one\nb) two\nc) three", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountSteps(tc.text); got != tc.want {
				t.Errorf("CountSteps(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestCountSteps_TakesMaximumAcrossStyles(t *testing.T) {
	// Three bullets vs two numbered lines: the max (3) wins.
	text := "- alpha\n- beta\n- gamma\n1. one\n2. two"
	if got := CountSteps(text); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestCountSteps_FallsBackToNonTrivialLines(t *testing.T) {
	text := "first do the thing\nthen the other thing\nok\nfinally verify everything"
	// "ok" is trivial (≤10 chars); the other three lines count.
	if got := CountSteps(text); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}
