package service

import (
	"fmt"
	"regexp"
	"strings"

	"repocast/internal/models"
)

// Episode structural policy. Violations are reported together so callers can
// show the user everything wrong at once.
const (
	// MinCitations is the minimum-evidence floor for an episode.
	MinCitations = 3
	// MaxCitations caps how many citations an episode carries.
	MaxCitations = 10

	minNarrativeChars = 50
	minTaskSteps      = 5
)

// Step-marker heuristics. The micro-task text comes from generated prose, so
// we accept several list styles and take the maximum count across them rather
// than trying to parse one true format.
var stepMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?mi)^\s*(?:step\s*)?\d+\s*[.):]\s`), // 1. / 2) / Step 3:
	regexp.MustCompile(`(?m)^\s*[-*•]\s`),                    // - / * / •
	regexp.MustCompile(`(?m)^\s*[a-zA-Z][.)]\s`),             // a) / A.
}

// CountSteps estimates how many discrete steps text contains: the maximum
// match count across the marker heuristics, falling back to counting
// non-trivial lines (>10 chars) when no marker style is present at all.
//
// The same rule gates both the raw micro-task answer and the generated
// outline, so one draft is never judged by two different yardsticks.
func CountSteps(text string) int {
	best := 0
	for _, m := range stepMarkers {
		if n := len(m.FindAllString(text, -1)); n > best {
			best = n
		}
	}
	if best > 0 {
		return best
	}

	lines := 0
	for _, line := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(line)) > 10 {
			lines++
		}
	}
	return lines
}

// Validate checks episode data against the structural policy. All checks are
// independent; every violation found is reported. It never fails the caller
// itself—the caller decides whether to abort.
func Validate(data models.EpisodeData) models.ValidationResult {
	var errs []string

	if len(data.Citations) < MinCitations {
		errs = append(errs, fmt.Sprintf("need at least %d citations, have %d", MinCitations, len(data.Citations)))
	}
	if len(data.Purpose) < minNarrativeChars {
		errs = append(errs, fmt.Sprintf("purpose text too short (%d chars, need %d)", len(data.Purpose), minNarrativeChars))
	}
	if len(data.Patterns) < minNarrativeChars {
		errs = append(errs, fmt.Sprintf("patterns text too short (%d chars, need %d)", len(data.Patterns), minNarrativeChars))
	}
	if n := CountSteps(data.MicroTask); n < minTaskSteps {
		errs = append(errs, fmt.Sprintf("micro-task shows %d steps, need %d", n, minTaskSteps))
	}

	return models.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
