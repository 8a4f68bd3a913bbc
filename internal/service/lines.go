package service

import (
	"regexp"
	"strings"

	"repocast/internal/models"
)

// Line-range resolution is a language-agnostic heuristic over source text:
// find the line that most plausibly declares the term, then estimate where
// that declaration's block ends. It is a pattern-matching policy, not a
// parser—good enough to anchor a citation, cheap enough to run per term.

const (
	// braceScanLimit bounds the forward scan for a matching closing brace.
	braceScanLimit = 50
	// declFallbackSpan is used when brace balancing gives up.
	declFallbackSpan = 20
	// substringSpan is the span granted to a plain substring hit.
	substringSpan = 5
)

// declarationPatterns build regexes matching common declaration shapes for a
// term across mainstream languages. Order matters only within a line; across
// lines, the first (topmost) line matching any shape wins.
var declarationShapes = []string{
	`^\s*(?:export\s+)?(?:async\s+)?function\s+%s\b`, // function decl
	`^\s*(?:export\s+)?(?:const|let|var)\s+%s\b`,     // binding form
	`^\s*(?:export\s+)?(?:abstract\s+)?class\s+%s\b`, // class/type definition
	`^\s*(?:export\s+)?type\s+%s\b`,
	`^\s*(?:func|def)\s+(?:\([^)]*\)\s+)?%s\b`, // go/python style
	`^\s*%s\s*[:=]`,                            // assignment-style (arrow fns, members)
}

// ResolveLineRange locates the most relevant 1-indexed line span for term
// inside content, or nil when no heuristic matches. Deterministic: the same
// content and term always produce the same range.
//
// Terms are regexp-escaped before being embedded in a pattern, so terms
// lifted from generated text cannot inject or break the patterns.
func ResolveLineRange(content, term string) *models.LineRange {
	if term == "" || content == "" {
		return nil
	}
	lines := splitLines(content)
	quoted := regexp.QuoteMeta(term)

	patterns := make([]*regexp.Regexp, 0, len(declarationShapes))
	for _, shape := range declarationShapes {
		patterns = append(patterns, regexp.MustCompile(strings.Replace(shape, "%s", quoted, 1)))
	}

	// 1. First declaration-shaped line wins; earlier declarations take
	//    precedence over later re-use of the same name.
	for i, line := range lines {
		for _, p := range patterns {
			if p.MatchString(line) {
				return &models.LineRange{Start: i + 1, End: blockEnd(lines, i)}
			}
		}
	}

	// 2. No declaration anywhere: fall back to a plain substring hit.
	for i, line := range lines {
		if strings.Contains(line, term) {
			end := i + substringSpan
			if end > len(lines) {
				end = len(lines)
			}
			return &models.LineRange{Start: i + 1, End: end}
		}
	}

	return nil
}

// splitLines splits content into its real lines: a trailing newline does not
// produce a phantom empty line, so clamping to len(lines) stays inside the
// file.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// blockEnd scans forward from the declaration at index start, counting brace
// balance, and returns the 1-indexed line where the opening brace closes.
// When no brace closes within braceScanLimit lines, or none opens at all,
// it falls back to a fixed declFallbackSpan span clamped to the file.
func blockEnd(lines []string, start int) int {
	depth := 0
	opened := false

	limit := start + braceScanLimit
	if limit > len(lines) {
		limit = len(lines)
	}

	for i := start; i < limit; i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i + 1
		}
	}

	end := start + declFallbackSpan
	if end > len(lines) {
		end = len(lines)
	}
	return end
}
