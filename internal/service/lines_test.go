package service

import (
	"strings"
	"testing"
)

func TestResolveLineRange_FunctionDeclaration(t *testing.T) {
	content := "function parseUrl(s) {\n  return s;\n}\n"

	r := ResolveLineRange(content, "parseUrl")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	if r.Start != 1 || r.End != 3 {
		t.Errorf("got {%d,%d}, want {1,3}", r.Start, r.End)
	}
}

func TestResolveLineRange_NoMatch(t *testing.T) {
	content := "alpha\nbeta\ngamma\n"

	if r := ResolveLineRange(content, "xyz123"); r != nil {
		t.Errorf("expected nil, got {%d,%d}", r.Start, r.End)
	}
}

func TestResolveLineRange_FirstDeclarationWins(t *testing.T) {
	content := strings.Join([]string{
		"const handler = makeHandler();", // line 1: declaration
		"doStuff();",
		"const handler = rebind();", // later re-declaration must lose
	}, "\n")

	r := ResolveLineRange(content, "handler")
	if r == nil || r.Start != 1 {
		t.Fatalf("expected first declaration at line 1, got %+v", r)
	}
}

func TestResolveLineRange_UnmatchedBraceFallsBackTo20Lines(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("function run() {\n") // opening brace never closes
	for i := 0; i < 60; i++ {
		sb.WriteString("  work();\n")
	}

	r := ResolveLineRange(sb.String(), "run")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	if r.Start != 1 || r.End != 20 {
		t.Errorf("got {%d,%d}, want {1,20}", r.Start, r.End)
	}
}

func TestResolveLineRange_FallbackClampedToEOF(t *testing.T) {
	content := "function run() {\n  a();\n  b();\n"

	r := ResolveLineRange(content, "run")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	// Three real lines; the trailing newline must not add a fourth.
	if r.End != 3 {
		t.Errorf("end %d, want 3 (last real line)", r.End)
	}
}

func TestResolveLineRange_TrailingNewlineNotCounted(t *testing.T) {
	// Two-line file ending in a newline: the range must stop at line 2.
	r := ResolveLineRange("function run() {\n  a();\n", "run")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	if r.Start != 1 || r.End != 2 {
		t.Errorf("got {%d,%d}, want {1,2}", r.Start, r.End)
	}

	// Same for the substring fallback near end of file.
	r = ResolveLineRange("one\ntwo frobnicate\nthree\n", "frobnicate")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	if r.Start != 2 || r.End != 3 {
		t.Errorf("got {%d,%d}, want {2,3}", r.Start, r.End)
	}
}

func TestResolveLineRange_SubstringFallbackIs5Lines(t *testing.T) {
	content := strings.Join([]string{
		"line one",
		"line two",
		"calls frobnicate here", // line 3
		"line four",
		"line five",
		"line six",
		"line seven",
		"line eight",
	}, "\n")

	r := ResolveLineRange(content, "frobnicate")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	if r.Start != 3 || r.End != 7 {
		t.Errorf("got {%d,%d}, want {3,7}", r.Start, r.End)
	}
}

func TestResolveLineRange_EscapesSpecialCharacters(t *testing.T) {
	content := "safe line\nuses a.b* somewhere\nanother line\n"

	// Must not panic and must not treat '.' or '*' as pattern syntax.
	r := ResolveLineRange(content, "a.b*")
	if r == nil {
		t.Fatal("expected substring match, got nil")
	}
	if r.Start != 2 {
		t.Errorf("matched line %d, want 2", r.Start)
	}

	if r := ResolveLineRange("aXbY no literal match\n", "a.b*"); r != nil {
		t.Errorf("escaped term must not match unintended lines, got %+v", r)
	}
}

func TestResolveLineRange_Deterministic(t *testing.T) {
	content := "function greet() {\n  hello();\n}\nfunction greet() {\n  again();\n}\n"

	first := ResolveLineRange(content, "greet")
	for i := 0; i < 10; i++ {
		next := ResolveLineRange(content, "greet")
		if *next != *first {
			t.Fatalf("run %d returned %+v, first run returned %+v", i, next, first)
		}
	}
}

func TestResolveLineRange_AssignmentStyleDeclaration(t *testing.T) {
	content := "setup()\nparseUrl = (s) => {\n  return s;\n}\n"

	r := ResolveLineRange(content, "parseUrl")
	if r == nil {
		t.Fatal("expected a range, got nil")
	}
	if r.Start != 2 || r.End != 4 {
		t.Errorf("got {%d,%d}, want {2,4}", r.Start, r.End)
	}
}
