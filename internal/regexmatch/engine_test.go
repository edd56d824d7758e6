package regexmatch

import (
	"testing"
	"time"
)

func TestMatchingLinesUnique(t *testing.T) {
	e := New(0)
	re, err := e.Compile(`^CHAPTER 1$`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	lines := []string{"Prologue", "text a", "CHAPTER 1", "text b", "CHAPTER 2"}
	matches, err := e.MatchingLines(re, lines)
	if err != nil {
		t.Fatalf("MatchingLines: %v", err)
	}
	if len(matches) != 1 || matches[0] != 2 {
		t.Fatalf("expected exactly [2], got %v", matches)
	}
}

func TestMatchingLinesCaseInsensitive(t *testing.T) {
	e := New(0)
	re, err := e.Compile(`^chapter 1$`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	matches, err := e.MatchingLines(re, []string{"CHAPTER 1"})
	if err != nil {
		t.Fatalf("MatchingLines: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected case-insensitive match, got %v", matches)
	}
}

func TestMatchingLinesAmbiguous(t *testing.T) {
	e := New(0)
	re, err := e.Compile(`^CHAPTER`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	lines := []string{"CHAPTER 1", "text", "CHAPTER 2", "CHAPTER 3"}
	matches, err := e.MatchingLines(re, lines)
	if err != nil {
		t.Fatalf("MatchingLines: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 ambiguous matches, got %v", matches)
	}
}

func TestMatchingLinesZero(t *testing.T) {
	e := New(0)
	re, err := e.Compile(`^NOWHERE$`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	matches, err := e.MatchingLines(re, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("MatchingLines: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected zero matches, got %v", matches)
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	e := New(0)
	if _, err := e.Compile(`(unclosed`); err == nil {
		t.Fatalf("expected compile error for unbalanced pattern")
	}
}

func TestMatchTimeout(t *testing.T) {
	e := New(1 * time.Nanosecond)
	re, err := e.Compile(`a`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if _, err := e.MatchingLines(re, []string{"a"}); err == nil {
		t.Fatalf("expected timeout error with a near-zero timeout")
	}
}
