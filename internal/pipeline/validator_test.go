package pipeline

import (
	"testing"

	"github.com/chapterforge/chapterforge/internal/regexmatch"
	"github.com/chapterforge/chapterforge/pkg/types"
)

func newTestValidator() *Validator {
	return NewValidator(regexmatch.New(0), nil)
}

func samplePair(start, end string) types.BoundaryPair {
	return types.BoundaryPair{
		Identity:     types.ChapterIdentity{Number: 1, Title: "One"},
		StartPattern: start,
		EndPattern:   end,
	}
}

// Invariant 8: a pattern matching zero lines yields is_valid=false.
func TestValidatorZeroMatches(t *testing.T) {
	v := newTestValidator()
	doc := s1Document()
	out := v.ValidateAll(doc, []types.BoundaryPair{samplePair(`^NOWHERE$`, `^CHAPTER 2$`)})
	if out[0].IsValid {
		t.Fatalf("expected is_valid=false for a zero-match start pattern")
	}
}

// Invariant 9: a pattern matching two or more lines yields is_valid=false.
func TestValidatorAmbiguousMatches(t *testing.T) {
	v := newTestValidator()
	doc := s1Document()
	out := v.ValidateAll(doc, []types.BoundaryPair{samplePair(`^CHAPTER 1$`, `^CHAPTER`)})
	if out[0].IsValid {
		t.Fatalf("expected is_valid=false for an ambiguous end pattern")
	}
}

// Invariant 10: start_line >= end_line is rejected even with unique matches.
func TestValidatorInvertedRange(t *testing.T) {
	v := newTestValidator()
	doc := s1Document()
	out := v.ValidateAll(doc, []types.BoundaryPair{samplePair(`^CHAPTER 2$`, `^CHAPTER 1$`)})
	if out[0].IsValid {
		t.Fatalf("expected is_valid=false for an inverted range")
	}
}

// Invariant 11: a pattern failing to compile yields is_valid=false and does
// not panic or abort the batch.
func TestValidatorCompileFailureDoesNotAbortBatch(t *testing.T) {
	v := newTestValidator()
	doc := s1Document()
	pairs := []types.BoundaryPair{
		samplePair(`(unclosed`, `^CHAPTER 2$`),
		samplePair(`^CHAPTER 2$`, `^CHAPTER 3$`),
	}
	out := v.ValidateAll(doc, pairs)

	if out[0].IsValid {
		t.Fatalf("expected is_valid=false for an uncompilable pattern")
	}
	if !out[1].IsValid {
		t.Fatalf("expected the second, valid pair to be unaffected: %+v", out[1])
	}
}

// Stage 3 is a pure function: identical input yields identical output.
func TestValidatorIsPure(t *testing.T) {
	v := newTestValidator()
	doc := s1Document()
	pair := samplePair(`^CHAPTER 1$`, `^CHAPTER 2$`)

	out1 := v.ValidateAll(doc, []types.BoundaryPair{pair})
	out2 := v.ValidateAll(doc, []types.BoundaryPair{pair})

	if out1[0] != out2[0] {
		t.Fatalf("validator is not pure: %+v vs %+v", out1[0], out2[0])
	}
}
