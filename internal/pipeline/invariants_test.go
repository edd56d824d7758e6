package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/chapterforge/chapterforge/internal/llm"
)

// Invariant 1, 2, 3: line bounds, exact text, word count.
func TestInvariantLineBoundsTextAndWordCount(t *testing.T) {
	client := llm.NewStubClient()
	client.Identify = func() (llm.IdentifyResponse, error) { return s1Identify(), nil }
	client.Boundaries = s1Boundaries
	client.Verify = s1Verify

	doc := s1Document()
	p := New(client, defaultConfig(), nil)
	results, err := p.ExtractAll(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	for _, r := range results {
		if r.StartLine < 0 || r.StartLine > r.EndLine || r.EndLine >= doc.LineCount() {
			t.Fatalf("chapter %d: line bounds out of range: start=%d end=%d count=%d",
				r.ChapterNumber(), r.StartLine, r.EndLine, doc.LineCount())
		}

		want := strings.Join(doc.Lines()[r.StartLine:r.EndLine+1], "\n")
		if r.Text != want {
			t.Fatalf("chapter %d: text does not equal inclusive line range", r.ChapterNumber())
		}

		if r.WordCount != len(strings.Fields(r.Text)) {
			t.Fatalf("chapter %d: word_count mismatch: got %d, want %d",
				r.ChapterNumber(), r.WordCount, len(strings.Fields(r.Text)))
		}
	}
}

// Invariant 4: sorted ascending by chapter number.
func TestInvariantSortedByChapterNumber(t *testing.T) {
	client := llm.NewStubClient()
	client.Identify = func() (llm.IdentifyResponse, error) { return s1Identify(), nil }
	client.Boundaries = s1Boundaries
	client.Verify = s1Verify

	p := New(client, defaultConfig(), nil)
	results, err := p.ExtractAll(context.Background(), s1Document())
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].ChapterNumber() >= results[i].ChapterNumber() {
			t.Fatalf("not sorted ascending: %+v", results)
		}
	}
}

// Invariant 5: verification_passed implies is_correct and confidence >= threshold.
func TestInvariantVerificationPassedImpliesConfidence(t *testing.T) {
	client := llm.NewStubClient()
	client.Identify = func() (llm.IdentifyResponse, error) { return s1Identify(), nil }
	client.Boundaries = s1Boundaries
	client.Verify = func(n int) (llm.VerifyResponse, error) {
		if n == 3 {
			return llm.VerifyResponse{IsCorrect: true, Confidence: 0.8}, nil
		}
		return llm.VerifyResponse{IsCorrect: true, Confidence: 0.79}, nil
	}

	p := New(client, defaultConfig(), nil)
	results, err := p.ExtractAll(context.Background(), s1Document())
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	for _, r := range results {
		if r.ChapterNumber() == 3 && !r.VerificationPassed {
			t.Fatalf("chapter 3 with confidence exactly 0.8 must pass (>= threshold)")
		}
		if r.ChapterNumber() != 3 && r.VerificationPassed {
			t.Fatalf("chapter %d with confidence 0.79 must not pass", r.ChapterNumber())
		}
	}
}

// Invariant 6: deterministic re-run with a deterministic stub.
func TestInvariantDeterministicRerun(t *testing.T) {
	build := func() llm.Client {
		client := llm.NewStubClient()
		client.Identify = func() (llm.IdentifyResponse, error) { return s1Identify(), nil }
		client.Boundaries = s1Boundaries
		client.Verify = s1Verify
		return client
	}

	p1 := New(build(), defaultConfig(), nil)
	r1, err := p1.ExtractAll(context.Background(), s1Document())
	if err != nil {
		t.Fatalf("ExtractAll (1): %v", err)
	}

	p2 := New(build(), defaultConfig(), nil)
	r2, err := p2.ExtractAll(context.Background(), s1Document())
	if err != nil {
		t.Fatalf("ExtractAll (2): %v", err)
	}

	if len(r1) != len(r2) {
		t.Fatalf("non-deterministic result length: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Fatalf("non-deterministic result at index %d: %+v vs %+v", i, r1[i], r2[i])
		}
	}
}

// Invariant 12: a stage-2 LM failure for one chapter leaves the others
// intact, including through stage 4.
func TestInvariantIsolatedFailureLeavesOthersIntact(t *testing.T) {
	client := llm.NewStubClient()
	client.Identify = func() (llm.IdentifyResponse, error) { return s1Identify(), nil }
	verifyCalls := map[int]bool{}
	client.Boundaries = func(n int) (llm.BoundariesResponse, error) {
		if n == 1 {
			return llm.BoundariesResponse{}, context.DeadlineExceeded
		}
		return s1Boundaries(n)
	}
	client.Verify = func(n int) (llm.VerifyResponse, error) {
		verifyCalls[n] = true
		return s1Verify(n)
	}

	p := New(client, defaultConfig(), nil)
	results, err := p.ExtractAll(context.Background(), s1Document())
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 surviving chapters, got %d", len(results))
	}
	if verifyCalls[1] {
		t.Fatalf("stage 4 must not be invoked for a chapter dropped in stage 2")
	}
}

// Identifier: duplicate chapter numbers are a fatal IdentityConflict.
func TestIdentifierDuplicateNumbersConflict(t *testing.T) {
	client := llm.NewStubClient()
	client.Identify = func() (llm.IdentifyResponse, error) {
		return llm.IdentifyResponse{ChapterCount: 2, ChapterList: "1. One\n1. One Again"}, nil
	}

	id := NewIdentifier(client, 0, nil)
	_, _, err := id.Identify(context.Background(), s1Document())
	if err == nil {
		t.Fatalf("expected IdentityConflict for duplicate chapter numbers")
	}
	var conflict *IdentityConflict
	if !asIdentityConflict(err, &conflict) {
		t.Fatalf("expected *IdentityConflict, got %T: %v", err, err)
	}
}

func asIdentityConflict(err error, target **IdentityConflict) bool {
	if c, ok := err.(*IdentityConflict); ok {
		*target = c
		return true
	}
	return false
}

// Identifier: unparseable list lines are skipped, not fatal.
func TestIdentifierSkipsUnparseableLines(t *testing.T) {
	client := llm.NewStubClient()
	client.Identify = func() (llm.IdentifyResponse, error) {
		return llm.IdentifyResponse{ChapterCount: 2, ChapterList: "1. One\nnot a chapter line\n2. Two"}, nil
	}

	id := NewIdentifier(client, 0, nil)
	count, identities, err := id.Identify(context.Background(), s1Document())
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if count != 2 || len(identities) != 2 {
		t.Fatalf("expected 2 parsed identities, got %d (%v)", len(identities), identities)
	}
}
