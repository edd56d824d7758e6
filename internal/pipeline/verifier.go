package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chapterforge/chapterforge/internal/llm"
	"github.com/chapterforge/chapterforge/pkg/types"
	"go.uber.org/zap"
)

// defaultVerificationWindow is the number of leading characters of the
// extracted text submitted to the LM for verification.
const defaultVerificationWindow = 2000

// defaultConfidenceThreshold is the minimum confidence required, alongside
// is_correct=true, for verification_passed.
const defaultConfidenceThreshold = 0.8

// Verifier is stage 4: one concurrent LM call per surviving boundary pair,
// confirming the extracted span matches its expected chapter identity.
type Verifier struct {
	client              llm.Client
	concurrency         int
	window              int
	confidenceThreshold float64
	log                 *zap.Logger
}

// NewVerifier builds a Verifier. concurrency <= 0 means unbounded fan-out;
// window <= 0 and threshold <= 0 fall back to their spec defaults.
func NewVerifier(client llm.Client, concurrency, window int, confidenceThreshold float64, log *zap.Logger) *Verifier {
	if window <= 0 {
		window = defaultVerificationWindow
	}
	if confidenceThreshold <= 0 {
		confidenceThreshold = defaultConfidenceThreshold
	}
	return &Verifier{client: client, concurrency: concurrency, window: window, confidenceThreshold: confidenceThreshold, log: log}
}

// VerifyAll extracts the text for every valid pair, asks the LM to confirm
// it, and returns one ExtractionResult per valid pair, sorted ascending by
// chapter number. A per-chapter LMError does not discard that chapter: it
// is reported with verification_passed=false and a note, same as a
// low-confidence verdict.
func (v *Verifier) VerifyAll(ctx context.Context, doc *types.Document, pairs []types.BoundaryPair) []types.ExtractionResult {
	valid := make([]types.BoundaryPair, 0, len(pairs))
	for _, p := range pairs {
		if p.IsValid {
			valid = append(valid, p)
		}
	}

	results := make([]types.ExtractionResult, len(valid))

	errs := fanOut(ctx, len(valid), v.concurrency, func(taskCtx context.Context, i int) error {
		result, err := v.verifyOne(taskCtx, doc, valid[i])
		results[i] = result
		return err
	})

	for i, err := range errs {
		if err != nil {
			results[i].VerificationPassed = false
			results[i].VerificationNotes = (&LMError{Chapter: valid[i].Identity.Number, Stage: "verify", Err: err}).Error()
			if v.log != nil {
				v.log.Warn("verification failed for chapter, reporting as unverified",
					zap.Int("chapter", valid[i].Identity.Number), zap.Error(err))
			}
		}
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].ChapterNumber() < results[b].ChapterNumber()
	})

	return results
}

func (v *Verifier) verifyOne(ctx context.Context, doc *types.Document, pair types.BoundaryPair) (types.ExtractionResult, error) {
	text := doc.Slice(pair.StartLine, pair.EndLine)
	result := types.ExtractionResult{
		Identity:  pair.Identity,
		Text:      text,
		StartLine: pair.StartLine,
		EndLine:   pair.EndLine,
		WordCount: len(strings.Fields(text)),
	}

	window := text
	if runes := []rune(window); len(runes) > v.window {
		window = string(runes[:v.window])
	}

	raw, err := v.client.Complete(ctx, llm.CompletionRequest{
		SchemaName: llm.SchemaVerify,
		Schema:     llm.VerifySchema,
		Prompt:     buildVerifyPrompt(window, pair.Identity),
		Metadata:   map[string]string{"chapter_number": strconv.Itoa(pair.Identity.Number)},
	})
	if err != nil {
		return result, err
	}

	var resp llm.VerifyResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return result, err
	}

	result.VerificationPassed = resp.IsCorrect && resp.Confidence >= v.confidenceThreshold
	result.VerificationNotes = resp.Notes
	return result, nil
}

func buildVerifyPrompt(window string, identity types.ChapterIdentity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Does the following text correctly open chapter %d, %q?\n\n", identity.Number, identity.Title)
	b.WriteString(window)
	return b.String()
}
