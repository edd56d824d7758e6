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

// BoundaryGenerator is stage 2: one concurrent LM call per identified
// chapter, producing a start/end regex pair.
type BoundaryGenerator struct {
	client      llm.Client
	concurrency int
	log         *zap.Logger
}

// NewBoundaryGenerator builds a BoundaryGenerator. concurrency <= 0 means
// unbounded fan-out.
func NewBoundaryGenerator(client llm.Client, concurrency int, log *zap.Logger) *BoundaryGenerator {
	return &BoundaryGenerator{client: client, concurrency: concurrency, log: log}
}

// GenerateAll issues one LM call per identity concurrently, then reorders
// the results by ascending chapter number so downstream behavior is
// deterministic regardless of completion order. A per-chapter LMError is
// isolated: that chapter's pair is marked invalid and the run proceeds.
func (g *BoundaryGenerator) GenerateAll(ctx context.Context, doc *types.Document, identities []types.ChapterIdentity) []types.BoundaryPair {
	pairs := make([]types.BoundaryPair, len(identities))

	errs := fanOut(ctx, len(identities), g.concurrency, func(taskCtx context.Context, i int) error {
		identity := identities[i]
		pair, err := g.generateOne(taskCtx, doc, identity)
		pairs[i] = pair
		return err
	})

	for i, err := range errs {
		if err != nil {
			pairs[i].Identity = identities[i]
			pairs[i].IsValid = false
			pairs[i].InvalidReason = (&LMError{Chapter: identities[i].Number, Stage: "boundaries", Err: err}).Error()
			if g.log != nil {
				g.log.Warn("boundary generation failed for chapter, marking invalid",
					zap.Int("chapter", identities[i].Number), zap.Error(err))
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		return pairs[a].Identity.Number < pairs[b].Identity.Number
	})

	return pairs
}

func (g *BoundaryGenerator) generateOne(ctx context.Context, doc *types.Document, identity types.ChapterIdentity) (types.BoundaryPair, error) {
	prompt := buildBoundaryPrompt(doc, identity)

	raw, err := g.client.Complete(ctx, llm.CompletionRequest{
		SchemaName: llm.SchemaBoundaries,
		Schema:     llm.BoundariesSchema,
		Prompt:     prompt,
		Metadata:   map[string]string{"chapter_number": strconv.Itoa(identity.Number)},
	})
	if err != nil {
		return types.BoundaryPair{}, err
	}

	var resp llm.BoundariesResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return types.BoundaryPair{}, err
	}

	return types.BoundaryPair{
		Identity:     identity,
		StartPattern: resp.StartPattern,
		EndPattern:   resp.EndPattern,
	}, nil
}

func buildBoundaryPrompt(doc *types.Document, identity types.ChapterIdentity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chapter %d: %q\n\n", identity.Number, identity.Title)
	b.WriteString("Propose a start_pattern matching only the line beginning this chapter, and an ")
	b.WriteString("end_pattern matching only the line where it ends (the start of the next chapter, ")
	b.WriteString("or an end-of-book marker for the final chapter). Each pattern must match exactly ")
	b.WriteString("one line of the following text.\n\n")
	b.WriteString(doc.FullText())
	return b.String()
}
