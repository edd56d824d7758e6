package pipeline

import (
	"context"
	"time"

	"github.com/chapterforge/chapterforge/internal/llm"
	"github.com/chapterforge/chapterforge/internal/regexmatch"
	"github.com/chapterforge/chapterforge/pkg/types"
	"go.uber.org/zap"
)

// Pipeline owns the Document for the duration of one ExtractAll call,
// sequences the four stages, and aggregates results. It is the only type
// most callers need to construct directly.
type Pipeline struct {
	identifier *Identifier
	boundaries *BoundaryGenerator
	validator  *Validator
	verifier   *Verifier
	log        *zap.Logger
}

// New builds a Pipeline from an LM client and the tunables named in
// types.PipelineConfig. The same client is used for all three LM-driven
// stages; callers wanting different providers per stage should construct
// the stage types directly instead of using New.
func New(client llm.Client, cfg types.PipelineConfig, log *zap.Logger) *Pipeline {
	engine := regexmatch.New(time.Duration(cfg.RegexMatchTimeoutMs) * time.Millisecond)
	return &Pipeline{
		identifier: NewIdentifier(client, cfg.HeadSampleLines, log),
		boundaries: NewBoundaryGenerator(client, cfg.BoundaryConcurrency, log),
		validator:  NewValidator(engine, log),
		verifier:   NewVerifier(client, cfg.VerifyConcurrency, cfg.VerificationWindow, cfg.ConfidenceThreshold, log),
		log:        log,
	}
}

// ExtractAll runs every stage in order and returns the results for pairs
// that survived stage 3, sorted ascending by chapter number. Only a stage-1
// LMError or IdentityConflict surfaces as a returned error; every other
// failure mode is represented in the returned data. Cancelling ctx cancels
// every outstanding LM call and returns no partial results.
func (p *Pipeline) ExtractAll(ctx context.Context, doc *types.Document) ([]types.ExtractionResult, error) {
	_, identities, err := p.identifier.Identify(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(identities) == 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs := p.boundaries.GenerateAll(ctx, doc, identities)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs = p.validator.ValidateAll(doc, pairs)

	results := p.verifier.VerifyAll(ctx, doc, pairs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Identifier exposes stage 1 directly, for callers wanting per-stage
// diagnostics rather than the aggregated ExtractAll result.
func (p *Pipeline) Identifier() *Identifier { return p.identifier }

// BoundaryGenerator exposes stage 2 directly.
func (p *Pipeline) BoundaryGenerator() *BoundaryGenerator { return p.boundaries }

// Validator exposes stage 3 directly.
func (p *Pipeline) Validator() *Validator { return p.validator }

// Verifier exposes stage 4 directly.
func (p *Pipeline) Verifier() *Verifier { return p.verifier }
