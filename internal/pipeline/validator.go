package pipeline

import (
	"errors"

	"github.com/chapterforge/chapterforge/internal/regexmatch"
	"github.com/chapterforge/chapterforge/pkg/types"
	"go.uber.org/zap"
)

// Validator is stage 3: a pure, synchronous, CPU-bound scan of the full
// text that enforces the uniqueness contract for every boundary pair.
type Validator struct {
	engine *regexmatch.Engine
	log    *zap.Logger
}

// NewValidator builds a Validator bound to the given regex engine.
func NewValidator(engine *regexmatch.Engine, log *zap.Logger) *Validator {
	return &Validator{engine: engine, log: log}
}

// ValidateAll populates IsValid, StartLine, and EndLine for every pair, in
// input order. It never returns an error: every failure mode is recorded on
// the pair itself, per the stage-3 error contract.
func (v *Validator) ValidateAll(doc *types.Document, pairs []types.BoundaryPair) []types.BoundaryPair {
	lines := doc.Lines()
	out := make([]types.BoundaryPair, len(pairs))

	for i, pair := range pairs {
		out[i] = v.validateOne(lines, pair)
	}

	return out
}

func (v *Validator) validateOne(lines []string, pair types.BoundaryPair) types.BoundaryPair {
	if pair.InvalidReason != "" {
		// Already marked invalid upstream (e.g. a stage-2 LMError); stage 3
		// has nothing to adjudicate.
		return pair
	}

	startLine, ok := v.uniqueMatch(lines, &pair, pair.StartPattern)
	if !ok {
		return pair
	}
	endLine, ok := v.uniqueMatch(lines, &pair, pair.EndPattern)
	if !ok {
		return pair
	}

	if startLine >= endLine {
		pair.InvalidReason = "inverted or equal range: start_line >= end_line"
		pair.IsValid = false
		return pair
	}

	pair.StartLine = startLine
	pair.EndLine = endLine
	pair.IsValid = true
	return pair
}

// uniqueMatch compiles and scans pattern, mutating pair.IsValid/InvalidReason
// in place on any failure. It returns the single matching line and true only
// when the pattern matched exactly one line.
func (v *Validator) uniqueMatch(lines []string, pair *types.BoundaryPair, pattern string) (line int, ok bool) {
	re, err := v.engine.Compile(pattern)
	if err != nil {
		v.markInvalid(pair, (&PatternCompileError{Chapter: pair.Identity.Number, Pattern: pattern, Err: err}).Error())
		return 0, false
	}

	matches, err := v.engine.MatchingLines(re, lines)
	if err != nil {
		if errors.Is(err, regexmatch.ErrTimeout) {
			v.markInvalid(pair, (&PatternTimeoutError{Chapter: pair.Identity.Number, Pattern: pattern}).Error())
		} else {
			v.markInvalid(pair, err.Error())
		}
		return 0, false
	}

	if len(matches) != 1 {
		v.markInvalid(pair, (&UniquenessViolation{Chapter: pair.Identity.Number, Pattern: pattern, Matches: len(matches)}).Error())
		return 0, false
	}

	return matches[0], true
}

func (v *Validator) markInvalid(pair *types.BoundaryPair, reason string) {
	pair.IsValid = false
	pair.InvalidReason = reason
	if v.log != nil {
		v.log.Warn("boundary pair rejected", zap.Int("chapter", pair.Identity.Number), zap.String("reason", reason))
	}
}
