// Package regexmatch wraps stdlib regexp behind a narrow contract: compile
// once, then scan a document's lines with a per-line timeout. RE2 (stdlib
// regexp's engine) never backtracks catastrophically, but the per-line
// timeout is still enforced so a pathological pattern — or an engine swap —
// can never hang the validator.
package regexmatch

import (
	"fmt"
	"regexp"
	"time"
)

// DefaultMatchTimeout is applied when a caller does not configure one.
const DefaultMatchTimeout = 100 * time.Millisecond

// Engine compiles and matches patterns with case-insensitive, multiline
// semantics, as required by the uniqueness contract.
type Engine struct {
	matchTimeout time.Duration
}

// New builds an Engine with the given per-line match timeout. A
// non-positive timeout falls back to DefaultMatchTimeout.
func New(matchTimeout time.Duration) *Engine {
	if matchTimeout <= 0 {
		matchTimeout = DefaultMatchTimeout
	}
	return &Engine{matchTimeout: matchTimeout}
}

// Compile compiles pattern with case-insensitive, multiline flags.
func (e *Engine) Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?im)` + pattern)
}

// MatchingLines returns the 0-based indices of every line on which re
// matches anywhere. If matching any single line exceeds the engine's
// timeout, it returns ErrTimeout naming the offending line.
func (e *Engine) MatchingLines(re *regexp.Regexp, lines []string) ([]int, error) {
	var matches []int

	for i, line := range lines {
		ok, err := e.matchLineWithTimeout(re, line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d", err, i)
		}
		if ok {
			matches = append(matches, i)
		}
	}

	return matches, nil
}

// ErrTimeout is returned (wrapped with the offending line index) when a
// single line's match exceeds the engine's configured timeout.
var ErrTimeout = fmt.Errorf("regexmatch: match exceeded timeout")

func (e *Engine) matchLineWithTimeout(re *regexp.Regexp, line string) (bool, error) {
	result := make(chan bool, 1)
	go func() {
		result <- re.MatchString(line)
	}()

	select {
	case ok := <-result:
		return ok, nil
	case <-time.After(e.matchTimeout):
		return false, ErrTimeout
	}
}
