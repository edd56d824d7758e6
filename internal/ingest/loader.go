// Package ingest turns a stored or uploaded source document into the
// pipeline's types.Document, using internal/parser for format-specific text
// extraction and internal/storage for retrieval.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chapterforge/chapterforge/internal/parser"
	"github.com/chapterforge/chapterforge/internal/storage"
	"github.com/chapterforge/chapterforge/pkg/types"
)

// Loader resolves a stored path into a ready-to-run Document.
type Loader struct {
	adapter storage.Adapter
	parsers parser.Factory
}

// NewLoader builds a Loader over the given storage adapter and parser
// factory.
func NewLoader(adapter storage.Adapter, parsers parser.Factory) *Loader {
	return &Loader{adapter: adapter, parsers: parsers}
}

// Load fetches path from storage, parses it according to its extension,
// and returns a normalized Document.
func (l *Loader) Load(ctx context.Context, path string) (*types.Document, error) {
	rc, err := l.adapter.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to fetch %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read %s: %w", path, err)
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	p, err := l.parsers.GetParser(format)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	text, err := p.Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to parse %s: %w", path, err)
	}

	return types.NewDocument(text), nil
}

// LoadBytes parses raw bytes directly, for callers (e.g. an HTTP upload
// handler) that already have the document in memory and know its format.
func (l *Loader) LoadBytes(ctx context.Context, format string, data []byte) (*types.Document, error) {
	p, err := l.parsers.GetParser(format)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	text, err := p.Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to parse document: %w", err)
	}
	return types.NewDocument(text), nil
}
