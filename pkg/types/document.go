package types

import "strings"

// Document is the full input text the pipeline operates on, conceptually an
// ordered sequence of lines indexed from 0. Immutable once built; shared
// read-only by every stage.
type Document struct {
	lines []string
}

// NewDocument normalizes line endings to "\n" and splits text into lines.
func NewDocument(text string) *Document {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return &Document{lines: strings.Split(normalized, "\n")}
}

// Lines returns the document's lines. Callers must not mutate the slice.
func (d *Document) Lines() []string {
	return d.lines
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns the line at the given 0-based index.
func (d *Document) Line(i int) string {
	return d.lines[i]
}

// HeadSample returns the first n lines joined by "\n", or the whole document
// if it has fewer than n lines.
func (d *Document) HeadSample(n int) string {
	if n > len(d.lines) {
		n = len(d.lines)
	}
	return strings.Join(d.lines[:n], "\n")
}

// FullText returns every line joined by "\n".
func (d *Document) FullText() string {
	return strings.Join(d.lines, "\n")
}

// Slice returns lines [start, end] (inclusive) joined by "\n".
func (d *Document) Slice(start, end int) string {
	return strings.Join(d.lines[start:end+1], "\n")
}
