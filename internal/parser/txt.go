package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// TXTParser parses plain text files. Unlike the heuristic chapter splitter
// this is adapted from, it returns the whole text without splitting it —
// chapter boundaries are the pipeline's job, not ingestion's.
type TXTParser struct{}

// NewTXTParser creates a new TXT parser.
func NewTXTParser() *TXTParser {
	return &TXTParser{}
}

// Parse returns the file's text, trimming a leading UTF-8 BOM if present.
// Lines are re-joined with "\n" (a trailing "\r" on a line is dropped) and
// the result always ends with a newline.
func (p *TXTParser) Parse(ctx context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading text: %w", err)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no content found in text file")
	}

	return b.String(), nil
}

// SupportedFormats returns the formats this parser supports.
func (p *TXTParser) SupportedFormats() []string {
	return []string{"txt"}
}
