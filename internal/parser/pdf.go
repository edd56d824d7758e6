package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser parses PDF files using pdfcpu to walk pages and recover the
// raw content streams, then pulls text out of the show-text operators
// ("Tj"/"TJ") — pdfcpu's own focus is structural manipulation, not prose
// extraction, so this stays a deliberately simple scraper rather than a
// full PDF-to-text renderer.
type PDFParser struct{}

// NewPDFParser creates a new PDF parser.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

var showTextRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj|\[((?:[^\[\]]|\\.)*)\]\s*TJ`)

// Parse extracts a best-effort plain-text rendering of the PDF's pages.
func (p *PDFParser) Parse(ctx context.Context, data []byte) (string, error) {
	rs := bytes.NewReader(data)

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadContext(rs, conf)
	if err != nil {
		return "", fmt.Errorf("pdf: failed to read document: %w", err)
	}

	pageCount, err := api.PageCountFromCtx(pdfCtx)
	if err != nil {
		return "", fmt.Errorf("pdf: failed to count pages: %w", err)
	}

	var b strings.Builder
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		content, err := api.PageContent(pdfCtx, pageNr)
		if err != nil {
			// A single malformed page should not sink the whole document;
			// skip it and keep going.
			continue
		}
		b.WriteString(extractShowText(content))
		b.WriteByte('\n')
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("pdf: no extractable text found")
	}

	return b.String(), nil
}

func extractShowText(content []byte) string {
	var b strings.Builder
	for _, m := range showTextRe.FindAllSubmatch(content, -1) {
		var raw []byte
		if len(m[1]) > 0 {
			raw = m[1]
		} else {
			raw = m[2]
		}
		b.Write(unescapePDFString(raw))
		b.WriteByte(' ')
	}
	return b.String()
}

func unescapePDFString(raw []byte) []byte {
	s := string(raw)
	s = strings.ReplaceAll(s, `\(`, "(")
	s = strings.ReplaceAll(s, `\)`, ")")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return []byte(s)
}

// SupportedFormats returns the formats this parser supports.
func (p *PDFParser) SupportedFormats() []string {
	return []string{"pdf"}
}
