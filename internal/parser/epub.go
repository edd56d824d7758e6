package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// EPUBParser parses EPUB files. EPUB is a zip archive of XHTML documents;
// no EPUB library appeared anywhere in the example corpus, so this walks
// the archive with the standard library's archive/zip and encoding/xml
// rather than reaching for an unfamiliar third-party reader.
type EPUBParser struct{}

// NewEPUBParser creates a new EPUB parser.
func NewEPUBParser() *EPUBParser {
	return &EPUBParser{}
}

// Parse concatenates the text content of every XHTML document in the
// archive, in file-name order (EPUB spine order is not consulted — the
// pipeline's own stage 1 head sample tolerates reasonable reordering since
// it re-derives structure from content, not from ingestion metadata).
func (p *EPUBParser) Parse(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("epub: failed to open archive: %w", err)
	}

	var docs []*zip.File
	for _, f := range zr.File {
		lower := strings.ToLower(f.Name)
		if strings.HasSuffix(lower, ".xhtml") || strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
			docs = append(docs, f)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	var b strings.Builder
	for _, f := range docs {
		text, err := extractXHTMLText(f)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("epub: no extractable text found")
	}

	return b.String(), nil
}

func extractXHTMLText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed markup: stop at the first error but keep whatever
			// text was already decoded.
			break
		}
		if charData, ok := tok.(xml.CharData); ok {
			b.Write(charData)
			b.WriteByte(' ')
		}
	}

	return b.String(), nil
}

// SupportedFormats returns the formats this parser supports.
func (p *EPUBParser) SupportedFormats() []string {
	return []string{"epub"}
}
