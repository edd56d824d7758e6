package parser

import (
	"context"
	"testing"
)

func TestFactoryGetParser(t *testing.T) {
	f := NewFactory()

	for _, format := range []string{"txt", "TXT", "pdf", "epub"} {
		if _, err := f.GetParser(format); err != nil {
			t.Errorf("GetParser(%q) returned error: %v", format, err)
		}
	}

	if _, err := f.GetParser("docx"); err == nil {
		t.Errorf("expected error for unsupported format")
	}
}

func TestTXTParserParse(t *testing.T) {
	p := NewTXTParser()
	text, err := p.Parse(context.Background(), []byte("Prologue\ntext a\nCHAPTER 1\ntext b\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if text == "" {
		t.Fatalf("expected non-empty text")
	}
}

func TestTXTParserRejectsEmptyInput(t *testing.T) {
	p := NewTXTParser()
	if _, err := p.Parse(context.Background(), []byte{}); err == nil {
		t.Fatalf("expected an error for empty input")
	}
}
