package runs

import (
	"context"
	"testing"

	"github.com/chapterforge/chapterforge/internal/storage"
	"github.com/chapterforge/chapterforge/pkg/types"
)

func TestStoreSaveAndLoad(t *testing.T) {
	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalAdapter: %v", err)
	}
	defer adapter.Close()

	s := NewStore(adapter)
	meta := types.RunMetadata{RunID: "run-1", BookTitle: "Test Book", SourceFormat: "txt"}
	results := []types.ExtractionResult{
		{Identity: types.ChapterIdentity{Number: 1, Title: "One"}, Text: "hello world", WordCount: 2, VerificationPassed: true},
	}

	if err := s.Save(context.Background(), meta, results); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Metadata.BookTitle != meta.BookTitle {
		t.Errorf("expected book title %q, got %q", meta.BookTitle, got.Metadata.BookTitle)
	}
	if len(got.Results) != 1 || got.Results[0].WordCount != 2 {
		t.Errorf("unexpected results: %+v", got.Results)
	}

	ids, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != "run-1" {
		t.Errorf("expected [\"run-1\"], got %v", ids)
	}
}
