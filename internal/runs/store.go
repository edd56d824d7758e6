// Package runs stores a diagnostic JSON snapshot of a pipeline run —
// its RunMetadata and the ExtractionResult sequence it produced — for
// later inspection. This is purely an audit trail: the pipeline itself
// still does not persist results, per its non-goals; nothing downstream of
// ExtractAll depends on a snapshot existing.
package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/chapterforge/chapterforge/internal/storage"
	"github.com/chapterforge/chapterforge/pkg/types"
)

// Snapshot is the JSON document written for one run.
type Snapshot struct {
	Metadata types.RunMetadata        `json:"metadata"`
	Results  []types.ExtractionResult `json:"results"`
}

// Store persists and retrieves run snapshots through a storage.Adapter.
type Store struct {
	adapter storage.Adapter
}

// NewStore builds a Store over the given storage adapter.
func NewStore(adapter storage.Adapter) *Store {
	return &Store{adapter: adapter}
}

func snapshotPath(runID string) string {
	return fmt.Sprintf("runs/%s.json", runID)
}

// Save writes a run's metadata and results as a JSON snapshot.
func (s *Store) Save(ctx context.Context, meta types.RunMetadata, results []types.ExtractionResult) error {
	snap := Snapshot{Metadata: meta, Results: results}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("runs: failed to marshal snapshot: %w", err)
	}

	if err := s.adapter.Put(ctx, snapshotPath(meta.RunID), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("runs: failed to store snapshot for run %s: %w", meta.RunID, err)
	}
	return nil
}

// Load retrieves a previously stored snapshot by run ID.
func (s *Store) Load(ctx context.Context, runID string) (*Snapshot, error) {
	rc, err := s.adapter.Get(ctx, snapshotPath(runID))
	if err != nil {
		return nil, fmt.Errorf("runs: failed to fetch snapshot for run %s: %w", runID, err)
	}
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, fmt.Errorf("runs: failed to decode snapshot for run %s: %w", runID, err)
	}
	return &snap, nil
}

// List returns the run IDs with a stored snapshot.
func (s *Store) List(ctx context.Context) ([]string, error) {
	paths, err := s.adapter.List(ctx, "runs/")
	if err != nil {
		return nil, fmt.Errorf("runs: failed to list snapshots: %w", err)
	}

	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		ids = append(ids, runIDFromPath(p))
	}
	return ids, nil
}

func runIDFromPath(path string) string {
	const prefix = "runs/"
	const suffix = ".json"
	id := path
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		id = id[len(prefix):]
	}
	if len(id) > len(suffix) && id[len(id)-len(suffix):] == suffix {
		id = id[:len(id)-len(suffix)]
	}
	return id
}
