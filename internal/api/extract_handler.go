package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chapterforge/chapterforge/internal/ingest"
	"github.com/chapterforge/chapterforge/internal/pipeline"
	"github.com/chapterforge/chapterforge/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExtractHandler runs the pipeline synchronously over an uploaded document
// and returns the resulting ExtractionResult sequence as JSON.
type ExtractHandler struct {
	loader   *ingest.Loader
	pipeline *pipeline.Pipeline
	log      *zap.Logger
}

// NewExtractHandler builds an ExtractHandler.
func NewExtractHandler(loader *ingest.Loader, p *pipeline.Pipeline, log *zap.Logger) *ExtractHandler {
	return &ExtractHandler{loader: loader, pipeline: p, log: log}
}

type extractResponse struct {
	RunID   string                   `json:"run_id"`
	Results []types.ExtractionResult `json:"results"`
}

// ServeHTTP implements http.HandlerFunc's signature so it can be passed
// directly to chi's router.
func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "txt"
	}

	body := http.MaxBytesReader(w, r.Body, 64<<20)
	defer body.Close()

	data := make([]byte, 0, 1<<20)
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	doc, err := h.loader.LoadBytes(r.Context(), format, data)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse document: %w", err))
		return
	}

	results, err := h.pipeline.ExtractAll(r.Context(), doc)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("extraction failed: %w", err))
		return
	}

	resp := extractResponse{RunID: uuid.NewString(), Results: results}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil && h.log != nil {
		h.log.Error("failed to encode extraction response", zap.Error(err))
	}
}

func (h *ExtractHandler) writeError(w http.ResponseWriter, status int, err error) {
	if h.log != nil {
		h.log.Warn("extract request failed", zap.Error(err), zap.Int("status", status))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
