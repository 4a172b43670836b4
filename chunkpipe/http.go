package chunkpipe

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the chunking endpoints on a chi router.
//
//	POST /v1/chunk   — chunk raw text from the request body
//	GET  /v1/config  — effective chunking configuration
func (p *Pipeline) RegisterRoutes(r chi.Router) {
	r.Post("/v1/chunk", p.handleChunkText)
	r.Get("/v1/config", p.handleConfig)
}

// ChunkTextRequest is the body for POST /v1/chunk.
type ChunkTextRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

func (p *Pipeline) handleChunkText(w http.ResponseWriter, r *http.Request) {
	var req ChunkTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	source := req.Source
	if source == "" {
		source = "inline"
	}

	chunks, err := p.ChunkText(req.Text, source)
	if err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		p.logger.Error("chunk text", "source", source, "error", err)
		http.Error(w, "Chunking failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"chunks": chunks,
		"count":  len(chunks),
	})
}

func (p *Pipeline) handleConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"max_tokens":         p.cfg.MaxTokens,
		"overlap_tokens":     p.cfg.OverlapTokens,
		"table_mode":         string(p.cfg.TableMode),
		"max_rows_per_chunk": p.cfg.MaxRowsPerChunk,
	})
}
