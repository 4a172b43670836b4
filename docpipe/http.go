package docpipe

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

// RegisterRoutes mounts the document endpoints on a chi router.
//
//	POST /v1/chunk/file — convert a local file and chunk it
//	GET  /v1/formats    — supported document formats
func (p *Pipeline) RegisterRoutes(r chi.Router, chunker *chunkpipe.Pipeline) {
	r.Post("/v1/chunk/file", p.handleChunkFile(chunker))
	r.Get("/v1/formats", p.handleFormats)
}

// ChunkFileRequest is the body for POST /v1/chunk/file.
type ChunkFileRequest struct {
	Path string `json:"path"`
}

func (p *Pipeline) handleChunkFile(chunker *chunkpipe.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChunkFileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Path == "" {
			http.Error(w, "path is required", http.StatusBadRequest)
			return
		}

		chunks, err := p.ChunkFile(r.Context(), req.Path, chunker)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				http.Error(w, "File not found", http.StatusNotFound)
				return
			}
			p.logger.Error("chunk file", "path", req.Path, "error", err)
			http.Error(w, "Conversion failed", http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"chunks": chunks,
			"count":  len(chunks),
		})
	}
}

func (p *Pipeline) handleFormats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"formats": SupportedFormats(),
	})
}
