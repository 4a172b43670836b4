package chunkpipe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	p := newTextPipeline(t, 10, 2)
	r := chi.NewRouter()
	p.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_ChunkText(t *testing.T) {
	srv := newTestServer(t)

	body := `{"text":"` + strings.Repeat("a", 25) + `","source":"inline.txt"}`
	resp, err := http.Post(srv.URL+"/v1/chunk", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out struct {
		Chunks []Chunk `json:"chunks"`
		Count  int     `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != len(out.Chunks) || out.Count < 2 {
		t.Fatalf("count %d, chunks %d", out.Count, len(out.Chunks))
	}
	if out.Chunks[0].ID != "inline.txt__0" {
		t.Errorf("chunk_id %q", out.Chunks[0].ID)
	}
}

func TestHTTP_ChunkText_DefaultSource(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/chunk", "application/json", strings.NewReader(`{"text":"hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Chunks []Chunk `json:"chunks"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Chunks) != 1 || out.Chunks[0].Metadata.SourceFile != "inline" {
		t.Fatalf("chunks %+v", out.Chunks)
	}
}

func TestHTTP_ChunkText_BadBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/chunk", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestHTTP_Config(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/config")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var cfg struct {
		MaxTokens     int    `json:"max_tokens"`
		OverlapTokens int    `json:"overlap_tokens"`
		TableMode     string `json:"table_mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxTokens != 10 || cfg.OverlapTokens != 2 || cfg.TableMode != "whole" {
		t.Fatalf("config %+v", cfg)
	}
}
