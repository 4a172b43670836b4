package chunkstore_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/docchunk/chunkpipe"
	"github.com/hazyhaar/docchunk/chunkstore"
	"github.com/hazyhaar/docchunk/dbopen"
)

func sampleChunks() []chunkpipe.Chunk {
	page := 3
	return []chunkpipe.Chunk{
		{
			ID:   "doc.txt__0",
			Text: "première partie du texte",
			Metadata: chunkpipe.Metadata{
				SourceFile:    "doc.txt",
				SequenceIndex: 0,
				Type:          chunkpipe.KindText,
			},
		},
		{
			ID:   "doc.txt__table_1",
			Text: "| id | name |\n| --- | --- |\n| 1 | café |",
			Metadata: chunkpipe.Metadata{
				SourceFile:    "doc.txt",
				SequenceIndex: 1,
				PageNumber:    &page,
				Type:          chunkpipe.KindTable,
			},
		},
	}
}

func TestWriteJSONL_UTF8Literal(t *testing.T) {
	var buf bytes.Buffer
	if err := chunkstore.WriteJSONL(&buf, sampleChunks()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "première partie") {
		t.Errorf("expected literal UTF-8 text in output, got %q", out)
	}
	if !strings.Contains(out, "café") {
		t.Errorf("expected literal UTF-8 in table text, got %q", out)
	}
	if strings.Contains(out, `\u00e9`) {
		t.Error("non-ASCII text should not be escaped")
	}
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
}

func TestJSONL_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.jsonl")

	want := sampleChunks()
	if err := chunkstore.WriteJSONLFile(path, want); err != nil {
		t.Fatal(err)
	}

	got, err := chunkstore.ReadJSONLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("chunk %d: id %q, want %q", i, got[i].ID, want[i].ID)
		}
		if got[i].Text != want[i].Text {
			t.Errorf("chunk %d: text mismatch", i)
		}
	}
	if got[1].Metadata.PageNumber == nil || *got[1].Metadata.PageNumber != 3 {
		t.Error("page number lost in round trip")
	}
}

func newTestStore(t *testing.T) *chunkstore.Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(chunkstore.Schema))
	return chunkstore.NewStore(db)
}

func TestStore_SaveAndLoadRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := chunkpipe.DefaultConfig()
	runID, err := store.SaveRun(ctx, "doc.txt", cfg, sampleChunks())
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	chunks, err := store.LoadRun(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ID != "doc.txt__0" || chunks[1].ID != "doc.txt__table_1" {
		t.Errorf("unexpected chunk order: %s, %s", chunks[0].ID, chunks[1].ID)
	}
	if chunks[1].Metadata.PageNumber == nil || *chunks[1].Metadata.PageNumber != 3 {
		t.Error("page number lost in store round trip")
	}
}

func TestStore_ListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cfg := chunkpipe.DefaultConfig()

	if _, err := store.SaveRun(ctx, "a.txt", cfg, sampleChunks()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRun(ctx, "b.txt", cfg, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	for _, r := range runs {
		if r.MaxTokens != cfg.MaxTokens {
			t.Errorf("run %s: max_tokens %d, want %d", r.ID, r.MaxTokens, cfg.MaxTokens)
		}
	}

	var counts []int
	for _, r := range runs {
		counts = append(counts, r.ChunkCount)
	}
	if counts[0]+counts[1] != 2 {
		t.Errorf("unexpected chunk counts: %v", counts)
	}
}

func TestStore_DeleteRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.SaveRun(ctx, "doc.txt", chunkpipe.DefaultConfig(), sampleChunks())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteRun(ctx, runID); err != nil {
		t.Fatal(err)
	}

	chunks, err := store.LoadRun(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected chunks cascade-deleted, got %d", len(chunks))
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

// PRAGMA foreign_keys is per-connection, so a pooled connection opened
// after dbopen's setup runs with the pragma off. DeleteRun must not leave
// orphaned chunk rows even when every statement lands on a fresh
// connection.
func TestStore_DeleteRunFreshConnections(t *testing.T) {
	dir := t.TempDir()
	db, err := dbopen.Open(filepath.Join(dir, "chunks.db"), dbopen.WithSchema(chunkstore.Schema))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(time.Nanosecond)

	store := chunkstore.NewStore(db)
	ctx := context.Background()

	runID, err := store.SaveRun(ctx, "doc.txt", chunkpipe.DefaultConfig(), sampleChunks())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteRun(ctx, runID); err != nil {
		t.Fatal(err)
	}

	var orphans int
	if err := db.QueryRow(`SELECT COUNT(*) FROM chunks WHERE run_id = ?`, runID).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("expected no chunk rows after delete, got %d orphans", orphans)
	}
}

func TestStore_OpenFile(t *testing.T) {
	dir := t.TempDir()
	store, err := chunkstore.Open(filepath.Join(dir, "sub", "chunks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	runID, err := store.SaveRun(context.Background(), "doc.txt", chunkpipe.DefaultConfig(), sampleChunks())
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := store.LoadRun(context.Background(), runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}
