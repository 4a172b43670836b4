package chunkstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/docchunk/chunkpipe"
	"github.com/hazyhaar/docchunk/dbopen"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	source_file    TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	max_tokens     INTEGER NOT NULL,
	overlap_tokens INTEGER NOT NULL,
	chunk_count    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	chunk_id TEXT NOT NULL,
	body     TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_chunks_chunk_id ON chunks(chunk_id);
`

// Run is one recorded chunking pass over a document.
type Run struct {
	ID            string    `json:"id"`
	SourceFile    string    `json:"source_file"`
	CreatedAt     time.Time `json:"created_at"`
	MaxTokens     int       `json:"max_tokens"`
	OverlapTokens int       `json:"overlap_tokens"`
	ChunkCount    int       `json:"chunk_count"`
}

// Store records chunking runs in SQLite. Chunks are stored as their
// JSON form so metadata round-trips exactly.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(schema),
	)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStore wraps an already-open database. The schema must be applied
// by the caller (dbopen.WithSchema(Schema)).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the store's DDL, exported for callers that open their own
// database handle.
const Schema = schema

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a chunking pass and its chunks in one transaction.
// Returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, source string, cfg chunkpipe.Config, chunks []chunkpipe.Chunk) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("chunkstore: run id: %w", err)
	}
	runID := id.String()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	err = dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, source_file, created_at, max_tokens, overlap_tokens, chunk_count)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, source, createdAt, cfg.MaxTokens, cfg.OverlapTokens, len(chunks))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO chunks (run_id, seq, chunk_id, body) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare chunk insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range chunks {
			body, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshal chunk %s: %w", c.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, runID, i, c.ID, string(body)); err != nil {
				return fmt.Errorf("insert chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chunkstore: save run: %w", err)
	}
	return runID, nil
}

// LoadRun returns the chunks of a run in sequence order.
func (s *Store) LoadRun(ctx context.Context, runID string) ([]chunkpipe.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM chunks WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: load run: %w", err)
	}
	defer rows.Close()

	var chunks []chunkpipe.Chunk
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("chunkstore: scan chunk: %w", err)
		}
		var c chunkpipe.Chunk
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			return nil, fmt.Errorf("chunkstore: unmarshal chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// ListRuns returns recorded runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_file, created_at, max_tokens, overlap_tokens, chunk_count
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SourceFile, &createdAt, &r.MaxTokens, &r.OverlapTokens, &r.ChunkCount); err != nil {
			return nil, fmt.Errorf("chunkstore: scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its chunks. Chunks are deleted explicitly
// in the same transaction: PRAGMA foreign_keys is per-connection in
// SQLite, so the schema's ON DELETE CASCADE cannot be relied on to fire
// for every pooled connection.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE run_id = ?`, runID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
		return err
	})
	if err != nil {
		return fmt.Errorf("chunkstore: delete run: %w", err)
	}
	return nil
}
