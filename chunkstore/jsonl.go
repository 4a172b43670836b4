// Package chunkstore persists chunking output: JSONL files for
// downstream ingestion and an SQLite store for run history.
package chunkstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

// WriteJSONL writes one chunk per line. HTML escaping is disabled so
// non-ASCII text lands in the file as literal UTF-8.
func WriteJSONL(w io.Writer, chunks []chunkpipe.Chunk) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// WriteJSONLFile writes chunks to path, creating or truncating it.
func WriteJSONLFile(path string, chunks []chunkpipe.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSONL(f, chunks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSONL reads chunks back from a JSONL stream. Blank lines are
// skipped.
func ReadJSONL(r io.Reader) ([]chunkpipe.Chunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var chunks []chunkpipe.Chunk
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var c chunkpipe.Chunk
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return chunks, nil
}

// ReadJSONLFile reads chunks from a JSONL file.
func ReadJSONLFile(path string) ([]chunkpipe.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSONL(f)
}
