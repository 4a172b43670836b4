// Package chunkpipe splits a stream of extracted document elements into
// token-bounded, overlapping chunks with traceable metadata, sized for
// downstream embedding and retrieval.
//
// The pipeline has three stages: a classifier that keeps only recognized
// element kinds, an emitter that turns each element into chunks (exactly
// one per table or picture, a sliding token window for text), and an
// assembler that attaches deterministic IDs and a per-document sequence
// index.
//
// Usage:
//
//	codec, err := tokbridge.New("cl100k_base")
//	pipe, err := chunkpipe.New(chunkpipe.DefaultConfig(), codec)
//	chunks, err := pipe.ChunkDocument(elements)
package chunkpipe

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the structural type of a document element.
type Kind string

const (
	KindText        Kind = "text"
	KindHeading     Kind = "heading"
	KindListItem    Kind = "list_item"
	KindFormField   Kind = "form_field"
	KindTable       Kind = "table"
	KindPicture     Kind = "picture"
	KindUnsupported Kind = "unsupported"
)

// ImagePlaceholder is the chunk text emitted for picture elements.
const ImagePlaceholder = "[IMAGE]"

// Table is a cell grid extracted from a document. Header may be empty
// when the source table carries no header row.
type Table struct {
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows"`
}

// Picture references an image found in a document. Path is set only when
// an image-extraction collaborator saved the image to a file.
type Picture struct {
	Path string `json:"path,omitempty"`
}

// Element is one unit from a source document, produced by a converter
// and consumed exactly once by the pipeline. Exactly one payload field
// is meaningful, selected by Kind: Text for text-like kinds, Table for
// KindTable, Picture for KindPicture.
type Element struct {
	Kind    Kind     `json:"kind"`
	Source  string   `json:"source"`
	Page    *int     `json:"page,omitempty"`
	Text    string   `json:"text,omitempty"`
	Table   *Table   `json:"table,omitempty"`
	Picture *Picture `json:"picture,omitempty"`
}

// Chunk is the unit of output: bounded text (or a table/image surrogate)
// plus attached metadata. Chunks are pure values; the pipeline never
// mutates one after emission.
type Chunk struct {
	ID       string   `json:"chunk_id"`
	Text     string   `json:"chunk_text"`
	Metadata Metadata `json:"metadata"`
}

// Metadata carries the provenance of a chunk. PageNumber is nil when the
// converter supplied no position, and serializes as JSON null rather
// than a placeholder. Token span fields are set only for text-window
// chunks; ImagePath only for picture chunks with a saved image.
//
// Extra holds free-form passthrough pairs from Config.Metadata. They are
// inlined at the top level of the JSON object and can never shadow the
// reserved keys.
type Metadata struct {
	SourceFile    string
	SequenceIndex int
	PageNumber    *int
	Type          Kind

	TokenStart *int
	TokenEnd   *int
	TokenCount *int

	ImagePath string

	Extra map[string]string
}

var reservedMetaKeys = map[string]struct{}{
	"source_file":    {},
	"sequence_index": {},
	"page_number":    {},
	"type":           {},
	"token_start":    {},
	"token_end":      {},
	"token_count":    {},
	"image_path":     {},
}

// MarshalJSON flattens Extra into the metadata object. Reserved keys in
// Extra are dropped, never merged.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 8+len(m.Extra))
	for k, v := range m.Extra {
		if _, reserved := reservedMetaKeys[k]; reserved {
			continue
		}
		out[k] = v
	}

	out["source_file"] = m.SourceFile
	out["sequence_index"] = m.SequenceIndex
	out["page_number"] = m.PageNumber
	out["type"] = m.Type

	if m.TokenStart != nil {
		out["token_start"] = *m.TokenStart
	}
	if m.TokenEnd != nil {
		out["token_end"] = *m.TokenEnd
	}
	if m.TokenCount != nil {
		out["token_count"] = *m.TokenCount
	}
	if m.ImagePath != "" {
		out["image_path"] = m.ImagePath
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores a Metadata from its flattened form. Unknown
// string-valued keys land in Extra; unknown non-string keys are dropped.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("metadata key %q: %w", key, err)
		}
		return nil
	}

	if err := take("source_file", &m.SourceFile); err != nil {
		return err
	}
	if err := take("sequence_index", &m.SequenceIndex); err != nil {
		return err
	}
	if err := take("page_number", &m.PageNumber); err != nil {
		return err
	}
	if err := take("type", &m.Type); err != nil {
		return err
	}
	if err := take("token_start", &m.TokenStart); err != nil {
		return err
	}
	if err := take("token_end", &m.TokenEnd); err != nil {
		return err
	}
	if err := take("token_count", &m.TokenCount); err != nil {
		return err
	}
	if err := take("image_path", &m.ImagePath); err != nil {
		return err
	}

	for k, v := range raw {
		if _, reserved := reservedMetaKeys[k]; reserved {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[k] = s
	}

	return nil
}

// ChunkID returns the deterministic identifier for a chunk: the source
// name and sequence index joined by a double underscore, with a kind
// discriminator for atomic chunks. Re-running the pipeline on unchanged
// input yields identical IDs.
//
//	report.pdf__7         text-window chunk
//	report.pdf__table_3   table chunk
//	report.pdf__img_4     picture chunk
func ChunkID(source string, seq int, kind Kind) string {
	switch kind {
	case KindTable:
		return fmt.Sprintf("%s__table_%d", source, seq)
	case KindPicture:
		return fmt.Sprintf("%s__img_%d", source, seq)
	default:
		return fmt.Sprintf("%s__%d", source, seq)
	}
}
