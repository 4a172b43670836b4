package chunkpipe

import (
	"fmt"
	"log/slog"
)

// Tokenizer is the encode/decode capability injected into the pipeline.
// Implementations must use one encoding for both calls within a run and
// round-trip losslessly for the substrings the window slices
// (Decode(Encode(x)) == x). BPE tokenizers with non-invertible boundary
// merges are an accepted limitation; see tokbridge.
//
// The pipeline treats the tokenizer as read-only. Callers that process
// documents in parallel must either share an immutable tokenizer or
// instantiate one per worker.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// Pipeline chunks one document at a time: classification, windowing and
// assembly run as straight-line sequential transforms with no shared
// mutable state between documents.
type Pipeline struct {
	cfg    Config
	tok    Tokenizer
	logger *slog.Logger
}

// New validates the configuration and returns a Pipeline. Invalid
// window arithmetic (overlap >= max) fails here, before any document is
// processed.
func New(cfg Config, tok Tokenizer) (*Pipeline, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, fmt.Errorf("%w: tokenizer is required", ErrInvalidConfig)
	}
	return &Pipeline{cfg: cfg, tok: tok, logger: cfg.Logger}, nil
}

// Config returns the pipeline's effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// ChunkDocument consumes one document's ordered element sequence and
// returns its ordered chunk records. Emission is all-or-nothing: a
// tokenizer failure returns no chunks for the document.
//
// Sequence indexes are strictly increasing from 0 across all chunk
// kinds of the document. Unrecognized elements are dropped before the
// counter exists and therefore consume no index.
func (p *Pipeline) ChunkDocument(elements []Element) ([]Chunk, error) {
	recognized := filter(elements)
	if len(recognized) == 0 {
		return nil, nil
	}

	asm := newAssembler(p.cfg.Metadata)
	var chunks []Chunk

	for _, el := range recognized {
		switch el.Kind {
		case KindTable:
			if p.cfg.TableMode == TableModeRows {
				for _, group := range rowGroups(el.Table, p.cfg.MaxRowsPerChunk) {
					chunks = append(chunks, asm.emitTable(el, MarkdownTable(group)))
				}
			} else {
				chunks = append(chunks, asm.emitTable(el, MarkdownTable(el.Table)))
			}

		case KindPicture:
			chunks = append(chunks, asm.emitPicture(el))

		default:
			spans, err := p.windows(el.Text)
			if err != nil {
				return nil, fmt.Errorf("chunk %s: %w", el.Source, err)
			}
			for _, s := range spans {
				chunks = append(chunks, asm.emitText(el, s))
			}
		}
	}

	p.logger.Debug("chunked document",
		"source", recognized[0].Source,
		"elements", len(recognized),
		"chunks", len(chunks))

	return chunks, nil
}

// ChunkText chunks one raw text as a single-element document attributed
// to source. Convenience for callers without a converter.
func (p *Pipeline) ChunkText(text, source string) ([]Chunk, error) {
	return p.ChunkDocument([]Element{{Kind: KindText, Source: source, Text: text}})
}
