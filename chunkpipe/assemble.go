package chunkpipe

// assembler assigns per-document sequence indexes and builds final chunk
// records. One assembler serves exactly one document conversion pass;
// separate documents get separate assemblers, so counters never
// interfere across documents.
//
// The index is consumed at the moment a chunk is emitted, not per
// element: a text element that windows into five chunks consumes five
// indexes. Elements filtered out before the assembler never reach it.
type assembler struct {
	extra map[string]string
	next  int
}

func newAssembler(extra map[string]string) *assembler {
	return &assembler{extra: extra}
}

// base builds the metadata shared by every chunk kind and consumes the
// next sequence index.
func (a *assembler) base(el Element) Metadata {
	seq := a.next
	a.next++
	return Metadata{
		SourceFile:    el.Source,
		SequenceIndex: seq,
		PageNumber:    el.Page,
		Type:          el.Kind,
		Extra:         a.extra,
	}
}

// emitText builds a text-window chunk carrying its token span.
func (a *assembler) emitText(el Element, s span) Chunk {
	meta := a.base(el)
	start, end, count := s.start, s.end, s.end-s.start
	meta.TokenStart = &start
	meta.TokenEnd = &end
	meta.TokenCount = &count
	return Chunk{
		ID:       ChunkID(el.Source, meta.SequenceIndex, el.Kind),
		Text:     s.text,
		Metadata: meta,
	}
}

// emitTable builds one chunk for a serialized table or row group.
func (a *assembler) emitTable(el Element, serialized string) Chunk {
	meta := a.base(el)
	return Chunk{
		ID:       ChunkID(el.Source, meta.SequenceIndex, KindTable),
		Text:     serialized,
		Metadata: meta,
	}
}

// emitPicture builds the placeholder chunk for a picture element. The
// image path is attached only when the extraction collaborator saved
// one; its absence is not an error and leaves the key out entirely.
func (a *assembler) emitPicture(el Element) Chunk {
	meta := a.base(el)
	if el.Picture != nil {
		meta.ImagePath = el.Picture.Path
	}
	return Chunk{
		ID:       ChunkID(el.Source, meta.SequenceIndex, KindPicture),
		Text:     ImagePlaceholder,
		Metadata: meta,
	}
}
