// Package docpipe converts document files into typed pipeline elements.
//
// Supported formats:
//   - .docx  — Microsoft Word (archive/zip → word/document.xml, tables included)
//   - .odt   — OpenDocument Text (archive/zip → content.xml, tables included)
//   - .pdf   — PDF text per page plus image detection (pdfcpu)
//   - .md    — Markdown (headings, lists, pipe tables, images)
//   - .txt   — Plain text (passthrough with whitespace normalization)
//   - .html  — HTML (DOM walk; tables become cell grids, img tags become pictures)
//
// Each converter emits an ordered []chunkpipe.Element stream ready for
// the chunker: text-like elements, table grids, and picture references.
//
// Usage:
//
//	conv := docpipe.New(docpipe.Config{})
//	doc, err := conv.Convert(ctx, "/path/to/file.docx")
//	chunks, err := chunker.ChunkDocument(doc.Elements)
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

// Pipeline is the document conversion engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".odt":
		return FormatODT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", ext)
	}
}

// Convert parses a document and returns its element stream. The source
// attributed to each element is the file's base name.
func (p *Pipeline) Convert(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	format, err := p.Detect(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("converting document", "path", path, "format", format)

	source := filepath.Base(path)

	var elements []chunkpipe.Element
	switch format {
	case FormatDocx:
		elements, err = convertDocx(path, source)
	case FormatODT:
		elements, err = convertODT(path, source)
	case FormatPDF:
		elements, err = convertPDF(path, source)
	case FormatMD:
		elements, err = convertMarkdown(path, source)
	case FormatTXT:
		elements, err = convertText(path, source)
	case FormatHTML:
		elements, err = convertHTMLFile(path, source)
	default:
		return nil, fmt.Errorf("no converter for format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("convert %s (%s): %w", path, format, err)
	}

	return &Document{
		Path:     path,
		Format:   format,
		Source:   source,
		Elements: elements,
	}, nil
}

// ChunkFile converts a document and chunks its elements in one pass.
// All-or-nothing per document, like the chunker itself.
func (p *Pipeline) ChunkFile(ctx context.Context, path string, chunker *chunkpipe.Pipeline) ([]chunkpipe.Chunk, error) {
	doc, err := p.Convert(ctx, path)
	if err != nil {
		return nil, err
	}
	chunks, err := chunker.ChunkDocument(doc.Elements)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", path, err)
	}
	p.logger.Debug("chunked file", "path", path, "elements", len(doc.Elements), "chunks", len(chunks))
	return chunks, nil
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"docx", "odt", "pdf", "md", "txt", "html"}
}
