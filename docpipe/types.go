package docpipe

import "github.com/hazyhaar/docchunk/chunkpipe"

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// Document is the result of converting a file into pipeline elements.
// Elements keep the document's reading order; each one carries the
// source name so the chunker can attribute chunks.
type Document struct {
	Path     string              `json:"path"`
	Format   Format              `json:"format"`
	Source   string              `json:"source"`
	Elements []chunkpipe.Element `json:"elements"`
}
