package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

// maxXMLDepth bounds element nesting when parsing archive XML.
// Deeply nested documents are malformed or hostile.
const maxXMLDepth = 256

// convertDocx parses a .docx file by reading word/document.xml from the
// ZIP archive. Paragraphs become text or heading elements depending on
// their style, w:tbl tables become cell grids with the first row as
// header, and w:drawing runs become picture elements.
func convertDocx(path, source string) ([]chunkpipe.Element, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var elements []chunkpipe.Element
	depth := 0

	var currentText strings.Builder
	var inParagraph bool
	var paragraphStyle string
	var paragraphIsList bool
	var paragraphHasDrawing bool

	// Table state. Paragraph text inside w:tc accumulates into the
	// current cell instead of producing a standalone element.
	var inTable bool
	var tableRows [][]string
	var currentRow []string
	var inCell bool
	var cellText strings.Builder

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "tbl":
				inTable = true
				tableRows = nil
			case "tr":
				if inTable {
					currentRow = nil
				}
			case "tc":
				if inTable {
					inCell = true
					cellText.Reset()
				}
			case "p":
				inParagraph = true
				currentText.Reset()
				paragraphStyle = ""
				paragraphIsList = false
				paragraphHasDrawing = false
			case "pStyle":
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							paragraphStyle = attr.Value
						}
					}
				}
			case "numPr":
				if inParagraph {
					paragraphIsList = true
				}
			case "drawing":
				if inParagraph {
					paragraphHasDrawing = true
				}
			}

		case xml.CharData:
			if inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				text := strings.TrimSpace(currentText.String())

				if inCell {
					if text != "" {
						if cellText.Len() > 0 {
							cellText.WriteByte(' ')
						}
						cellText.WriteString(text)
					}
					continue
				}

				if paragraphHasDrawing {
					elements = append(elements, chunkpipe.Element{
						Kind:    chunkpipe.KindPicture,
						Source:  source,
						Picture: &chunkpipe.Picture{},
					})
				}
				if text == "" {
					continue
				}

				kind := chunkpipe.KindText
				switch {
				case docxHeadingLevel(paragraphStyle) > 0:
					kind = chunkpipe.KindHeading
				case paragraphIsList:
					kind = chunkpipe.KindListItem
				}
				elements = append(elements, chunkpipe.Element{
					Kind:   kind,
					Source: source,
					Text:   text,
				})

			case "tc":
				if inCell {
					inCell = false
					currentRow = append(currentRow, strings.TrimSpace(cellText.String()))
				}

			case "tr":
				if inTable && currentRow != nil {
					tableRows = append(tableRows, currentRow)
					currentRow = nil
				}

			case "tbl":
				if !inTable {
					continue
				}
				inTable = false
				if len(tableRows) == 0 {
					continue
				}
				tbl := &chunkpipe.Table{}
				if len(tableRows) > 1 {
					tbl.Header = tableRows[0]
					tbl.Rows = tableRows[1:]
				} else {
					tbl.Rows = tableRows
				}
				elements = append(elements, chunkpipe.Element{
					Kind:   chunkpipe.KindTable,
					Source: source,
					Table:  tbl,
				})
			}
		}
	}

	return elements, nil
}

// docxHeadingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" → 1, "Heading2" → 2, "Title" → 1, etc.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}

	// "Heading1", "heading1", "Titre1", etc.
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}
