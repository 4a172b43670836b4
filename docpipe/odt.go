package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

// convertODT parses an .odt file by reading content.xml from the ZIP
// archive. text:h and text:p become heading and text elements, list
// paragraphs become list items, table:table becomes a cell grid with
// the first row as header, and draw:image becomes a picture element.
func convertODT(path, source string) ([]chunkpipe.Element, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var contentFile *zip.File
	for _, f := range r.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return nil, fmt.Errorf("content.xml not found in archive")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var elements []chunkpipe.Element
	depth := 0

	var currentText strings.Builder
	var inHeading bool
	var inParagraph bool
	var inList bool

	// Table state. Cell paragraphs accumulate into the grid instead of
	// producing standalone elements.
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
			case "h": // <text:h>
				inHeading = true
				currentText.Reset()
			case "p": // <text:p>
				inParagraph = true
				currentText.Reset()
			case "list": // <text:list>
				inList = true
			case "table": // <table:table>
				inTable = true
				tableRows = nil
			case "table-row":
				if inTable {
					currentRow = nil
				}
			case "table-cell":
				if inTable {
					inCell = true
					cellText.Reset()
				}
			case "image": // <draw:image>
				elements = append(elements, chunkpipe.Element{
					Kind:    chunkpipe.KindPicture,
					Source:  source,
					Picture: &chunkpipe.Picture{},
				})
			}

		case xml.CharData:
			if inHeading || inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "h":
				if !inHeading {
					continue
				}
				inHeading = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				elements = append(elements, chunkpipe.Element{
					Kind:   chunkpipe.KindHeading,
					Source: source,
					Text:   text,
				})

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
				if text == "" {
					continue
				}
				kind := chunkpipe.KindText
				if inList {
					kind = chunkpipe.KindListItem
				}
				elements = append(elements, chunkpipe.Element{
					Kind:   kind,
					Source: source,
					Text:   text,
				})

			case "list":
				inList = false

			case "table-cell":
				if inCell {
					inCell = false
					currentRow = append(currentRow, strings.TrimSpace(cellText.String()))
				}

			case "table-row":
				if inTable && currentRow != nil {
					tableRows = append(tableRows, currentRow)
					currentRow = nil
				}

			case "table":
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
