package docpipe

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0[^.]`),
	regexp.MustCompile(`(?i)position\s*:\s*absolute[^;]*-\d{4,}`),
}

func hasHiddenStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

// convertHTMLFile extracts structured content from an HTML file.
// Headings, paragraphs and list items become text-like elements,
// <table> becomes a cell grid with the thead or first row as header,
// and <img> becomes a picture element carrying its src path.
func convertHTMLFile(path, source string) ([]chunkpipe.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var elements []chunkpipe.Element
	extractHTMLNodes(doc, source, &elements)

	if len(elements) == 0 {
		// Fallback: extract all text.
		text := collectHTMLText(doc)
		if text != "" {
			elements = append(elements, chunkpipe.Element{
				Kind:   chunkpipe.KindText,
				Source: source,
				Text:   text,
			})
		}
	}

	return elements, nil
}

// extractHTMLNodes walks the DOM tree and extracts content blocks.
func extractHTMLNodes(n *html.Node, source string, elements *[]chunkpipe.Element) {
	if n.Type == html.ElementNode {
		// Skip boilerplate.
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Header:
			return
		}
		if hasHiddenStyle(n) {
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			if text := collectHTMLText(n); text != "" {
				*elements = append(*elements, chunkpipe.Element{
					Kind:   chunkpipe.KindHeading,
					Source: source,
					Text:   text,
				})
			}
			return

		case atom.P:
			if text := collectHTMLText(n); text != "" {
				*elements = append(*elements, chunkpipe.Element{
					Kind:   chunkpipe.KindText,
					Source: source,
					Text:   text,
				})
			}
			return

		case atom.Li:
			if text := collectHTMLText(n); text != "" {
				*elements = append(*elements, chunkpipe.Element{
					Kind:   chunkpipe.KindListItem,
					Source: source,
					Text:   text,
				})
			}
			return

		case atom.Table:
			if tbl := extractHTMLTable(n); tbl != nil {
				*elements = append(*elements, chunkpipe.Element{
					Kind:   chunkpipe.KindTable,
					Source: source,
					Table:  tbl,
				})
			}
			return

		case atom.Img:
			for _, a := range n.Attr {
				if a.Key == "src" && a.Val != "" {
					*elements = append(*elements, chunkpipe.Element{
						Kind:    chunkpipe.KindPicture,
						Source:  source,
						Picture: &chunkpipe.Picture{Path: a.Val},
					})
					break
				}
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractHTMLNodes(c, source, elements)
	}
}

// extractHTMLTable builds a cell grid from a <table> subtree. A row
// whose cells are all <th>, or the first row of a <thead>, becomes the
// header. Returns nil when the table holds no rows.
func extractHTMLTable(n *html.Node) *chunkpipe.Table {
	var header []string
	var rows [][]string

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inHead bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Thead:
				inHead = true
			case atom.Tr:
				var cells []string
				allHead := true
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type != html.ElementNode {
						continue
					}
					switch c.DataAtom {
					case atom.Th:
						cells = append(cells, collectHTMLText(c))
					case atom.Td:
						allHead = false
						cells = append(cells, collectHTMLText(c))
					}
				}
				if len(cells) == 0 {
					return
				}
				if header == nil && (inHead || allHead) {
					header = cells
				} else {
					rows = append(rows, cells)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inHead)
		}
	}
	walk(n, false)

	if header == nil && len(rows) == 0 {
		return nil
	}
	return &chunkpipe.Table{Header: header, Rows: rows}
}

// collectHTMLText extracts all visible text from a node subtree.
func collectHTMLText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
			if hasHiddenStyle(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
