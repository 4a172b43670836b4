package docpipe

import (
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/hazyhaar/docchunk/chunkpipe"
)

// convertText reads a plain text file as a single text element.
func convertText(path, source string) ([]chunkpipe.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := normalizeWhitespace(string(data))
	if text == "" {
		return nil, nil
	}

	return []chunkpipe.Element{{
		Kind:   chunkpipe.KindText,
		Source: source,
		Text:   text,
	}}, nil
}

var mdImageRe = regexp.MustCompile(`^!\[[^\]]*\]\(([^)\s]+)[^)]*\)$`)

// convertMarkdown scans a Markdown file into typed elements: ATX
// headings, list items, pipe tables, image references, and paragraphs.
func convertMarkdown(path, source string) ([]chunkpipe.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	var elements []chunkpipe.Element
	var paragraph strings.Builder
	var tableLines []string

	flushParagraph := func() {
		text := strings.TrimSpace(paragraph.String())
		if text != "" {
			elements = append(elements, chunkpipe.Element{
				Kind:   chunkpipe.KindText,
				Source: source,
				Text:   text,
			})
		}
		paragraph.Reset()
	}

	flushTable := func() {
		if len(tableLines) == 0 {
			return
		}
		if tbl := parseMarkdownTable(tableLines); tbl != nil {
			elements = append(elements, chunkpipe.Element{
				Kind:   chunkpipe.KindTable,
				Source: source,
				Table:  tbl,
			})
		}
		tableLines = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Pipe table rows accumulate until a non-table line.
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			flushParagraph()
			tableLines = append(tableLines, trimmed)
			continue
		}
		flushTable()

		// ATX headings: # heading, ## heading, etc.
		if strings.HasPrefix(trimmed, "#") {
			flushParagraph()

			headingText := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			headingText = strings.TrimRight(headingText, "#")
			headingText = strings.TrimSpace(headingText)
			if headingText != "" {
				elements = append(elements, chunkpipe.Element{
					Kind:   chunkpipe.KindHeading,
					Source: source,
					Text:   headingText,
				})
			}
			continue
		}

		// Image reference on its own line.
		if m := mdImageRe.FindStringSubmatch(trimmed); m != nil {
			flushParagraph()
			elements = append(elements, chunkpipe.Element{
				Kind:    chunkpipe.KindPicture,
				Source:  source,
				Picture: &chunkpipe.Picture{Path: m[1]},
			})
			continue
		}

		// List items.
		if item, ok := markdownListItem(trimmed); ok {
			flushParagraph()
			elements = append(elements, chunkpipe.Element{
				Kind:   chunkpipe.KindListItem,
				Source: source,
				Text:   item,
			})
			continue
		}

		// Empty line = paragraph break.
		if trimmed == "" {
			flushParagraph()
			continue
		}

		if paragraph.Len() > 0 {
			paragraph.WriteByte(' ')
		}
		paragraph.WriteString(trimmed)
	}
	flushTable()
	flushParagraph()

	return elements, nil
}

// markdownListItem strips a bullet or ordered-list marker.
func markdownListItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	// Ordered: "1. item", "12. item"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && line[i] == '.' && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}
	return "", false
}

// parseMarkdownTable builds a cell grid from accumulated pipe rows.
// The separator row (| --- | --- |) marks the first row as header.
func parseMarkdownTable(lines []string) *chunkpipe.Table {
	var rows [][]string
	separatorAt := -1

	for i, line := range lines {
		cells := splitPipeRow(line)
		if len(cells) == 0 {
			continue
		}
		if isSeparatorRow(cells) {
			if separatorAt == -1 {
				separatorAt = i
			}
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil
	}

	tbl := &chunkpipe.Table{}
	if separatorAt == 1 && len(rows) > 0 {
		tbl.Header = rows[0]
		tbl.Rows = rows[1:]
	} else {
		tbl.Rows = rows
	}
	return tbl
}

func splitPipeRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		c = strings.Trim(c, ":-")
		if c != "" {
			return false
		}
	}
	return true
}

func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
