package chunkpipe

import "strings"

// MarkdownTable serializes a cell grid to a markdown-style table: rows
// separated by newlines, columns by pipes, with a header separator row
// when the table carries a header. Cell pipes are escaped so the grid
// stays parseable.
func MarkdownTable(t *Table) string {
	cols := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	if len(t.Header) > 0 {
		writeTableRow(&sb, t.Header, cols)
		sb.WriteByte('\n')
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			sb.WriteString(" --- |")
		}
		if len(t.Rows) > 0 {
			sb.WriteByte('\n')
		}
	}
	for i, row := range t.Rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeTableRow(&sb, row, cols)
	}
	return sb.String()
}

// writeTableRow writes one pipe-delimited row, padding short rows to the
// table's column count.
func writeTableRow(sb *strings.Builder, cells []string, cols int) {
	sb.WriteByte('|')
	for i := 0; i < cols; i++ {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "|", "\\|")
			cell = strings.ReplaceAll(cell, "\n", " ")
		}
		sb.WriteByte(' ')
		sb.WriteString(cell)
		sb.WriteString(" |")
	}
}

// rowGroups partitions a table's data rows into groups of at most
// maxRows, each group sharing the original header. The last group may be
// smaller. A table with no rows yields a single empty group so the
// header-only table still emits exactly one chunk.
func rowGroups(t *Table, maxRows int) []*Table {
	if len(t.Rows) == 0 {
		return []*Table{t}
	}
	var groups []*Table
	for start := 0; start < len(t.Rows); start += maxRows {
		end := start + maxRows
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		groups = append(groups, &Table{Header: t.Header, Rows: t.Rows[start:end]})
	}
	return groups
}
