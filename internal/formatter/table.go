// Package formatter renders query hits for terminals.
package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

const (
	sepWidth    = 2
	minColWidth = 3
	maxColWidth = 40
)

// TableOptions configures RenderHits.
type TableOptions struct {
	// Width is the total width available; 0 means unlimited.
	Width int
	// Columns fixes the column order. Keys missing from Columns are
	// appended in sorted order.
	Columns []string
	// RowNumbers adds a leading "#" column counting from Offset+1.
	RowNumbers bool
	Offset     int

	NoColor bool
	Header  lipgloss.Style
	Value   lipgloss.Style
	Rule    lipgloss.Style
}

// Columns returns the union of the top-level keys of hits, with preferred
// keys first and the rest sorted.
func Columns(hits []map[string]any, preferred []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range preferred {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	var rest []string
	for _, hit := range hits {
		for k := range hit {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Stringify renders v on one line: scalars as text, objects and arrays as
// compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ReplaceAll(t, "\n", `\n`)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int, int64, uint64:
		return fmt.Sprint(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// RenderHits renders hits as a column table with a header and a rule.
// Columns are shrunk to fit opts.Width, widest first.
func RenderHits(hits []map[string]any, opts TableOptions) string {
	if len(hits) == 0 {
		return ""
	}
	columns := Columns(hits, opts.Columns)
	rows := make([][]string, len(hits))
	for i, hit := range hits {
		row := make([]string, len(columns))
		for j, c := range columns {
			if v, ok := hit[c]; ok {
				row[j] = Stringify(v)
			}
		}
		rows[i] = row
	}
	if opts.RowNumbers {
		columns = append([]string{"#"}, columns...)
		for i := range rows {
			rows[i] = append([]string{strconv.Itoa(opts.Offset + i + 1)}, rows[i]...)
		}
	}

	widths := columnWidths(columns, rows, opts.Width)
	style := func(s lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(opts.Header, joinCells(columns, widths)))
	b.WriteByte('\n')
	total := (len(widths) - 1) * sepWidth
	for _, w := range widths {
		total += w
	}
	b.WriteString(style(opts.Rule, strings.Repeat("─", total)))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(style(opts.Value, joinCells(row, widths)))
		b.WriteByte('\n')
	}
	return b.String()
}

func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = runewidth.FillRight(runewidth.Truncate(c, widths[i], "…"), widths[i])
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", sepWidth)), " ")
}

// columnWidths sizes each column to its widest cell, caps wide columns,
// then takes one cell at a time from the widest column until the table
// fits width.
func columnWidths(columns []string, rows [][]string, width int) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if width <= 0 {
		return widths
	}
	usable := width - (len(columns)-1)*sepWidth
	sum := 0
	for i := range widths {
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
		sum += widths[i]
	}
	for sum > usable {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			break
		}
		widths[widest]--
		sum--
	}
	return widths
}
