package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/formatter"
)

// maxSuggestionRows caps the dropdown so results stay visible.
func (m *Model) maxSuggestionRows() int {
	rows := m.Height / 2
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m *Model) visibleSuggestions() []completion.Suggestion {
	items := m.state.Revealed()
	if limit := m.maxSuggestionRows(); len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (m *Model) render() string {
	var lines []string
	lines = append(lines, m.renderInput())
	if m.HelpVisible {
		lines = append(lines, m.rule())
		lines = append(lines, helpLines()...)
		return m.finish(lines)
	}
	if m.state.Visible {
		lines = append(lines, m.renderSuggestions()...)
	}
	lines = append(lines, m.rule())
	lines = append(lines, m.renderResults()...)
	return m.finish(lines)
}

// finish pads or trims the body to the window and appends the status and
// footer rows.
func (m *Model) finish(body []string) string {
	tail := []string{m.renderStatus(), m.renderFooter()}
	room := m.Height - len(tail)
	if room < 1 {
		room = 1
	}
	if len(body) > room {
		body = body[:room]
	}
	for len(body) < room {
		body = append(body, "")
	}
	out := joinLines(append(body, tail...))
	if m.NoColor {
		out = stripANSI(out)
	}
	return out
}

func (m *Model) rule() string {
	return m.styles.border.Render(strings.Repeat("─", m.Width))
}

func (m *Model) renderInput() string {
	return m.styles.prompt.Render(m.promptText()) + m.Input.View()
}

func kindLabel(k completion.Kind) string {
	switch k {
	case completion.KindRecentSearch:
		return "recent"
	case completion.KindConjunction:
		return "conj"
	case completion.KindOperator:
		return "op"
	case completion.KindFunction:
		return "func"
	}
	return string(k)
}

func (m *Model) renderSuggestions() []string {
	items := m.visibleSuggestions()
	textWidth := m.Width / 2
	lines := make([]string, 0, len(items)+1)
	for i, s := range items {
		text := runewidth.FillRight(runewidth.Truncate(s.Text, textWidth, "…"), textWidth)
		desc := kindLabel(s.Kind)
		if s.Description != "" {
			desc += "  " + s.Description
		}
		desc = runewidth.Truncate(desc, m.Width-textWidth-3, "…")
		if i == m.state.Index {
			row := runewidth.FillRight("▸ "+text+" "+desc, m.Width)
			lines = append(lines, m.styles.selected.Render(row))
			continue
		}
		lines = append(lines, "  "+m.styles.suggestion.Render(text)+" "+m.styles.description.Render(desc))
	}
	hidden := len(m.state.Items) - len(items)
	if hidden > 0 {
		lines = append(lines, m.styles.description.Render(fmt.Sprintf("  … %d more (PgDn)", hidden)))
	}
	return lines
}

func (m *Model) renderResults() []string {
	if m.result == nil {
		return []string{m.styles.status.Render("Press Enter to run the query.")}
	}
	res := m.result
	if res.Err != nil {
		return []string{m.styles.err.Render("query failed: " + res.Err.Error())}
	}
	summary := fmt.Sprintf("%d of %d hits in %s (%s)", len(res.Hits), res.Total, res.Index, res.Took.Round(time.Microsecond))
	lines := []string{m.styles.status.Render(summary)}
	table := formatter.RenderHits(res.Hits, formatter.TableOptions{
		Width:      m.Width,
		RowNumbers: true,
		NoColor:    m.NoColor,
		Header:     m.styles.prompt.Bold(true),
		Value:      m.styles.suggestion,
		Rule:       m.styles.border,
	})
	if table == "" {
		return lines
	}
	return append(lines, strings.Split(strings.TrimRight(table, "\n"), "\n")...)
}

func (m *Model) renderStatus() string {
	notice, err := m.banner.get()
	switch {
	case err != nil:
		return m.styles.err.Render(runewidth.Truncate(err.Error(), m.Width, "…"))
	case notice != "":
		return m.styles.err.Render(runewidth.Truncate(notice, m.Width, "…"))
	}
	st := m.state
	text := fmt.Sprintf("%d suggestions", len(st.Items))
	if st.Index >= 0 {
		text = fmt.Sprintf("%d/%d", st.Index+1, len(st.Items))
	}
	if m.AppName != "" {
		text = m.AppName + " · " + text
	}
	return m.styles.status.Render(text)
}

func (m *Model) renderFooter() string {
	return m.styles.footer.Render(runewidth.Truncate("F1 help  F2 language  PgDn more  Enter run  Ctrl+C quit", m.Width, ""))
}
