package ui

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/internal/search"
	"github.com/oakwood-commons/querybar/internal/typeahead"
	"github.com/oakwood-commons/querybar/pkg/query"
)

func logsPattern() *index.Pattern {
	return index.NewPattern("logs", []map[string]any{
		{"agent": "firefox", "status": 200, "user": []any{map[string]any{"name": "ann"}}},
		{"agent": "firefox", "status": 200},
		{"agent": "chrome", "status": 404},
	})
}

func newTestModel(t *testing.T) (*Model, *history.MemoryStore) {
	t.Helper()
	p := logsPattern()
	targets := []index.Target{index.Resolved(p)}
	exec, err := search.NewExecutor(nil, targets)
	require.NoError(t, err)
	kuery := completion.NewKueryProvider()
	t.Cleanup(kuery.Close)

	store := history.NewMemoryStore()
	m := NewModel(Options{
		AppName:   "test",
		Query:     query.Query{Language: query.LanguageKuery},
		Targets:   targets,
		Completer: completion.NewRegistry(kuery),
		Store:     store,
		Settings:  store,
		Executor:  exec,
		Theme:     DefaultTheme(),
		NoColor:   true,
		Width:     120,
		Height:    30,
	})
	t.Cleanup(func() {
		_ = m.Session.Close()
		m.Session.Wait()
	})
	return m, store
}

func TestSnapshotShowsFieldSuggestions(t *testing.T) {
	m, _ := newTestModel(t)
	out := RenderSnapshot(m, []string{"ag"})

	assert.Contains(t, out, "kuery ❯ ag")
	assert.Contains(t, out, "agent:")
	assert.Contains(t, out, "test · 1 suggestions")
	assert.NotContains(t, out, "\x1b[")
}

func TestStartupKeysApplySuggestion(t *testing.T) {
	m, _ := newTestModel(t)
	out := RenderSnapshot(m, []string{"ag<Down><CR>"})

	assert.Equal(t, "agent:", m.Input.Value())
	assert.Equal(t, 6, m.Input.Position())
	assert.True(t, m.state.Visible)
	assert.Contains(t, out, "firefox")
	assert.Contains(t, out, "chrome")
}

func TestEnterRunsQuery(t *testing.T) {
	m, store := newTestModel(t)
	out := RenderSnapshot(m, []string{"status:200<CR>"})

	res, ok := m.Result()
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Total)
	assert.Contains(t, out, "2 of 2 hits in logs")
	assert.False(t, m.state.Visible)

	got, err := store.Load(context.Background(), history.Key("test", string(query.LanguageKuery)))
	require.NoError(t, err)
	assert.Equal(t, []string{"status:200"}, got)
}

func TestDownOnEmptyInputShowsRecent(t *testing.T) {
	m, _ := newTestModel(t)
	RenderSnapshot(m, []string{"status:200<CR>"})
	m.Session.Type("", typeahead.Caret(0))
	out := RenderSnapshot(m, []string{"<Esc><Down>"})

	assert.True(t, m.state.Visible)
	assert.Contains(t, out, "recent")
	assert.Contains(t, out, "status:200")
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	out := RenderSnapshot(m, []string{"<F1>"})
	assert.True(t, m.HelpVisible)
	assert.Contains(t, out, "Esc / Tab  hide suggestions")

	out = RenderSnapshot(m, []string{"<Esc>"})
	assert.False(t, m.HelpVisible)
	assert.NotContains(t, out, "Esc / Tab  hide suggestions")
}

func TestLanguageCycle(t *testing.T) {
	m, store := newTestModel(t)
	out := RenderSnapshot(m, []string{"<F2>"})

	assert.Equal(t, query.LanguageLucene, m.Session.Query().Language)
	assert.Contains(t, out, "lucene ❯")
	v, ok, err := store.Get(context.Background(), typeahead.LanguageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "lucene", v)

	RenderSnapshot(m, []string{"<F2><F2>"})
	assert.Equal(t, query.LanguageKuery, m.Session.Query().Language)
}

func TestNestedFieldNotice(t *testing.T) {
	m, store := newTestModel(t)
	out := RenderSnapshot(m, []string{"user.n<Down><CR>"})
	assert.Equal(t, "user.name:", m.Input.Value())
	assert.Contains(t, out, "user.name is a nested field")

	out = RenderSnapshot(m, []string{"<F3>"})
	assert.NotContains(t, out, "is a nested field")
	v, ok, err := store.Get(context.Background(), typeahead.NestedSyntaxOptOutKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestMouseSelectsSuggestion(t *testing.T) {
	m, _ := newTestModel(t)
	RenderSnapshot(m, []string{"ag"})

	m.Update(tea.MouseMotionMsg{X: 4, Y: 1})
	assert.Equal(t, 0, m.state.Index)

	m.Update(tea.MouseClickMsg{X: 4, Y: 1})
	assert.Equal(t, "agent:", m.Input.Value())

	m.Update(tea.MouseClickMsg{X: 4, Y: 20})
	assert.Equal(t, "agent:", m.Input.Value())
}

func TestMouseClickMovesCaret(t *testing.T) {
	m, _ := newTestModel(t)
	RenderSnapshot(m, []string{"status:200", "<Esc>"})
	require.False(t, m.state.Visible)

	prompt := runewidth.StringWidth(m.promptText())
	m.Update(tea.MouseClickMsg{X: prompt + 3, Y: 0})
	assert.Equal(t, typeahead.Caret(3), m.Session.Selection())
	assert.True(t, m.state.Visible)

	m.Update(tea.MouseClickMsg{X: prompt + 40, Y: 0})
	assert.Equal(t, typeahead.Caret(10), m.Session.Selection())

	m.Update(tea.MouseClickMsg{X: 0, Y: 0})
	assert.Equal(t, typeahead.Caret(0), m.Session.Selection())
}

func TestViewEnablesMouse(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, tea.MouseModeNone, m.View().MouseMode)
	m.Mouse = true
	assert.Equal(t, tea.MouseModeCellMotion, m.View().MouseMode)
}

func TestQuitClosesSession(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.ErrorIs(t, m.Session.Close(), typeahead.ErrClosed)
}

func TestParseKeys(t *testing.T) {
	keys := ParseKeys([]string{"ab<Down><cr>", `\<Tab>`, "", "x<nope>"})
	var got []string
	for _, k := range keys {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{
		"a", "b", "down", "enter",
		"<", "T", "a", "b", ">",
		"x", "<", "n", "o", "p", "e", ">",
	}, got)
}

func TestInputKey(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyPressMsg
		want typeahead.Key
		ok   bool
	}{
		{"down", tea.KeyPressMsg{Code: tea.KeyDown}, typeahead.Key{Code: typeahead.KeyDown}, true},
		{"enter", tea.KeyPressMsg{Code: tea.KeyEnter}, typeahead.Key{Code: typeahead.KeyEnter}, true},
		{"alt backspace", tea.KeyPressMsg{Code: tea.KeyBackspace, Mod: tea.ModAlt}, typeahead.Key{Code: typeahead.KeyBackspace, Meta: true}, true},
		{"rune", tea.KeyPressMsg{Code: '(', Text: "("}, typeahead.Rune('('), true},
		{"ctrl rune", tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl}, typeahead.Key{}, false},
		{"unmapped", tea.KeyPressMsg{Code: tea.KeyF5}, typeahead.Key{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := inputKey(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionForKey(t *testing.T) {
	assert.Equal(t, ActionQuit, ActionForKey(nil, "ctrl+c"))
	assert.Equal(t, ActionLoadMore, ActionForKey(nil, "pgdown"))
	assert.Equal(t, ActionNone, ActionForKey(nil, "a"))

	custom := map[string]Action{"f9": ActionHelp}
	assert.Equal(t, ActionHelp, ActionForKey(custom, "f9"))
	assert.Equal(t, ActionNone, ActionForKey(custom, "f1"))
}

func TestThemeFromConfigFallsBack(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme.Prompt)
	s := newStyles(theme, true)
	assert.Equal(t, "x", stripANSI(s.selected.Render("x")))
}
