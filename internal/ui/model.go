package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/internal/search"
	"github.com/oakwood-commons/querybar/internal/typeahead"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// Options configures a Model and the query session it hosts.
type Options struct {
	AppName     string
	Query       query.Query
	Targets     []index.Target
	Languages   []query.Language
	Completer   typeahead.Completer
	Source      index.Source
	Store       history.Store
	Settings    history.Settings
	HistorySize int
	Executor    *search.Executor
	Debounce    time.Duration
	Theme       Theme
	NoColor     bool
	Mouse       bool
	Width       int
	Height      int
	Bindings    map[string]Action
	Logger      logr.Logger
}

// refreshMsg tells the model the session changed off the UI goroutine.
type refreshMsg struct{}

// banner collects messages reported by the session from any goroutine.
type banner struct {
	mu     sync.Mutex
	notice string
	err    error
}

func (b *banner) NestedFieldSyntax(f index.Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	path := f.NestedPath
	if path == "" {
		path = f.Name
	}
	b.notice = fmt.Sprintf("%s is a nested field: use %s:{ ... } to match within one object (F3 to hide)", f.Name, path)
}

func (b *banner) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *banner) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = ""
	b.err = nil
}

func (b *banner) get() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice, b.err
}

// Model is the Bubble Tea host for one query session.
type Model struct {
	Input       textinput.Model
	Session     *typeahead.Input
	Executor    *search.Executor
	AppName     string
	Languages   []query.Language
	Bindings    map[string]Action
	NoColor     bool
	Mouse       bool
	Width       int
	Height      int
	HelpVisible bool

	styles  styles
	state   typeahead.SuggestionListState
	result  *search.Result
	banner  *banner
	refresh chan struct{}
}

// NewModel starts a query session and wraps it in a model.
func NewModel(opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Search (F1 for help)"
	ti.CharLimit = 2000
	ti.SetWidth(80)
	ti.Focus()

	languages := opts.Languages
	if len(languages) == 0 {
		languages = query.Languages()
	}
	m := &Model{
		Input:     ti,
		Executor:  opts.Executor,
		AppName:   opts.AppName,
		Languages: languages,
		Bindings:  opts.Bindings,
		NoColor:   opts.NoColor,
		Mouse:     opts.Mouse,
		Width:     opts.Width,
		Height:    opts.Height,
		styles:    newStyles(opts.Theme, opts.NoColor),
		banner:    &banner{},
		refresh:   make(chan struct{}, 1),
	}
	if m.Width <= 0 {
		m.Width = 80
	}
	if m.Height <= 0 {
		m.Height = 24
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	sessionOpts := []typeahead.Option{
		typeahead.WithCompleter(opts.Completer),
		typeahead.WithIndexSource(opts.Source),
		typeahead.WithNotifier(m.banner),
		typeahead.WithDebounce(opts.Debounce),
		typeahead.WithLogger(log),
		typeahead.OnState(func(typeahead.SuggestionListState) { m.signal() }),
		typeahead.OnError(func(err error) {
			m.banner.setErr(err)
			m.signal()
		}),
	}
	if opts.Store != nil {
		sessionOpts = append(sessionOpts, typeahead.WithHistory(opts.Store, opts.HistorySize))
	}
	if opts.Settings != nil {
		sessionOpts = append(sessionOpts, typeahead.WithSettings(opts.Settings))
	}
	if opts.Executor != nil {
		sessionOpts = append(sessionOpts, typeahead.WithSink(opts.Executor))
	}
	m.Session = typeahead.New(typeahead.Config{
		AppName:      opts.AppName,
		Query:        opts.Query,
		IndexTargets: opts.Targets,
	}, sessionOpts...)
	m.Session.Focus()
	m.sync()
	m.layout()
	return m
}

// signal wakes the model without blocking the session.
func (m *Model) signal() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

func (m *Model) waitForRefresh() tea.Cmd {
	ch := m.refresh
	return func() tea.Msg {
		<-ch
		return refreshMsg{}
	}
}

// sync copies session state into the view.
func (m *Model) sync() {
	m.state = m.Session.State()
	if text := m.Session.UserText(); m.Input.Value() != text {
		m.Input.SetValue(text)
	}
	m.Input.SetCursor(m.Session.Selection().End)
	if m.Executor != nil {
		if res, ok := m.Executor.Last(); ok {
			m.result = &res
		}
	}
}

func (m *Model) layout() {
	w := m.Width - len([]rune(m.promptText()))
	if w < 10 {
		w = 10
	}
	m.Input.SetWidth(w)
}

func (m *Model) promptText() string {
	return fmt.Sprintf("%s ❯ ", m.Session.Query().Language)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForRefresh())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case refreshMsg:
		m.sync()
		return m, m.waitForRefresh()
	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		if mouse.Y == 0 {
			m.Session.Click(typeahead.Caret(m.caretAt(mouse.X)))
			m.sync()
			return m, nil
		}
		if i, ok := m.suggestionAt(mouse.Y); ok {
			m.Session.ClickSuggestion(i)
			m.sync()
		}
		return m, nil
	case tea.MouseMotionMsg:
		if i, ok := m.suggestionAt(msg.Mouse().Y); ok {
			m.Session.Hover(i)
			m.sync()
		}
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.HelpVisible {
		switch ActionForKey(m.Bindings, msg.String()) {
		case ActionQuit:
			return m.quit()
		case ActionHelp:
			m.HelpVisible = false
		}
		if msg.Code == tea.KeyEscape {
			m.HelpVisible = false
		}
		return m, nil
	}

	switch ActionForKey(m.Bindings, msg.String()) {
	case ActionQuit:
		return m.quit()
	case ActionHelp:
		m.HelpVisible = true
		return m, nil
	case ActionLanguage:
		m.banner.clear()
		m.Session.SelectLanguage(m.nextLanguage())
		m.sync()
		m.layout()
		return m, nil
	case ActionLoadMore:
		m.Session.LoadMore()
		m.sync()
		return m, nil
	case ActionDismiss:
		_ = m.Session.DismissNestedSyntaxNotice(context.Background())
		m.banner.clear()
		return m, nil
	}

	key, ok := inputKey(msg)
	if ok && key.Code == typeahead.KeyEnter {
		m.banner.setErr(nil)
	}
	if ok && m.Session.KeyDown(key) {
		m.sync()
		return m, nil
	}

	before, pos := m.Input.Value(), m.Input.Position()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	after, caret := m.Input.Value(), m.Input.Position()
	switch {
	case after != before:
		m.Session.Type(after, typeahead.Caret(caret))
	case caret != pos || (ok && key.IsCaretMove()):
		m.Session.MoveCaret(typeahead.Caret(caret))
	}
	m.sync()
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	_ = m.Session.Close()
	return m, tea.Quit
}

func (m *Model) nextLanguage() query.Language {
	current := m.Session.Query().Language
	for i, l := range m.Languages {
		if l == current {
			return m.Languages[(i+1)%len(m.Languages)]
		}
	}
	return m.Languages[0]
}

// suggestionAt maps a screen row to a revealed suggestion. Suggestions
// start on the row below the input.
func (m *Model) suggestionAt(y int) (int, bool) {
	if !m.state.Visible {
		return 0, false
	}
	i := y - 1
	if i < 0 || i >= len(m.visibleSuggestions()) {
		return 0, false
	}
	return i, true
}

// caretAt maps a column on the input row to a rune offset in the text.
func (m *Model) caretAt(x int) int {
	col := x - runewidth.StringWidth(m.promptText())
	pos := 0
	for _, r := range m.Session.UserText() {
		w := runewidth.RuneWidth(r)
		if col < w {
			break
		}
		col -= w
		pos++
	}
	return pos
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	if m.Mouse {
		v.MouseMode = tea.MouseModeCellMotion
	}
	return v
}

// Result returns the most recent query result.
func (m *Model) Result() (search.Result, bool) {
	if m.result == nil {
		return search.Result{}, false
	}
	return *m.result, true
}

func helpLines() []string {
	return []string{
		"Type a query; suggestions refresh as you type.",
		"",
		"↓ / ↑      select a suggestion (↓ on an empty input opens recent searches)",
		"Enter      apply the selected suggestion, or run the query",
		"Esc / Tab  hide suggestions",
		"PgDn       show more suggestions",
		"F2         switch query language",
		"F3         hide the nested field notice",
		"F1 / Esc   close this help",
		"Ctrl+C     quit",
	}
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
