package typeahead

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/gate"
	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

const (
	// NestedSyntaxOptOutKey is the setting that silences the nested field
	// syntax notice.
	NestedSyntaxOptOutKey = "DQLNestedQuerySyntaxInfoOptOut"
	// LanguageKey is the setting holding the last selected query language.
	LanguageKey = "userQueryLanguage"
)

// Sink executes submitted queries.
type Sink interface {
	Submit(ctx context.Context, q query.Query) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, q query.Query) error

// Submit implements Sink.
func (f SinkFunc) Submit(ctx context.Context, q query.Query) error {
	return f(ctx, q)
}

// Notifier shows one-off hints to the user.
type Notifier interface {
	// NestedFieldSyntax is called when a suggestion for a nested field is
	// applied and the notice has not been dismissed.
	NestedFieldSyntax(f index.Field)
}

// Config is the initial binding of an Input.
type Config struct {
	// AppName scopes the recent-search log.
	AppName      string
	Query        query.Query
	IndexTargets []index.Target
}

// Input is one query bar session. Hosts forward user events to it and
// render the SuggestionListState it reports.
type Input struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	disposed bool

	appName string
	text    *TextModel
	state   SuggestionListState
	targets []index.Target
	focused bool
	lastErr error

	completer Completer
	source    index.Source
	fetcher   *Fetcher
	store     history.Store
	capacity  int
	recent    *history.Log
	settings  history.Settings
	sink      Sink
	notifier  Notifier

	clock    gate.Clock
	delay    time.Duration
	debounce *gate.Debouncer
	gate     *gate.Gate
	inflight sync.WaitGroup

	log      logr.Logger
	onState  func(SuggestionListState)
	onChange func(query.Query)
	onError  func(error)
	onFocus  func(bool)
	onBlur   func()
}

// effects are the callbacks and side effects produced by one event. They
// run after the lock is released, in field order.
type effects struct {
	language  query.Language
	change    *query.Query
	state     *SuggestionListState
	focus     *bool
	blur      bool
	nested    *index.Field
	submit    *query.Query
	submitLog *history.Log
	err       error
}

// New starts a session and schedules the first suggestion refresh.
func New(cfg Config, opts ...Option) *Input {
	if cfg.Query.Language == "" {
		cfg.Query.Language = query.LanguageKuery
	}
	in := &Input{
		appName:  cfg.AppName,
		text:     NewTextModel(cfg.Query),
		state:    InitialState(),
		targets:  append([]index.Target(nil), cfg.IndexTargets...),
		capacity: history.DefaultCapacity,
		gate:     gate.New(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.ctx, in.cancel = context.WithCancel(context.Background())
	in.fetcher = NewFetcher(in.completer, in.source)
	in.debounce = gate.NewDebouncer(in.delay, in.clock)

	in.mu.Lock()
	in.recent = in.logFor(in.text.Language())
	var eff effects
	if q, changed := in.text.Normalize(); changed {
		eff.change = &q
	}
	in.scheduleLocked()
	in.mu.Unlock()
	in.dispatch(eff)
	return in
}

func (in *Input) logFor(lang query.Language) *history.Log {
	if in.store == nil {
		return nil
	}
	return history.NewLog(in.store, history.Key(in.appName, string(lang)), in.capacity)
}

func (in *Input) scheduleLocked() {
	in.debounce.Trigger(in.refresh)
}

// refresh issues a fetch for the current text and caret. It runs when the
// debounce timer fires.
func (in *Input) refresh() {
	in.mu.Lock()
	if in.disposed {
		in.mu.Unlock()
		return
	}
	tok, err := in.gate.Begin(in.ctx)
	if err != nil {
		in.mu.Unlock()
		return
	}
	req := FetchRequest{
		Language:  in.text.Language(),
		Targets:   append([]index.Target(nil), in.targets...),
		Text:      in.text.UserText(),
		Selection: in.text.Selection(),
	}
	recent := in.recent
	in.inflight.Add(1)
	in.mu.Unlock()

	in.log.V(1).Info("fetching suggestions", "generation", tok.Generation(), "language", req.Language, "caret", req.Selection.End)
	go func() {
		defer in.inflight.Done()
		items, err := in.fetcher.Fetch(tok.Context(), recent, req)
		in.complete(tok, items, err)
	}()
}

func (in *Input) complete(tok gate.Token, items []completion.Suggestion, err error) {
	in.mu.Lock()
	current := !in.disposed && in.gate.Current(tok)
	in.gate.Finish(tok)
	var eff effects
	switch {
	case !current || gate.IsAborted(err):
		in.log.V(1).Info("discarding suggestions", "generation", tok.Generation())
	case err != nil:
		in.lastErr = err
		eff.err = err
	default:
		in.lastErr = nil
		in.state = in.state.WithItems(items)
		eff.state = in.stateLocked()
	}
	in.mu.Unlock()
	in.dispatch(eff)
}

func (in *Input) stateLocked() *SuggestionListState {
	s := in.state
	return &s
}

func (in *Input) dispatch(eff effects) {
	ctx := in.ctx
	if eff.language != "" && in.settings != nil {
		if err := in.settings.Set(ctx, LanguageKey, string(eff.language)); err != nil {
			in.log.Error(err, "saving query language")
		}
	}
	if eff.change != nil && in.onChange != nil {
		in.onChange(*eff.change)
	}
	if eff.state != nil && in.onState != nil {
		in.onState(*eff.state)
	}
	if eff.focus != nil && in.onFocus != nil {
		in.onFocus(*eff.focus)
	}
	if eff.blur && in.onBlur != nil {
		in.onBlur()
	}
	if eff.nested != nil {
		in.notifyNested(ctx, *eff.nested)
	}
	if eff.submit != nil {
		if err := in.submit(ctx, eff.submitLog, *eff.submit); err != nil {
			eff.err = err
		}
	}
	if eff.err != nil {
		in.log.Error(eff.err, "query input")
		if in.onError != nil {
			in.onError(eff.err)
		}
	}
}

func (in *Input) notifyNested(ctx context.Context, f index.Field) {
	if in.notifier == nil {
		return
	}
	if in.settings != nil {
		v, ok, err := in.settings.Get(ctx, NestedSyntaxOptOutKey)
		if err != nil {
			in.log.Error(err, "reading notice preference")
		}
		if opted, _ := strconv.ParseBool(v); ok && opted {
			return
		}
	}
	in.notifier.NestedFieldSyntax(f)
}

// DismissNestedSyntaxNotice stops future nested field notices.
func (in *Input) DismissNestedSyntaxNotice(ctx context.Context) error {
	if in.settings == nil {
		return nil
	}
	return in.settings.Set(ctx, NestedSyntaxOptOutKey, "true")
}

// submit records q in the recent-search log and forwards it to the sink.
func (in *Input) submit(ctx context.Context, recent *history.Log, q query.Query) error {
	if recent != nil {
		if err := recent.Add(ctx, q.Text); err != nil {
			in.log.Error(err, "recording recent search")
		}
	}
	in.log.Info("submitting query", "language", q.Language, "query", q.Text)
	if in.sink == nil {
		return nil
	}
	return in.sink.Submit(ctx, q)
}

// lock acquires the mutex unless the input is closed.
func (in *Input) lock() bool {
	in.mu.Lock()
	if in.disposed {
		in.mu.Unlock()
		return false
	}
	return true
}

// setTextLocked stores user text, shows the list and schedules a refresh.
func (in *Input) setTextLocked(text string, sel Selection, eff *effects) {
	if in.text.SetUserText(text) {
		q := in.text.Query()
		eff.change = &q
	}
	in.text.SetSelection(sel)
	in.state = in.state.Reset()
	eff.state = in.stateLocked()
	in.scheduleLocked()
}

// Type records an edit of the text by the user.
func (in *Input) Type(text string, sel Selection) {
	if !in.lock() {
		return
	}
	var eff effects
	in.setTextLocked(text, sel, &eff)
	in.mu.Unlock()
	in.dispatch(eff)
}

// Click records a pointer click inside the input that left the caret at sel.
func (in *Input) Click(sel Selection) {
	in.MoveCaret(sel)
}

// MoveCaret records a caret movement without editing the text.
func (in *Input) MoveCaret(sel Selection) {
	if !in.lock() {
		return
	}
	var eff effects
	in.setTextLocked(in.text.UserText(), sel, &eff)
	in.mu.Unlock()
	in.dispatch(eff)
}

// KeyDown handles a key press and reports whether the input consumed it.
// Unconsumed keys should get their default editing behaviour from the host,
// followed by Type or MoveCaret.
func (in *Input) KeyDown(k Key) bool {
	if !in.lock() {
		return false
	}
	var (
		eff     effects
		handled bool
	)
	switch k.Code {
	case KeyDown:
		empty := in.text.UserText() == ""
		handled = in.state.Visible || empty
		in.state = in.state.Down(empty)
		eff.state = in.stateLocked()
	case KeyUp:
		handled = in.state.Visible && in.state.Index >= 0
		in.state = in.state.Up()
		eff.state = in.stateLocked()
	case KeyEnter:
		handled = true
		if s, ok := in.state.Selected(); ok {
			in.applyLocked(s, &eff)
		} else {
			in.submitLocked(in.text.Query(), &eff)
			in.state = in.state.Dismiss()
			eff.state = in.stateLocked()
		}
	case KeyEscape:
		handled = true
		in.state = in.state.Dismiss()
		eff.state = in.stateLocked()
	case KeyTab:
		in.state = in.state.Dismiss()
		eff.state = in.stateLocked()
	case KeyRune, KeyBackspace:
		key := k.Text
		if k.Code == KeyBackspace {
			key = query.KeyBackspace
		}
		sel := in.text.Selection()
		if edit, ok := query.MatchPairs(in.text.UserText(), sel.Start, sel.End, key, k.Meta); ok {
			handled = true
			in.setTextLocked(edit.Text, Selection{Start: edit.Start, End: edit.End}, &eff)
		}
	}
	in.mu.Unlock()
	in.dispatch(eff)
	return handled
}

func (in *Input) submitLocked(q query.Query, eff *effects) {
	eff.submit = &q
	eff.submitLog = in.recent
}

func (in *Input) applyLocked(s completion.Suggestion, eff *effects) {
	if s.Field != nil && s.Field.Nested {
		f := *s.Field
		eff.nested = &f
	}
	if s.IsRecentSearch() {
		// The list may predate the latest edit; a recent search replaces
		// whatever text is current.
		s.Start, s.End = 0, in.text.Len()
	}
	text, caret := Apply(in.text.UserText(), in.text.Selection(), s)
	in.setTextLocked(text, Caret(caret), eff)
	if s.IsRecentSearch() {
		in.state = in.state.Dismiss()
		eff.state = in.stateLocked()
		in.submitLocked(in.text.Query(), eff)
	}
}

// Apply splices s into the text at the current caret. Recent searches
// replace the whole text, are submitted immediately and close the list.
func (in *Input) Apply(s completion.Suggestion) {
	if !in.lock() {
		return
	}
	var eff effects
	in.applyLocked(s, &eff)
	in.mu.Unlock()
	in.dispatch(eff)
}

// ClickSuggestion applies item i of the current list and focuses the input.
// Out-of-range indexes are ignored.
func (in *Input) ClickSuggestion(i int) {
	if !in.lock() {
		return
	}
	var eff effects
	if i >= 0 && i < len(in.state.Items) {
		in.applyLocked(in.state.Items[i], &eff)
		in.focusLocked(true, &eff)
	}
	in.mu.Unlock()
	in.dispatch(eff)
}

// Hover selects item i under the pointer.
func (in *Input) Hover(i int) {
	in.transition(func(s SuggestionListState) SuggestionListState { return s.Hover(i) })
}

// LoadMore reveals the next page of suggestions.
func (in *Input) LoadMore() {
	in.transition(SuggestionListState.LoadMore)
}

// Dismiss hides the list.
func (in *Input) Dismiss() {
	in.transition(SuggestionListState.Dismiss)
}

func (in *Input) transition(f func(SuggestionListState) SuggestionListState) {
	if !in.lock() {
		return
	}
	in.state = f(in.state)
	eff := effects{state: in.stateLocked()}
	in.mu.Unlock()
	in.dispatch(eff)
}

func (in *Input) focusLocked(focused bool, eff *effects) {
	if in.focused == focused {
		return
	}
	in.focused = focused
	eff.focus = &focused
}

// Focus records that the input gained focus.
func (in *Input) Focus() {
	if !in.lock() {
		return
	}
	var eff effects
	in.focusLocked(true, &eff)
	in.mu.Unlock()
	in.dispatch(eff)
}

// Blur records that focus left the input, by blur or an outside click.
func (in *Input) Blur() {
	if !in.lock() {
		return
	}
	var eff effects
	in.state = in.state.Blur()
	eff.state = in.stateLocked()
	in.focusLocked(false, &eff)
	eff.blur = true
	in.mu.Unlock()
	in.dispatch(eff)
}

// Submit runs the current query, as Enter does with nothing selected.
func (in *Input) Submit() {
	if !in.lock() {
		return
	}
	var eff effects
	in.submitLocked(in.text.Query(), &eff)
	in.state = in.state.Dismiss()
	eff.state = in.stateLocked()
	in.mu.Unlock()
	in.dispatch(eff)
}

// SelectLanguage switches the query language, remembers the choice and
// submits an empty query in the new language.
func (in *Input) SelectLanguage(lang query.Language) {
	if !in.lock() {
		return
	}
	eff := effects{language: lang}
	q := query.Query{Language: lang}
	if in.text.SetQuery(q) {
		eff.change = &q
	}
	in.text.SetSelection(Caret(0))
	in.recent = in.logFor(lang)
	in.submitLocked(q, &eff)
	in.scheduleLocked()
	in.mu.Unlock()
	in.dispatch(eff)
}

// SetQuery binds a query supplied by the host. A query whose canonical
// form does not survive the user round trip is corrected and re-emitted
// through OnChange.
func (in *Input) SetQuery(q query.Query) {
	if !in.lock() {
		return
	}
	var eff effects
	if q.Language == "" {
		q.Language = in.text.Language()
	}
	langChanged := q.Language != in.text.Language()
	changed := in.text.SetQuery(q)
	if corrected, ok := in.text.Normalize(); ok {
		eff.change = &corrected
		changed = true
	}
	if langChanged {
		in.recent = in.logFor(q.Language)
	}
	if changed {
		in.scheduleLocked()
	}
	in.mu.Unlock()
	in.dispatch(eff)
}

// SetIndexTargets replaces the indexes suggestions are scoped to.
func (in *Input) SetIndexTargets(targets []index.Target) {
	if !in.lock() {
		return
	}
	in.targets = append([]index.Target(nil), targets...)
	in.scheduleLocked()
	in.mu.Unlock()
}

// State returns the current suggestion list.
func (in *Input) State() SuggestionListState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Query returns the bound query in canonical form.
func (in *Input) Query() query.Query {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.text.Query()
}

// UserText returns the text shown in the input.
func (in *Input) UserText() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.text.UserText()
}

// Selection returns the caret.
func (in *Input) Selection() Selection {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.text.Selection()
}

// Focused reports whether the input has focus.
func (in *Input) Focused() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.focused
}

// Err returns the last fetch failure, cleared by the next successful fetch.
func (in *Input) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastErr
}

// Recent returns the recent-search log for the current language, or nil
// without a history store.
func (in *Input) Recent() *history.Log {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.recent
}

// Wait blocks until every issued fetch has completed. Refreshes start on
// the debounce timer's goroutine, so call Wait only once no refresh can be
// pending, such as after Close or in tests driving a manual clock.
func (in *Input) Wait() {
	in.inflight.Wait()
}

// Flush runs a pending refresh now instead of after the idle delay and
// waits for its fetch. Like Wait it is meant for quiescent use: a host
// must not call it while its debounce timer can still fire.
func (in *Input) Flush() {
	if in.debounce.Pending() {
		in.debounce.Cancel()
		in.refresh()
	}
	in.inflight.Wait()
}

// Close cancels the in-flight fetch and the pending refresh. Results that
// arrive afterwards are dropped and every later event is ignored.
func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.disposed {
		return ErrClosed
	}
	in.disposed = true
	in.debounce.Stop()
	in.gate.Close()
	in.cancel()
	return nil
}
