package typeahead

import (
	"context"
	"sync"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// fakeCompleter answers with "<query>!" for every request. Calls can be
// held until released by request index; held calls may ignore cancellation to simulate a
// result that resolves after being superseded.
type fakeCompleter struct {
	mu           sync.Mutex
	languages    map[query.Language]bool
	requests     []completion.Request
	holds        map[int]chan struct{}
	hold         bool
	ignoreCancel bool
	err          error
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{
		languages: map[query.Language]bool{query.LanguageKuery: true},
		holds:     map[int]chan struct{}{},
	}
}

func (f *fakeCompleter) HasQuerySuggestions(lang query.Language) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.languages[lang]
}

func (f *fakeCompleter) GetQuerySuggestions(ctx context.Context, req completion.Request) ([]completion.Suggestion, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	var release chan struct{}
	if f.hold {
		release = make(chan struct{})
		f.holds[len(f.requests)-1] = release
	}
	ignore, err := f.ignoreCancel, f.err
	f.mu.Unlock()

	if release != nil {
		if ignore {
			<-release
		} else {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return []completion.Suggestion{{Kind: completion.KindValue, Text: req.Query + "!", Start: 0, End: req.SelectionEnd}}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCompleter) request(i int) completion.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func (f *fakeCompleter) release(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.holds[i])
}

// recorder collects everything an Input reports.
type recorder struct {
	mu      sync.Mutex
	states  []SuggestionListState
	changes []query.Query
	submits []query.Query
	errs    []error
	notices []index.Field
	focus   []bool
	blurs   int
}

func (r *recorder) Submit(_ context.Context, q query.Query) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submits = append(r.submits, q)
	return nil
}

func (r *recorder) NestedFieldSyntax(f index.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, f)
}

func (r *recorder) options() []Option {
	return []Option{
		WithSink(r),
		WithNotifier(r),
		OnState(func(s SuggestionListState) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.states = append(r.states, s)
		}),
		OnChange(func(q query.Query) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.changes = append(r.changes, q)
		}),
		OnError(func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		}),
		OnFocusChange(func(f bool) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.focus = append(r.focus, f)
		}),
		OnBlur(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.blurs++
		}),
	}
}

func (r *recorder) stateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *recorder) submitted() []query.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]query.Query(nil), r.submits...)
}

func (r *recorder) changed() []query.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]query.Query(nil), r.changes...)
}

func (r *recorder) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *recorder) nestedNotices() []index.Field {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]index.Field(nil), r.notices...)
}

func texts(items []completion.Suggestion) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Text
	}
	return out
}
