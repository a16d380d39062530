package typeahead

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// Completer is the remote completion service together with its capability
// probe. *completion.Registry implements it.
type Completer interface {
	HasQuerySuggestions(lang query.Language) bool
	GetQuerySuggestions(ctx context.Context, req completion.Request) ([]completion.Suggestion, error)
}

// FetchRequest is a snapshot of the input taken when a fetch is issued.
type FetchRequest struct {
	Language  query.Language
	Targets   []index.Target
	Text      string
	Selection Selection
}

// Fetcher merges remote completions with recent-search matches.
type Fetcher struct {
	completer Completer
	source    index.Source
}

// NewFetcher returns a fetcher. completer and source may be nil, in which
// case only recent searches are suggested.
func NewFetcher(completer Completer, source index.Source) *Fetcher {
	return &Fetcher{completer: completer, source: source}
}

func (f *Fetcher) remoteCapable(req FetchRequest) bool {
	return f.completer != nil && len(req.Targets) > 0 && f.completer.HasQuerySuggestions(req.Language)
}

// Fetch returns remote completions followed by recent searches matching
// req.Text. The remote call and the recent-search lookup run concurrently.
// Only the first resolved index target scopes the remote call.
//
// ErrAborted is returned when ctx is cancelled, and the caller must leave
// its current list untouched. Any other failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, recent *history.Log, req FetchRequest) ([]completion.Suggestion, error) {
	if ctx.Err() != nil {
		return nil, ErrAborted
	}

	var (
		remote  []completion.Suggestion
		matches []string
	)
	g, gctx := errgroup.WithContext(ctx)
	if recent != nil {
		g.Go(func() error {
			var err error
			matches, err = recent.Matches(gctx, req.Text, query.ToUser)
			return err
		})
	}
	if f.remoteCapable(req) {
		g.Go(func() error {
			patterns, err := index.Resolve(gctx, f.source, req.Targets)
			if err != nil || len(patterns) == 0 {
				return err
			}
			sel := req.Selection.Clamp(len([]rune(req.Text)))
			remote, err = f.completer.GetQuerySuggestions(gctx, completion.Request{
				Language:       req.Language,
				Patterns:       patterns[:1],
				Query:          req.Text,
				SelectionStart: sel.Start,
				SelectionEnd:   sel.End,
			})
			return err
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil, ErrAborted
	}
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	end := len([]rune(req.Text))
	out := make([]completion.Suggestion, 0, len(remote)+len(matches))
	out = append(out, remote...)
	for _, m := range matches {
		out = append(out, completion.Suggestion{
			Kind:  completion.KindRecentSearch,
			Text:  m,
			Start: 0,
			End:   end,
		})
	}
	return out, nil
}
