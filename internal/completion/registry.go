package completion

import (
	"context"
	"sort"
	"sync"

	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// Request scopes one completion call.
type Request struct {
	Language query.Language
	Patterns []*index.Pattern
	// Query is the user-form text.
	Query string
	// SelectionStart and SelectionEnd are rune offsets of the caret
	// selection. Completions are computed at SelectionEnd.
	SelectionStart int
	SelectionEnd   int
}

// caret returns SelectionEnd clamped into text.
func (r Request) caret(text []rune) int {
	c := r.SelectionEnd
	if c < 0 {
		c = 0
	}
	if c > len(text) {
		c = len(text)
	}
	return c
}

// Provider produces completions for one query language.
type Provider interface {
	Language() query.Language
	// Suggest returns ranked suggestions. Implementations must return
	// promptly with ctx.Err() once ctx is done.
	Suggest(ctx context.Context, req Request) ([]Suggestion, error)
}

// Registry routes completion requests to the provider for their language.
type Registry struct {
	mu        sync.RWMutex
	providers map[query.Language]Provider
}

// NewRegistry returns a registry holding providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: map[query.Language]Provider{}}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any provider for the same language.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Language()] = p
}

// HasQuerySuggestions reports whether lang has a provider.
func (r *Registry) HasQuerySuggestions(lang query.Language) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[lang]
	return ok
}

// Languages lists the languages with providers.
func (r *Registry) Languages() []query.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]query.Language, 0, len(r.providers))
	for l := range r.providers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetQuerySuggestions runs the provider for req.Language. A language
// without a provider yields no suggestions.
func (r *Registry) GetQuerySuggestions(ctx context.Context, req Request) ([]Suggestion, error) {
	r.mu.RLock()
	p, ok := r.providers[req.Language]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := p.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
