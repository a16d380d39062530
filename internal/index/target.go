package index

import (
	"context"
	"errors"
)

// Target is an index target as supplied by a host: either an already
// resolved pattern or the title of one.
type Target struct {
	Pattern *Pattern
	Name    string
}

// Named returns a target referring to a title.
func Named(title string) Target { return Target{Name: title} }

// Resolved returns a target wrapping p.
func Resolved(p *Pattern) Target { return Target{Pattern: p} }

// Source looks up patterns by title.
type Source interface {
	Get(ctx context.Context, title string) (*Pattern, error)
}

// Resolve returns the resolved patterns in targets followed by the patterns
// fetched from src for the named ones. Unknown titles are skipped.
func Resolve(ctx context.Context, src Source, targets []Target) ([]*Pattern, error) {
	var (
		out   []*Pattern
		names []string
	)
	for _, t := range targets {
		switch {
		case t.Pattern != nil:
			out = append(out, t.Pattern)
		case t.Name != "":
			names = append(names, t.Name)
		}
	}
	if src == nil {
		return out, nil
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := src.Get(ctx, name)
		if errors.Is(err, ErrNoIndex) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
