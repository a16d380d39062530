package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/internal/limiter"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// ErrNoTarget is reported when a query is submitted without a resolvable
// index target.
var ErrNoTarget = errors.New("no index target to search")

// Result is the outcome of one submitted query.
type Result struct {
	Query query.Query `json:"query" yaml:"query"`
	Index string      `json:"index" yaml:"index"`
	// Total counts every matching document before limiting.
	Total int              `json:"total" yaml:"total"`
	Hits  []map[string]any `json:"hits" yaml:"hits"`
	Took  time.Duration    `json:"took" yaml:"took"`
	Err   error            `json:"-" yaml:"-"`
}

// Search runs q over p. The limits page the returned hits only.
func Search(ctx context.Context, c *Compiler, p *index.Pattern, q query.Query, limits limiter.Config) (Result, error) {
	start := time.Now()
	res := Result{Query: q, Index: p.Title}
	m, err := c.Compile(q)
	if err != nil {
		return res, err
	}
	var hits []map[string]any
	for i, doc := range p.Documents {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		ok, err := m.Match(doc)
		if err != nil {
			// A document the expression cannot evaluate (missing key) is
			// simply not a hit.
			continue
		}
		if ok {
			hits = append(hits, doc)
		}
	}
	res.Total = len(hits)
	res.Hits = limiter.Apply(limits, hits)
	res.Took = time.Since(start)
	return res, nil
}

// Executor is the query sink for an input: every submitted query is run
// against the first resolved index target and the result is kept.
type Executor struct {
	compiler *Compiler
	source   index.Source
	limits   limiter.Config
	log      logr.Logger

	mu       sync.Mutex
	targets  []index.Target
	last     *Result
	onResult func(Result)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLimits pages returned hits.
func WithLimits(c limiter.Config) ExecutorOption {
	return func(e *Executor) { e.limits = c }
}

// WithLogger sets the executor logger.
func WithLogger(l logr.Logger) ExecutorOption {
	return func(e *Executor) { e.log = l }
}

// OnResult registers f to receive every result, including failures.
func OnResult(f func(Result)) ExecutorOption {
	return func(e *Executor) { e.onResult = f }
}

// NewExecutor returns an executor resolving named targets through src.
func NewExecutor(src index.Source, targets []index.Target, opts ...ExecutorOption) (*Executor, error) {
	c, err := NewCompiler()
	if err != nil {
		return nil, err
	}
	e := &Executor{compiler: c, source: src, targets: targets, log: logr.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.limits.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetTargets replaces the index targets.
func (e *Executor) SetTargets(targets []index.Target) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targets = targets
}

// Submit runs q and records the result. The returned error is also stored
// on the result.
func (e *Executor) Submit(ctx context.Context, q query.Query) error {
	e.mu.Lock()
	targets := e.targets
	e.mu.Unlock()

	res, err := e.run(ctx, q, targets)
	res.Err = err
	if err != nil {
		e.log.Error(err, "query failed", "query", q.Text, "language", string(q.Language))
	} else {
		e.log.Info("query executed", "query", q.Text, "language", string(q.Language),
			"index", res.Index, "total", res.Total, "took", res.Took.String())
	}

	e.mu.Lock()
	e.last = &res
	cb := e.onResult
	e.mu.Unlock()
	if cb != nil {
		cb(res)
	}
	return err
}

func (e *Executor) run(ctx context.Context, q query.Query, targets []index.Target) (Result, error) {
	patterns, err := index.Resolve(ctx, e.source, targets)
	if err != nil {
		return Result{Query: q}, err
	}
	if len(patterns) == 0 {
		return Result{Query: q}, ErrNoTarget
	}
	return Search(ctx, e.compiler, patterns[0], q, e.limits)
}

// Last returns the most recent result.
func (e *Executor) Last() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return Result{}, false
	}
	return *e.last, true
}
