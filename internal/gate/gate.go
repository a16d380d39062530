package gate

import (
	"context"
	"errors"
	"sync"
)

// ErrAborted reports that a request was superseded by a newer one or by
// teardown. It reflects changed user intent, not failure.
var ErrAborted = errors.New("request aborted")

// ErrClosed is returned by Begin after Close.
var ErrClosed = errors.New("gate closed")

// Token identifies one issued request. Its context is cancelled as soon as a
// newer request begins or the gate closes.
type Token struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the cancellation context to pass to the remote call.
func (t Token) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Generation returns the request's sequence number.
func (t Token) Generation() uint64 {
	return t.gen
}

// Gate hands out tokens so that only the most recently issued request is
// allowed to apply its result.
type Gate struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	closed  bool
	aborted uint64
}

// New returns an open gate.
func New() *Gate {
	return &Gate{}
}

// Begin cancels the outstanding request, if any, and issues a new token
// derived from parent.
func (g *Gate) Begin(parent context.Context) (Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return Token{}, ErrClosed
	}
	if g.cancel != nil {
		g.cancel()
		g.aborted++
	}
	g.gen++
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	return Token{gen: g.gen, ctx: ctx, cancel: cancel}, nil
}

// Current reports whether tok is still the active request and the gate is
// open. Results for a token that is not current must be discarded.
func (g *Gate) Current(tok Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.closed && tok.gen == g.gen && tok.ctx != nil && tok.ctx.Err() == nil
}

// Finish releases the token's resources. Finishing the active token leaves
// no request outstanding.
func (g *Gate) Finish(tok Token) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if tok.cancel != nil {
		tok.cancel()
	}
	if tok.gen == g.gen {
		g.cancel = nil
	}
}

// Outstanding reports whether a request is in flight.
func (g *Gate) Outstanding() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

// Aborted returns how many requests were superseded.
func (g *Gate) Aborted() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.aborted
}

// Close cancels the outstanding request and refuses new ones.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.closed = true
}

// IsAborted reports whether err means the request was superseded or torn
// down, which callers treat as a silent no-op.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed)
}
