package completion

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/oakwood-commons/querybar/pkg/query"
)

// Throttled limits how often the wrapped provider is called.
type Throttled struct {
	next    Provider
	limiter *rate.Limiter
}

// Throttle wraps p so that calls are spaced at least every apart, with
// bursts of up to burst calls.
func Throttle(p Provider, every time.Duration, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if every > 0 {
		limit = rate.Every(every)
	}
	return &Throttled{next: p, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Language() query.Language {
	return t.next.Language()
}

// Suggest waits for the limiter before delegating. A cancelled context
// ends the wait with ctx.Err().
func (t *Throttled) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return t.next.Suggest(ctx, req)
}
