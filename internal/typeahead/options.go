package typeahead

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/querybar/internal/gate"
	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// Option configures an Input.
type Option func(*Input)

// WithCompleter sets the remote completion service.
func WithCompleter(c Completer) Option {
	return func(in *Input) { in.completer = c }
}

// WithIndexSource sets where named index targets are resolved.
func WithIndexSource(src index.Source) Option {
	return func(in *Input) { in.source = src }
}

// WithHistory persists recent searches in store. capacity <= 0 uses
// history.DefaultCapacity.
func WithHistory(store history.Store, capacity int) Option {
	return func(in *Input) {
		in.store = store
		if capacity > 0 {
			in.capacity = capacity
		}
	}
}

// WithSettings sets the preference store used for the selected language
// and dismissed notices.
func WithSettings(s history.Settings) Option {
	return func(in *Input) { in.settings = s }
}

// WithSink sets the query execution collaborator.
func WithSink(s Sink) Option {
	return func(in *Input) { in.sink = s }
}

// WithNotifier receives one-off syntax notices.
func WithNotifier(n Notifier) Option {
	return func(in *Input) { in.notifier = n }
}

// WithClock replaces the clock driving the debounce timer.
func WithClock(c gate.Clock) Option {
	return func(in *Input) { in.clock = c }
}

// WithDebounce sets the idle delay before a refresh.
func WithDebounce(d time.Duration) Option {
	return func(in *Input) { in.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(in *Input) { in.log = l }
}

// OnState is called with the suggestion list after every transition.
func OnState(f func(SuggestionListState)) Option {
	return func(in *Input) { in.onState = f }
}

// OnChange is called with the canonical query whenever the text changes.
func OnChange(f func(query.Query)) Option {
	return func(in *Input) { in.onChange = f }
}

// OnError is called with fetch and submission failures.
func OnError(f func(error)) Option {
	return func(in *Input) { in.onError = f }
}

// OnFocusChange is called when the input gains or loses focus.
func OnFocusChange(f func(bool)) Option {
	return func(in *Input) { in.onFocus = f }
}

// OnBlur is called when the input loses focus.
func OnBlur(f func()) Option {
	return func(in *Input) { in.onBlur = f }
}
