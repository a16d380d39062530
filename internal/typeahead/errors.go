package typeahead

import (
	"errors"

	"github.com/oakwood-commons/querybar/internal/gate"
)

// ErrAborted is returned by Fetch when its request was superseded or the
// input was closed. It is never reported through OnError.
var ErrAborted = gate.ErrAborted

// ErrClosed is returned by operations on a closed input.
var ErrClosed = errors.New("input closed")

// FetchError wraps a suggestion fetch failure other than cancellation.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch suggestions: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
