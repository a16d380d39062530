// Package typeahead implements the query input session: the text and caret
// model, debounced and cancellable suggestion fetching, keyboard navigation
// of the suggestion list, suggestion application and query submission.
//
// # Concurrency
//
// An Input serialises every event behind one mutex, so hosts may call it
// from any goroutine. The only asynchronous work is the debounce timer and
// the suggestion fetch it starts. A fetch result is applied only if its
// request is still the newest one and the input has not been closed.
// Callbacks run outside the lock, after the state change they report.
package typeahead
