package history

import (
	"context"
	"fmt"
	"strings"
)

// DefaultCapacity is the number of recent searches kept per log.
const DefaultCapacity = 10

// Key returns the storage key for an application's recent searches in one
// query language.
func Key(appName, language string) string {
	return fmt.Sprintf("typeahead:%s-%s", appName, language)
}

// Log is an append-only, capacity-bounded list of submitted queries.
// Appending a query that is already present still appends it.
type Log struct {
	store    Store
	key      string
	capacity int
}

// NewLog returns a log over store. A non-positive capacity uses
// DefaultCapacity.
func NewLog(store Store, key string, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{store: store, key: key, capacity: capacity}
}

// Key returns the storage key.
func (l *Log) Key() string {
	return l.key
}

// Capacity returns the maximum number of entries kept.
func (l *Log) Capacity() int {
	return l.capacity
}

// Add appends text. Empty text is ignored.
func (l *Log) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return l.store.Append(ctx, l.key, text, l.capacity)
}

// Get returns the entries oldest first.
func (l *Log) Get(ctx context.Context) ([]string, error) {
	return l.store.Load(ctx, l.key)
}

// Clear removes every entry.
func (l *Log) Clear(ctx context.Context) error {
	return l.store.Clear(ctx, l.key)
}

// Matches returns the user-form text of every entry containing userText,
// most recent first. toUser converts stored canonical text for display and
// matching; nil keeps entries as stored.
func (l *Log) Matches(ctx context.Context, userText string, toUser func(string) string) ([]string, error) {
	entries, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for i := len(entries) - 1; i >= 0; i-- {
		text := entries[i]
		if toUser != nil {
			text = toUser(text)
		}
		if strings.Contains(text, userText) {
			out = append(out, text)
		}
	}
	return out, nil
}
