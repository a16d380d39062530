// Package history persists recent searches and small UI flags.
//
// # Thread Safety
//
// Every Store is safe for concurrent use. Appends from several inputs sharing
// one key are serialised by the store, and eviction only ever removes the
// oldest entries, so concurrent writers only affect display order.
package history

import (
	"context"
	"sort"
	"sync"
)

// Store is the persisted storage behind a recent-search Log.
type Store interface {
	// Load returns the entries stored under key, oldest first.
	Load(ctx context.Context, key string) ([]string, error)
	// Append adds text under key and evicts the oldest entries beyond capacity.
	Append(ctx context.Context, key, text string, capacity int) error
	// Clear removes every entry under key.
	Clear(ctx context.Context, key string) error
	// Keys lists the keys that hold entries.
	Keys(ctx context.Context) ([]string, error)
}

// Settings is a string key/value store for preferences such as the last
// selected query language or dismissed notifications.
type Settings interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string][]string
	settings map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string][]string),
		settings: make(map[string]string),
	}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries[key]...), nil
}

func (s *MemoryStore) Append(_ context.Context, key, text string, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.entries[key], text)
	if capacity > 0 && len(list) > capacity {
		list = append([]string(nil), list[len(list)-capacity:]...)
	}
	s.entries[key] = list
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k, v := range s.entries {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}
