package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocs() []map[string]any {
	return []map[string]any{
		{
			"agent":  "firefox",
			"status": float64(200),
			"geo":    map[string]any{"country": "US"},
			"tags":   []any{"a", "b"},
			"user":   []any{map[string]any{"name": "ann"}, map[string]any{"name": "bob"}},
		},
		{"agent": "chrome", "status": float64(404), "ok": true},
		{"agent": "firefox", "status": "n/a"},
	}
}

func TestInferFields(t *testing.T) {
	p := NewPattern("logs", sampleDocs())

	names := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"agent", "geo.country", "ok", "status", "tags", "user.name"}, names)

	status, ok := p.Field("status")
	require.True(t, ok)
	assert.Equal(t, TypeString, status.Type, "mixed types fall back to string")

	userName, ok := p.Field("user.name")
	require.True(t, ok)
	assert.True(t, userName.Nested)
	assert.Equal(t, "user", userName.NestedPath)

	okField, _ := p.Field("ok")
	assert.Equal(t, TypeBoolean, okField.Type)
	assert.True(t, okField.Aggregatable)

	_, ok = p.Field("missing")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	doc := sampleDocs()[0]
	assert.Equal(t, []any{"US"}, Lookup(doc, "geo.country"))
	assert.Equal(t, []any{"ann", "bob"}, Lookup(doc, "user.name"))
	assert.Equal(t, []any{"a", "b"}, Lookup(doc, "tags"))
	assert.Nil(t, Lookup(doc, "nope"))

	dotted := map[string]any{"host.name": "web-1"}
	assert.Equal(t, []any{"web-1"}, Lookup(dotted, "host.name"))
}

func TestTopValues(t *testing.T) {
	p := NewPattern("logs", sampleDocs())
	assert.Equal(t, []string{"firefox", "chrome"}, p.TopValues("agent", 0))
	assert.Equal(t, []string{"firefox"}, p.TopValues("agent", 1))
	assert.Equal(t, []string{"200", "404", "n/a"}, p.TopValues("status", 10))
}

func TestCatalogAndResolve(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "logs.ndjson")
	require.NoError(t, os.WriteFile(good, []byte("{\"a\":1}\n{\"a\":2}\n"), 0o600))
	bad := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a": `), 0o600))

	c := NewCatalog()
	err := c.AddFiles(good, bad, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Equal(t, []string{"logs"}, c.Titles())

	ctx := context.Background()
	_, err = c.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNoIndex)

	inline := NewPattern("inline", nil)
	got, err := Resolve(ctx, c, []Target{Named("logs"), Resolved(inline), Named("nope")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "inline", got[0].Title)
	assert.Equal(t, "logs", got[1].Title)

	got, err = Resolve(ctx, nil, []Target{Named("logs")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.ndjson")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n{\"a\":2}\n"), 0o600))

	reloaded := make(chan string, 4)
	c := NewCatalog(WithReloadHook(func(title string) { reloaded <- title }))
	require.NoError(t, c.AddFiles(path))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n{\"a\":2}\n{\"b\":3}\n"), 0o600))

	select {
	case title := <-reloaded:
		assert.Equal(t, "events", title)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	assert.Eventually(t, func() bool {
		p, err := c.Get(ctx, "events")
		return err == nil && len(p.Documents) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
