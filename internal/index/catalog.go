package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"

	"github.com/oakwood-commons/querybar/pkg/loader"
)

// ErrNoIndex is returned when a title is not registered.
var ErrNoIndex = errors.New("index pattern not found")

// Catalog holds the index patterns known to the process. Patterns are
// registered directly or backed by data files that Watch keeps fresh.
type Catalog struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
	files    map[string]string // absolute path -> title
	log      logr.Logger
	onReload func(title string)
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(l logr.Logger) CatalogOption {
	return func(c *Catalog) { c.log = l }
}

// WithReloadHook registers f to run after a watched file is reloaded.
func WithReloadHook(f func(title string)) CatalogOption {
	return func(c *Catalog) { c.onReload = f }
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		patterns: map[string]*Pattern{},
		files:    map[string]string{},
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TitleForPath derives a pattern title from a file name ("logs.ndjson" -> "logs").
func TitleForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Add registers p, replacing any pattern with the same title.
func (c *Catalog) Add(p *Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns[p.Title] = p
}

// AddFiles loads each path as a pattern titled after the file. Every file
// is attempted; the returned error aggregates all failures.
func (c *Catalog) AddFiles(paths ...string) error {
	var result *multierror.Error
	for _, path := range paths {
		if err := c.addFile(path); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (c *Catalog) addFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	docs, err := loader.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("load index %s: %w", path, err)
	}
	title := TitleForPath(abs)
	c.mu.Lock()
	c.patterns[title] = NewPattern(title, docs)
	c.files[abs] = title
	c.mu.Unlock()
	c.log.V(1).Info("index loaded", "title", title, "documents", len(docs))
	return nil
}

// Get returns the pattern registered under title.
func (c *Catalog) Get(_ context.Context, title string) (*Pattern, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.patterns[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoIndex, title)
	}
	return p, nil
}

// Titles lists the registered titles in order.
func (c *Catalog) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.patterns))
	for t := range c.patterns {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Watch reloads file-backed patterns when their files change, until ctx
// is done. A file that fails to parse keeps its previous pattern.
func (c *Catalog) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	c.mu.RLock()
	dirs := map[string]bool{}
	for path := range c.files {
		dirs[filepath.Dir(path)] = true
	}
	c.mu.RUnlock()
	for dir := range dirs {
		// Editors often replace files, so watch the directory.
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c.mu.RLock()
			title, tracked := c.files[filepath.Clean(ev.Name)]
			c.mu.RUnlock()
			if !tracked {
				continue
			}
			if err := c.addFile(ev.Name); err != nil {
				c.log.Error(err, "index reload failed", "title", title)
				continue
			}
			if c.onReload != nil {
				c.onReload(title)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Error(err, "index watch error")
		}
	}
}
