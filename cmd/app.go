package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/config"
	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/internal/limiter"
	"github.com/oakwood-commons/querybar/internal/search"
	"github.com/oakwood-commons/querybar/internal/typeahead"
	"github.com/oakwood-commons/querybar/pkg/loader"
	"github.com/oakwood-commons/querybar/pkg/logger"
	"github.com/oakwood-commons/querybar/pkg/query"
	"github.com/oakwood-commons/querybar/pkg/settings"
)

// stdinTitle names the index pattern read from piped input.
const stdinTitle = "stdin"

var errNoInput = errors.New("no input: pass data files or pipe documents on stdin")

// app holds the services shared by every command for one run.
type app struct {
	cfg      config.Config
	base     *logr.Logger
	log      logr.Logger
	catalog  *index.Catalog
	targets  []index.Target
	registry *completion.Registry
	store    *history.SQLiteStore

	closers []func() error
}

// loadConfig resolves the config path and applies flag overrides.
func loadConfig(f *rootFlags) (config.Config, error) {
	path := f.configFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if f.appName != "" {
		cfg.App.Name = f.appName
	}
	if f.historyDB != "" {
		cfg.App.HistoryPath = f.historyDB
	}
	if f.historySize > 0 {
		cfg.App.HistorySize = f.historySize
	}
	if f.theme != "" {
		cfg.UI.Theme = f.theme
	}
	return cfg, cfg.Validate()
}

// openStore opens the history database named by the config.
func openStore(cfg config.Config) (*history.SQLiteStore, error) {
	path := cfg.App.HistoryPath
	if path == "" {
		path = settings.DefaultHistoryPath()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	return history.OpenSQLite(path)
}

// newApp loads configuration, opens history, and indexes the inputs.
// Without files, documents are read from stdin when it is not a terminal.
func newApp(ctx context.Context, f *rootFlags, files []string, stdin io.Reader) (*app, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	base := logger.FromContext(ctx)
	log := logger.ForComponent(base, "app")
	a := &app{
		cfg:  cfg,
		base: base,
		log:  log,
	}

	a.store, err = openStore(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)

	a.catalog = index.NewCatalog(
		index.WithLogger(logger.ForComponent(base, "index")),
		index.WithReloadHook(func(title string) { log.V(1).Info("index reloaded", "title", title) }),
	)
	switch {
	case len(files) > 0:
		if err := a.catalog.AddFiles(files...); err != nil {
			_ = a.Close()
			return nil, err
		}
		for _, file := range files {
			a.targets = append(a.targets, index.Named(index.TitleForPath(file)))
		}
	case stdin != nil:
		docs, err := loader.ReadDocuments(stdin)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		a.catalog.Add(index.NewPattern(stdinTitle, docs))
		a.targets = []index.Target{index.Named(stdinTitle)}
	}

	kuery := completion.NewKueryProvider(
		completion.WithValueTTL(cfg.Completion.ValueTTL),
		completion.WithValueLimit(cfg.Completion.ValueLimit),
	)
	a.closers = append(a.closers, func() error { kuery.Close(); return nil })
	celProvider, err := completion.NewCELProvider()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.registry = completion.NewRegistry(
		completion.Throttle(kuery, cfg.Completion.Interval, cfg.Completion.Burst),
		completion.Throttle(celProvider, cfg.Completion.Interval, cfg.Completion.Burst),
	)
	log.V(1).Info("app ready", "targets", len(a.targets), "history", cfg.App.HistoryPath)
	return a, nil
}

// Close releases everything newApp opened, newest first.
func (a *app) Close() error {
	var result *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.closers = nil
	return result.ErrorOrNil()
}

// language picks the query language: the flag, then the persisted
// preference, then the configured default.
func (a *app) language(ctx context.Context, flag string) (query.Language, error) {
	if strings.TrimSpace(flag) != "" {
		return query.ParseLanguage(flag)
	}
	if v, ok, err := a.store.Get(ctx, typeahead.LanguageKey); err == nil && ok {
		if lang, err := query.ParseLanguage(v); err == nil {
			return lang, nil
		}
	}
	return query.ParseLanguage(a.cfg.App.Language)
}

// executor builds the query sink for the app's targets.
func (a *app) executor(limits limiter.Config) (*search.Executor, error) {
	return search.NewExecutor(a.catalog, a.targets,
		search.WithLimits(limits),
		search.WithLogger(logger.ForComponent(a.base, "search")),
	)
}

// recent returns the recent-search log for lang.
func (a *app) recent(lang query.Language) *history.Log {
	return history.NewLog(a.store, history.Key(a.cfg.App.Name, string(lang)), a.cfg.App.HistorySize)
}
