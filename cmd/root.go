package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/querybar/internal/formatter"
	"github.com/oakwood-commons/querybar/internal/limiter"
	"github.com/oakwood-commons/querybar/internal/search"
	"github.com/oakwood-commons/querybar/internal/typeahead"
	"github.com/oakwood-commons/querybar/internal/ui"
	"github.com/oakwood-commons/querybar/pkg/logger"
	"github.com/oakwood-commons/querybar/pkg/query"
	"github.com/oakwood-commons/querybar/pkg/settings"
)

// rootFlags holds every flag of one command tree.
type rootFlags struct {
	configFile  string
	appName     string
	historyDB   string
	historySize int
	language    languageFlag
	theme       string
	debug       bool
	noColor     bool
	logFile     string

	queryText   string
	interactive bool
	snapshot    bool
	press       []string
	width       int
	height      int
	limit       int
	offset      int
	tail        int
	output      string

	closeLog func() error
}

var rootCmd = newRootCmd()

// Execute runs the querybar command tree.
func Execute() error {
	return rootCmd.Execute()
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file...]",
		Short: "Search documents with a suggesting query bar",
		Long: `querybar indexes JSON, YAML, TOML, and NDJSON documents and runs Kuery,
Lucene, or CEL queries over them. In interactive mode (-i) the query bar
suggests fields, values, operators, and recent searches as you type.

Documents are read from the files given, or from stdin when it is piped.
Recent searches and the preferred query language are kept in a SQLite
database under the data directory.`,
		Example: `  querybar logs.ndjson -q 'status:200'
  querybar logs.ndjson -i
  querybar logs.ndjson --snapshot --press 'agent<Down><CR>'
  cat logs.ndjson | querybar -l cel -q 'doc.status >= 400' -o json`,
		Version:            versionString(),
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(cmd *cobra.Command, _ []string) error { return setup(cmd, f) },
		PersistentPostRunE: func(*cobra.Command, []string) error { return teardown(f) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, f, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/querybar/config.yaml)")
	pf.StringVar(&f.appName, "app-name", "", "application name that scopes recent searches")
	pf.StringVar(&f.historyDB, "history-db", "", "SQLite file for recent searches (\":memory:\" disables persistence)")
	pf.IntVar(&f.historySize, "history-size", 0, "recent searches kept per language")
	pf.VarP(&f.language, "language", "l", "query language: kuery|lucene|cel (default: last used)")
	pf.BoolVar(&f.debug, "debug", false, "log debug events")
	pf.BoolVar(&f.noColor, "no-color", false, "disable color output")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file (interactive mode defaults to the data directory)")

	fl := cmd.Flags()
	fl.StringVarP(&f.queryText, "query", "q", "", "query to run, or the initial query in interactive mode")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "start the interactive query bar")
	fl.BoolVar(&f.snapshot, "snapshot", false, "render a single query bar frame and exit; honors --width/--height")
	fl.StringArrayVar(&f.press, "press", nil, "simulate keys on startup; use <Key> for special keys (e.g. <Down>, <CR>, <Esc>, <F2>)")
	fl.IntVar(&f.width, "width", 0, "query bar width in columns")
	fl.IntVar(&f.height, "height", 0, "query bar height in rows")
	fl.IntVar(&f.limit, "limit", 0, "maximum hits returned (default from config)")
	fl.IntVar(&f.offset, "offset", 0, "skip the first N hits")
	fl.IntVar(&f.tail, "tail", 0, "return the last N hits (mutually exclusive with --limit)")
	fl.StringVarP(&f.output, "output", "o", "yaml", "result format: yaml|json|table|count")
	fl.StringVar(&f.theme, "theme", "", "theme name (see 'querybar config themes')")

	cmd.AddCommand(newSuggestCmd(f), newHistoryCmd(f), newConfigCmd(f), newVersionCmd())
	return cmd
}

// setup installs the logger and run settings on the command context.
func setup(cmd *cobra.Command, f *rootFlags) error {
	level := int8(1)
	if f.debug {
		level = -1
	}
	interactive := f.interactive && !f.snapshot

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.Language = f.language.String()
	run.HistoryPath = f.historyDB
	run.NoColor = f.noColor || os.Getenv("NO_COLOR") != ""
	run.Interactive = interactive
	if f.appName != "" {
		run.AppName = f.appName
	}

	// The terminal belongs to the query bar, so interactive logs go to a file.
	run.LogPath = f.logFile
	if interactive && run.LogPath == "" {
		run.LogPath = filepath.Join(settings.DataDir(), settings.CliBinaryName+".log")
	}
	var sink io.Writer = os.Stderr
	if run.LogPath != "" {
		w, closeLog, err := logger.OpenLogFile(run.LogPath)
		if err != nil {
			return err
		}
		sink, f.closeLog = w, closeLog
	}
	lgr := logger.Setup(level, sink)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	cmd.SetContext(settings.IntoContext(ctx, run))
	return nil
}

func teardown(f *rootFlags) error {
	logger.Sync()
	if f.closeLog != nil {
		return f.closeLog()
	}
	return nil
}

func runRoot(cmd *cobra.Command, f *rootFlags, args []string) error {
	limits := limiter.Config{Limit: f.limit, Offset: f.offset, Tail: f.tail}
	if err := limits.Validate(); err != nil {
		return err
	}
	if err := validateOutput(f.output, outputYAML, outputJSON, outputCount, outputTable); err != nil {
		return err
	}

	ctx := cmd.Context()
	run := settings.FromContextOrDefault(ctx)
	var stdin io.Reader
	if len(args) == 0 {
		if !stdinIsPiped() {
			return errNoInput
		}
		stdin = cmd.InOrStdin()
	}
	a, err := newApp(ctx, f, args, stdin)
	if err != nil {
		return err
	}
	defer a.Close()

	lang, err := a.language(ctx, f.language.String())
	if err != nil {
		return err
	}
	if limits.Limit == 0 && limits.Tail == 0 {
		limits.Limit = a.cfg.Search.Limit
	}
	exec, err := a.executor(limits)
	if err != nil {
		return err
	}
	q := query.Query{Text: f.queryText, Language: lang}

	switch {
	case f.snapshot:
		w, h := f.width, f.height
		if w <= 0 || h <= 0 {
			tw, th := ui.TerminalSize()
			if w <= 0 {
				w = tw
			}
			if h <= 0 {
				h = th
			}
		}
		m := a.model(q, exec, run.NoColor, w, h)
		defer closeSession(m.Session)
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSnapshot(m, f.press))
		return nil
	case run.Interactive:
		return a.interactive(ctx, f, q, exec, run.NoColor)
	}
	table := formatter.TableOptions{
		Width:      f.width,
		RowNumbers: true,
		Offset:     limits.Offset,
		NoColor:    run.NoColor,
	}
	return a.runQuery(cmd.OutOrStdout(), q, exec, f.output, table)
}

// runQuery submits q through a query session so it is recorded as a
// recent search, then prints the result.
func (a *app) runQuery(w io.Writer, q query.Query, exec *search.Executor, format string, table formatter.TableOptions) error {
	session := typeahead.New(typeahead.Config{
		AppName:      a.cfg.App.Name,
		Query:        q,
		IndexTargets: a.targets,
	},
		typeahead.WithHistory(a.store, a.cfg.App.HistorySize),
		typeahead.WithSettings(a.store),
		typeahead.WithSink(exec),
		typeahead.WithLogger(logger.ForComponent(a.base, "typeahead")),
	)
	defer closeSession(session)

	session.Submit()
	res, ok := exec.Last()
	if !ok {
		return fmt.Errorf("query %q was not run", q.Text)
	}
	if res.Err != nil {
		return res.Err
	}
	a.log.V(1).Info("query done", "total", res.Total, "hits", len(res.Hits))
	return writeResult(w, res, format, table)
}

func (a *app) model(q query.Query, exec *search.Executor, noColor bool, width, height int) *ui.Model {
	return ui.NewModel(ui.Options{
		AppName:     a.cfg.App.Name,
		Query:       q,
		Targets:     a.targets,
		Languages:   query.Languages(),
		Completer:   a.registry,
		Source:      a.catalog,
		Store:       a.store,
		Settings:    a.store,
		HistorySize: a.cfg.App.HistorySize,
		Executor:    exec,
		Debounce:    a.cfg.Typeahead.Debounce,
		Theme:       ui.ThemeFromConfig(a.cfg.ActiveTheme()),
		NoColor:     noColor,
		Mouse:       a.cfg.UI.Mouse,
		Width:       width,
		Height:      height,
		Logger:      logger.ForComponent(a.base, "ui"),
	})
}

// interactive runs the query bar until the user quits. Data files are
// watched and reindexed while it runs.
func (a *app) interactive(ctx context.Context, f *rootFlags, q query.Query, exec *search.Executor, noColor bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := a.catalog.Watch(ctx); err != nil {
			a.log.Error(err, "watch failed")
		}
	}()

	w, h := ui.TerminalSize()
	if f.width > 0 {
		w = f.width
	}
	if f.height > 0 {
		h = f.height
	}
	opts, cleanup := programOptions()
	defer cleanup()
	m := a.model(q, exec, noColor, w, h)
	defer m.Session.Wait()
	return ui.Run(m, f.press, opts...)
}

// closeSession stops s and waits for its in-flight fetch.
func closeSession(s *typeahead.Input) {
	_ = s.Close()
	s.Wait()
}
