package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/querybar/pkg/query"
)

//go:embed default_config.yaml
var embeddedDefault []byte

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefault...)
}

// Loader merges configuration sources. Tests substitute Default.
type Loader struct {
	Default func() ([]byte, error)
}

// DefaultLoader reads the embedded defaults.
var DefaultLoader = Loader{Default: func() ([]byte, error) {
	if len(embeddedDefault) == 0 {
		return nil, errors.New("embedded default config is empty")
	}
	return DefaultYAML(), nil
}}

// Load merges the user file at path over the defaults. An empty path
// returns the defaults; a missing file is an error.
func Load(path string) (Config, error) {
	return DefaultLoader.Load(path)
}

// Load merges the user file at path over the defaults and validates the
// result.
func (l Loader) Load(path string) (Config, error) {
	var cfg Config
	data, err := l.Default()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	if path != "" {
		user, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(user, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode unmarshals data over cfg so only keys present in data replace
// existing values; theme maps merge per theme name.
func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(c.App.Name) == "" {
		result = multierror.Append(result, errors.New("app.name must not be empty"))
	}
	if _, err := query.ParseLanguage(c.App.Language); err != nil {
		result = multierror.Append(result, fmt.Errorf("app.language: %w", err))
	}
	if c.App.HistorySize <= 0 {
		result = multierror.Append(result, fmt.Errorf("app.history_size must be positive, got %d", c.App.HistorySize))
	}
	if c.Typeahead.Debounce < 0 {
		result = multierror.Append(result, fmt.Errorf("typeahead.debounce must not be negative, got %s", c.Typeahead.Debounce))
	}
	if c.Completion.ValueTTL < 0 {
		result = multierror.Append(result, fmt.Errorf("completion.value_ttl must not be negative, got %s", c.Completion.ValueTTL))
	}
	if c.Completion.ValueLimit <= 0 {
		result = multierror.Append(result, fmt.Errorf("completion.value_limit must be positive, got %d", c.Completion.ValueLimit))
	}
	if c.Completion.Burst <= 0 {
		result = multierror.Append(result, fmt.Errorf("completion.burst must be positive, got %d", c.Completion.Burst))
	}
	if c.Search.Limit < 0 {
		result = multierror.Append(result, fmt.Errorf("search.limit must not be negative, got %d", c.Search.Limit))
	}
	if _, ok := c.UI.Themes[c.UI.Theme]; !ok {
		result = multierror.Append(result, fmt.Errorf("ui.theme %q is not defined (available: %s)", c.UI.Theme, strings.Join(c.ThemeNames(), ", ")))
	}
	return result.ErrorOrNil()
}

// ThemeNames lists the defined themes in sorted order.
func (c Config) ThemeNames() []string {
	names := make([]string, 0, len(c.UI.Themes))
	for name := range c.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveTheme returns the selected palette.
func (c Config) ActiveTheme() ThemeConfig {
	return c.UI.Themes[c.UI.Theme]
}

// DefaultPath is $QUERYBAR_CONFIG, else $XDG_CONFIG_HOME/querybar/config.yaml,
// else ~/.config/querybar/config.yaml. It returns "" when no file exists.
func DefaultPath() string {
	if p := os.Getenv("QUERYBAR_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	p := filepath.Join(dir, "querybar", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
