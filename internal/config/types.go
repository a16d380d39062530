// Package config holds the querybar configuration file schema and the
// loader that merges a user file over the embedded defaults.
package config

import "time"

// Config is the merged configuration.
type Config struct {
	App        AppConfig        `yaml:"app" json:"app"`
	Typeahead  TypeaheadConfig  `yaml:"typeahead" json:"typeahead"`
	Completion CompletionConfig `yaml:"completion" json:"completion"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	UI         UIConfig         `yaml:"ui" json:"ui"`
}

// AppConfig scopes persisted state.
type AppConfig struct {
	// Name scopes recent searches so several apps can share one database.
	Name     string `yaml:"name" json:"name"`
	Language string `yaml:"language" json:"language"`
	// HistoryPath is the SQLite file; empty uses the data directory and
	// ":memory:" keeps history for the process only.
	HistoryPath string `yaml:"history_path" json:"history_path"`
	HistorySize int    `yaml:"history_size" json:"history_size"`
}

// TypeaheadConfig tunes the suggestion pipeline.
type TypeaheadConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// CompletionConfig tunes the completion providers.
type CompletionConfig struct {
	ValueTTL   time.Duration `yaml:"value_ttl" json:"value_ttl"`
	ValueLimit int           `yaml:"value_limit" json:"value_limit"`
	// Interval is the minimum spacing between provider calls; Burst calls
	// may run back to back.
	Interval time.Duration `yaml:"interval" json:"interval"`
	Burst    int           `yaml:"burst" json:"burst"`
}

// SearchConfig pages query results.
type SearchConfig struct {
	Limit int `yaml:"limit" json:"limit"`
}

// UIConfig selects the terminal theme and pointer support.
type UIConfig struct {
	Theme  string                 `yaml:"theme" json:"theme"`
	Mouse  bool                   `yaml:"mouse" json:"mouse"`
	Themes map[string]ThemeConfig `yaml:"themes" json:"themes"`
}

// ThemeConfig is a palette of lipgloss colors ("#rrggbb" or ANSI numbers).
type ThemeConfig struct {
	Prompt      string `yaml:"prompt" json:"prompt"`
	Input       string `yaml:"input" json:"input"`
	Suggestion  string `yaml:"suggestion" json:"suggestion"`
	Description string `yaml:"description" json:"description"`
	SelectedFG  string `yaml:"selected_fg" json:"selected_fg"`
	SelectedBG  string `yaml:"selected_bg" json:"selected_bg"`
	Border      string `yaml:"border" json:"border"`
	Status      string `yaml:"status" json:"status"`
	Error       string `yaml:"error" json:"error"`
	Footer      string `yaml:"footer" json:"footer"`
}
