// Package settings provides build metadata, per-run configuration, and
// context helpers shared by the querybar CLI and its library packages.
package settings

import (
	"os"
	"path/filepath"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "querybar"

// DefaultAppName scopes recent-search history when no --app-name is given.
const DefaultAppName = "discover"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	AppName     string
	Language    string
	HistoryPath string
	LogPath     string
	IsQuiet     bool
	NoColor     bool
	Interactive bool
}

// NewCliParams returns the defaults used when the binary is started from a shell.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		AppName:     DefaultAppName,
		Language:    "kuery",
		HistoryPath: "",
		IsQuiet:     false,
		NoColor:     false,
		Interactive: false,
	}
}

// DataDir returns the directory used for persisted state.
// Resolution order: $QUERYBAR_DATA_DIR > $XDG_DATA_HOME/querybar > ~/.local/share/querybar
func DataDir() string {
	if dir := os.Getenv("QUERYBAR_DATA_DIR"); dir != "" {
		return dir
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, CliBinaryName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), CliBinaryName)
	}
	return filepath.Join(home, ".local", "share", CliBinaryName)
}

// DefaultHistoryPath is the SQLite file holding recent searches and UI flags.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}
