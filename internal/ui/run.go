package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// TerminalSize reports the size of stdout, falling back to 80x24.
func TerminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return 80, 24
}

// IsTerminal reports whether stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the interactive program. Startup keys are applied first.
// The session is closed when the program exits.
func Run(m *Model, startKeys []string, opts ...tea.ProgramOption) error {
	defer m.Session.Close()
	ApplyStartupKeys(m, startKeys)
	opts = append(opts, tea.WithWindowSize(m.Width, m.Height))
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
