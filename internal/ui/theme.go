package ui

import (
	"image/color"
	"regexp"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/querybar/internal/config"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// Theme defines the colors used by the query bar.
type Theme struct {
	Prompt      color.Color // Language prompt before the input
	Input       color.Color // Input text
	Suggestion  color.Color // Suggestion text
	Description color.Color // Suggestion kind and description
	SelectedFG  color.Color // Selected suggestion foreground
	SelectedBG  color.Color // Selected suggestion background
	Border      color.Color // Separator lines
	Status      color.Color // Result summary
	Error       color.Color // Errors and notices
	Footer      color.Color // Key help
}

func colorOrNil(s string) color.Color {
	if s == "" {
		return nil
	}
	return lipgloss.Color(s)
}

// ThemeFromConfig converts a configured palette. Empty entries stay unset
// and render with the terminal default.
func ThemeFromConfig(tc config.ThemeConfig) Theme {
	return Theme{
		Prompt:      colorOrNil(tc.Prompt),
		Input:       colorOrNil(tc.Input),
		Suggestion:  colorOrNil(tc.Suggestion),
		Description: colorOrNil(tc.Description),
		SelectedFG:  colorOrNil(tc.SelectedFG),
		SelectedBG:  colorOrNil(tc.SelectedBG),
		Border:      colorOrNil(tc.Border),
		Status:      colorOrNil(tc.Status),
		Error:       colorOrNil(tc.Error),
		Footer:      colorOrNil(tc.Footer),
	}
}

// DefaultTheme returns the palette selected by the embedded configuration.
func DefaultTheme() Theme {
	cfg, err := config.Load("")
	if err != nil {
		return Theme{}
	}
	return ThemeFromConfig(cfg.ActiveTheme())
}

type styles struct {
	prompt      lipgloss.Style
	suggestion  lipgloss.Style
	description lipgloss.Style
	selected    lipgloss.Style
	border      lipgloss.Style
	status      lipgloss.Style
	err         lipgloss.Style
	footer      lipgloss.Style
}

func fg(c color.Color) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c != nil {
		s = s.Foreground(c)
	}
	return s
}

func newStyles(t Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			prompt: plain, suggestion: plain, description: plain, border: plain,
			status: plain, err: plain, footer: plain,
			selected: plain.Reverse(true),
		}
	}
	selected := fg(t.SelectedFG).Bold(true)
	if t.SelectedBG != nil {
		selected = selected.Background(t.SelectedBG)
	}
	return styles{
		prompt:      fg(t.Prompt).Bold(true),
		suggestion:  fg(t.Suggestion),
		description: fg(t.Description).Italic(true),
		selected:    selected,
		border:      fg(t.Border),
		status:      fg(t.Status),
		err:         fg(t.Error).Bold(true),
		footer:      fg(t.Footer),
	}
}

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}
