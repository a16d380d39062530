package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// namedTokens maps the inside of a <...> token to a key press.
var namedTokens = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"space":     {Code: ' ', Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"pgdn":      {Code: tea.KeyPgDown},
	"pagedown":  {Code: tea.KeyPgDown},
	"c-c":       {Code: 'c', Mod: tea.ModCtrl},
	"f1":        {Code: tea.KeyF1},
	"f2":        {Code: tea.KeyF2},
	"f3":        {Code: tea.KeyF3},
}

// ParseKeys turns startup key tokens into key presses. Tokens may mix
// <name> keys with literal text ("status<Down><CR>"); a leading backslash
// makes the whole token literal.
func ParseKeys(tokens []string) []tea.KeyPressMsg {
	var out []tea.KeyPressMsg
	literal := func(s string) {
		for _, r := range s {
			out = append(out, tea.KeyPressMsg{Code: r, Text: string(r)})
		}
	}
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			literal(token[1:])
			continue
		}
		rest := token
		for rest != "" {
			open := strings.IndexByte(rest, '<')
			if open < 0 {
				literal(rest)
				break
			}
			literal(rest[:open])
			end := strings.IndexByte(rest[open:], '>')
			if end < 0 {
				literal(rest[open:])
				break
			}
			name := rest[open : open+end+1]
			if msg, ok := namedTokens[strings.ToLower(name[1:len(name)-1])]; ok {
				out = append(out, msg)
			} else {
				literal(name)
			}
			rest = rest[open+end+1:]
		}
	}
	return out
}

// ApplyStartupKeys feeds key presses to m before the program starts. Each
// pending suggestion refresh is flushed after every key so later keys see
// the suggestions a user would have seen.
func ApplyStartupKeys(m *Model, tokens []string) {
	if m == nil {
		return
	}
	for _, msg := range ParseKeys(tokens) {
		m.Update(msg)
		m.Session.Flush()
		m.sync()
	}
}
