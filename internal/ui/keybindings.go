package ui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/querybar/internal/typeahead"
)

// Action is a host command bound to a key. Keys without an action are
// passed to the query input.
type Action string

const (
	ActionNone     Action = ""
	ActionQuit     Action = "quit"
	ActionHelp     Action = "help"
	ActionLanguage Action = "language"
	ActionLoadMore Action = "load_more"
	ActionDismiss  Action = "dismiss_notice"
)

// DefaultKeyBindings maps key strings, as reported by tea.KeyPressMsg, to
// actions.
var DefaultKeyBindings = map[string]Action{
	"ctrl+c": ActionQuit,
	"ctrl+d": ActionQuit,
	"f1":     ActionHelp,
	"f2":     ActionLanguage,
	"pgdown": ActionLoadMore,
	"f3":     ActionDismiss,
}

// ActionForKey returns the action bound to key.
func ActionForKey(bindings map[string]Action, key string) Action {
	if bindings == nil {
		bindings = DefaultKeyBindings
	}
	return bindings[key]
}

var namedKeys = map[rune]typeahead.KeyCode{
	tea.KeyDown:      typeahead.KeyDown,
	tea.KeyUp:        typeahead.KeyUp,
	tea.KeyEnter:     typeahead.KeyEnter,
	tea.KeyEscape:    typeahead.KeyEscape,
	tea.KeyTab:       typeahead.KeyTab,
	tea.KeyBackspace: typeahead.KeyBackspace,
	tea.KeyLeft:      typeahead.KeyLeft,
	tea.KeyRight:     typeahead.KeyRight,
	tea.KeyHome:      typeahead.KeyHome,
	tea.KeyEnd:       typeahead.KeyEnd,
}

// inputKey converts a key press for the query input.
func inputKey(msg tea.KeyPressMsg) (typeahead.Key, bool) {
	meta := msg.Mod&(tea.ModAlt|tea.ModCtrl) != 0
	if code, ok := namedKeys[msg.Code]; ok {
		return typeahead.Key{Code: code, Meta: meta}, true
	}
	if msg.Text != "" && msg.Mod&tea.ModCtrl == 0 {
		return typeahead.Key{Code: typeahead.KeyRune, Text: msg.Text}, true
	}
	return typeahead.Key{}, false
}
