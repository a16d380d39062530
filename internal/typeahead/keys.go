package typeahead

// KeyCode identifies the keys the input reacts to.
type KeyCode int

const (
	// KeyRune is a printable key; Key.Text holds the character.
	KeyRune KeyCode = iota
	KeyBackspace
	KeyDown
	KeyUp
	KeyEnter
	KeyEscape
	KeyTab
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
)

// Key is a key press.
type Key struct {
	Code KeyCode
	Text string
	// Meta is set when the platform word-delete modifier is held.
	Meta bool
}

// Rune returns the key press for a printable character.
func Rune(r rune) Key {
	return Key{Code: KeyRune, Text: string(r)}
}

// IsCaretMove reports whether k only moves the caret.
func (k Key) IsCaretMove() bool {
	switch k.Code {
	case KeyLeft, KeyRight, KeyHome, KeyEnd:
		return true
	}
	return false
}
