package picker

import (
	"unicode"
	"unicode/utf8"
)

// KeyType classifies a key press for the picker loop.
type KeyType int

const (
	KeyOther     KeyType = iota // Anything the loop ignores
	KeyEnter                    // Commit the auto-selection
	KeyEscape                   // Cancel
	KeyBackspace                // Remove the last query rune
	KeyRune                     // Printable character in Rune
)

// Key is a single decoded key press.
type Key struct {
	Type KeyType
	Rune rune
}

// RuneKey returns a printable key for r.
func RuneKey(r rune) Key {
	return Key{Type: KeyRune, Rune: r}
}

func (k Key) String() string {
	switch k.Type {
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "esc"
	case KeyBackspace:
		return "backspace"
	case KeyRune:
		return string(k.Rune)
	default:
		return "other"
	}
}

// classifyRune maps a decoded rune to a key. Control characters other than
// the ones the picker reacts to are KeyOther.
func classifyRune(r rune) Key {
	switch r {
	case '\r', '\n':
		return Key{Type: KeyEnter}
	case 0x1b, 0x03:
		return Key{Type: KeyEscape}
	case 0x7f, 0x08:
		return Key{Type: KeyBackspace}
	}
	if unicode.IsPrint(r) {
		return RuneKey(r)
	}
	return Key{Type: KeyOther}
}

// DecodeKey decodes the first key in buf and reports how many bytes it
// used. n is 0 when buf holds only the start of a key and more input is
// needed.
func DecodeKey(buf []byte) (k Key, n int) {
	if len(buf) == 0 {
		return Key{}, 0
	}
	if buf[0] == 0x1b {
		return decodeEscape(buf)
	}
	if !utf8.FullRune(buf) {
		return Key{}, 0
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return Key{Type: KeyOther}, 1
	}
	return classifyRune(r), size
}

// decodeEscape handles input starting with ESC. A lone ESC is Escape;
// CSI and SS3 sequences (arrows, function keys) and Alt-chords are KeyOther.
// An unterminated CSI or SS3 sequence needs more input.
func decodeEscape(buf []byte) (Key, int) {
	if len(buf) == 1 {
		return Key{Type: KeyEscape}, 1
	}
	switch buf[1] {
	case '[':
		for i := 2; i < len(buf); i++ {
			if buf[i] >= 0x40 && buf[i] <= 0x7e {
				return Key{Type: KeyOther}, i + 1
			}
		}
		return Key{}, 0
	case 'O':
		if len(buf) >= 3 {
			return Key{Type: KeyOther}, 3
		}
		return Key{}, 0
	case 0x1b:
		return Key{Type: KeyEscape}, 1
	}
	_, size := utf8.DecodeRune(buf[1:])
	return Key{Type: KeyOther}, 1 + size
}
