package tui

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// Key represents a keyboard input.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
	KeyCtrlC
	KeyCtrlD
	KeyRune // Regular character
)

// KeyEvent represents a key press event.
type KeyEvent struct {
	Key  Key
	Rune rune // Only valid when Key == KeyRune
}

// KeyReader reads keyboard input from a raw terminal.
type KeyReader struct {
	reader *bufio.Reader
}

// NewKeyReader creates a KeyReader from the given io.Reader.
// The reader should be a raw terminal input (e.g., os.Stdin after term.MakeRaw).
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{
		reader: bufio.NewReaderSize(r, 64),
	}
}

// ReadKey reads a single key event from the input.
// This method blocks until a key is pressed.
func (k *KeyReader) ReadKey() (KeyEvent, error) {
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}

	switch b {
	case 0x03:
		return KeyEvent{Key: KeyCtrlC}, nil
	case 0x04:
		return KeyEvent{Key: KeyCtrlD}, nil
	case '\r', '\n':
		return KeyEvent{Key: KeyEnter}, nil
	case 0x1B:
		return k.readEscapeSequence(), nil
	}

	if b >= 0x20 && b < 0x7F {
		return KeyEvent{Key: KeyRune, Rune: rune(b)}, nil
	}
	if b >= 0xC0 {
		return k.readUTF8(b)
	}
	return KeyEvent{Key: KeyUnknown}, nil
}

// readEscapeSequence distinguishes a lone escape from arrow-key sequences.
// Only sequences already buffered are parsed; terminals send them in one
// write.
func (k *KeyReader) readEscapeSequence() KeyEvent {
	if k.reader.Buffered() == 0 {
		return KeyEvent{Key: KeyEscape}
	}

	b, _ := k.reader.ReadByte()
	if b != '[' && b != 'O' {
		_ = k.reader.UnreadByte()
		return KeyEvent{Key: KeyEscape}
	}
	if k.reader.Buffered() == 0 {
		return KeyEvent{Key: KeyUnknown}
	}

	b, _ = k.reader.ReadByte()
	switch b {
	case 'A':
		return KeyEvent{Key: KeyUp}
	case 'B':
		return KeyEvent{Key: KeyDown}
	}

	// Consume the rest of an unknown sequence.
	for (b < 'A' || b > 'Z') && b != '~' && k.reader.Buffered() > 0 {
		b, _ = k.reader.ReadByte()
	}
	return KeyEvent{Key: KeyUnknown}
}

func (k *KeyReader) readUTF8(first byte) (KeyEvent, error) {
	var buf [4]byte
	buf[0] = first

	var n int
	switch {
	case first&0xE0 == 0xC0:
		n = 2
	case first&0xF0 == 0xE0:
		n = 3
	case first&0xF8 == 0xF0:
		n = 4
	default:
		return KeyEvent{Key: KeyUnknown}, nil
	}

	for i := 1; i < n; i++ {
		b, err := k.reader.ReadByte()
		if err != nil {
			return KeyEvent{Key: KeyUnknown}, err
		}
		buf[i] = b
	}

	r, _ := utf8.DecodeRune(buf[:n])
	if r == utf8.RuneError {
		return KeyEvent{Key: KeyUnknown}, nil
	}
	return KeyEvent{Key: KeyRune, Rune: r}, nil
}

// Shortcut is a watch-mode keyboard command.
type Shortcut int

const (
	ShortcutNone     Shortcut = iota
	ShortcutHint              // 'h' - toggle hint
	ShortcutRun               // 'r' - re-run (manual mode)
	ShortcutNext              // 'n' - mark done and advance
	ShortcutList              // 'l' - exercise list
	ShortcutQuit              // 'q', ctrl+c, ctrl+d
	ShortcutContinue          // enter
	ShortcutUp                // up arrow or 'k' in the list
	ShortcutDown              // down arrow or 'j' in the list
	ShortcutBack              // esc
)

// String returns the shortcut name.
func (s Shortcut) String() string {
	switch s {
	case ShortcutHint:
		return "hint"
	case ShortcutRun:
		return "run"
	case ShortcutNext:
		return "next"
	case ShortcutList:
		return "list"
	case ShortcutQuit:
		return "quit"
	case ShortcutContinue:
		return "continue"
	case ShortcutUp:
		return "up"
	case ShortcutDown:
		return "down"
	case ShortcutBack:
		return "back"
	default:
		return "none"
	}
}

// ParseShortcut converts a KeyEvent to a Shortcut.
func ParseShortcut(ev KeyEvent) Shortcut {
	switch ev.Key {
	case KeyEscape:
		return ShortcutBack
	case KeyCtrlC, KeyCtrlD:
		return ShortcutQuit
	case KeyEnter:
		return ShortcutContinue
	case KeyUp:
		return ShortcutUp
	case KeyDown:
		return ShortcutDown
	case KeyRune:
		switch ev.Rune {
		case 'h', 'H':
			return ShortcutHint
		case 'r', 'R':
			return ShortcutRun
		case 'n', 'N':
			return ShortcutNext
		case 'l', 'L':
			return ShortcutList
		case 'q', 'Q':
			return ShortcutQuit
		case 'k', 'K':
			return ShortcutUp
		case 'j', 'J':
			return ShortcutDown
		}
	}
	return ShortcutNone
}
