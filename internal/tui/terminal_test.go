package tui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestANSIEscapeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		constant string
		want     string
	}{
		{"ClearScreen", ClearScreen, "\033[2J"},
		{"ClearScrollback", ClearScrollback, "\033[3J"},
		{"CursorHome", CursorHome, "\033[H"},
		{"CursorHide", CursorHide, "\033[?25l"},
		{"CursorShow", CursorShow, "\033[?25h"},
		{"Reset", Reset, "\033[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.constant)
		})
	}
}

func TestTerminalCursor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	term := NewTerminal(os.Stdin, &buf)

	term.HideCursor()
	term.ShowCursor()
	assert.Equal(t, CursorHide+CursorShow, buf.String())
}

func TestTerminalExitRawWithoutEnter(t *testing.T) {
	t.Parallel()

	term := NewTerminal(os.Stdin, &bytes.Buffer{})
	assert.NoError(t, term.ExitRaw())
}

func TestTerminalWidthFallback(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "notatty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	term := NewTerminal(f, &bytes.Buffer{})
	assert.False(t, term.IsTerminal())
	assert.Equal(t, DefaultWidth, term.Width())
	assert.Error(t, term.EnterRaw())
}

func TestIsTerminalWriter(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminalWriter(&bytes.Buffer{}))
}
