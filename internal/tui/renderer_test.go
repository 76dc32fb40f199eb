package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalRenderer_RawTranslatesNewlines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, RendererOptions{Raw: true})

	require.NoError(t, r.WriteOutput([]byte("a\nb\r\nc\n")))
	assert.Equal(t, "a\r\nb\r\nc\r\n", buf.String())
}

func TestTerminalRenderer_CookedKeepsNewlines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, RendererOptions{})

	require.NoError(t, r.WriteOutput([]byte("a\nb\n")))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestTerminalRenderer_Clear(t *testing.T) {
	t.Parallel()

	var plain, styled bytes.Buffer
	require.NoError(t, NewTerminalRenderer(&plain, RendererOptions{}).Clear())
	require.NoError(t, NewTerminalRenderer(&styled, RendererOptions{Styled: true}).Clear())

	assert.Empty(t, plain.String())
	assert.Equal(t, ClearScreen+ClearScrollback+CursorHome, styled.String())
}

func TestTerminalRenderer_ProgressBar(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, RendererOptions{Raw: true})

	require.NoError(t, r.WriteProgressBar(1, 1, 20))
	assert.Equal(t, "Progress: 1/1 exercises\r\n", buf.String())
}

func TestTerminalRenderer_ShowHint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, RendererOptions{})

	require.NoError(t, r.ShowHint("Try adding a semicolon."))
	assert.Equal(t, "Hint\nTry adding a semicolon.\n\n", buf.String())
}

func TestTerminalRenderer_Prompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind PromptKind
		want string
	}{
		{PromptWatch, "[n]ext / [h]int / [l]ist / [q]uit ? "},
		{PromptManual, "[n]ext / [h]int / [l]ist / [r]un / [q]uit ? "},
		{PromptContinue, "Press enter to continue "},
		{PromptChecking, "Checking the exercise..."},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, NewTerminalRenderer(&buf, RendererOptions{}).Prompt(tt.kind))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPromptText_NextIsStyled(t *testing.T) {
	t.Parallel()

	styled := PromptText(PromptNext, true)
	assert.Contains(t, styled, "\033[32m")
	assert.Equal(t, PromptText(PromptNext, false), StripAnsi(styled))
	assert.True(t, strings.HasPrefix(PromptText(PromptNext, false), "Exercise done"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestTerminalRenderer_WriteErrorsSurface(t *testing.T) {
	t.Parallel()

	r := NewTerminalRenderer(failingWriter{}, RendererOptions{Styled: true})
	assert.Error(t, r.Clear())
	assert.Error(t, r.WriteOutput([]byte("x")))
	assert.Error(t, r.WriteProgressBar(1, 2, 80))
	assert.Error(t, r.Prompt(PromptWatch))
	assert.Error(t, r.ShowHint("h"))
	assert.Error(t, r.WriteList(nil, -1, 80))
}

func TestRenderList(t *testing.T) {
	t.Parallel()

	rows := []ListRow{
		{Name: "intro1", Path: "exercises/00_intro/intro1.rs", Done: true},
		{Name: "variables1", Path: "exercises/01_variables/variables1.rs", Current: true},
	}

	got := RenderList(rows, 1, 80, false)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  Current  State    Name        Path", lines[0])
	assert.Equal(t, "           DONE     intro1      exercises/00_intro/intro1.rs", lines[1])
	assert.Equal(t, "> >>>>>>>  PENDING  variables1  exercises/01_variables/variables1.rs", lines[2])
}

func TestRenderList_TruncatesPath(t *testing.T) {
	t.Parallel()

	rows := []ListRow{{Name: "a", Path: "exercises/very/long/path/to/the/exercise/a.rs"}}
	got := RenderList(rows, -1, 40, false)
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		assert.LessOrEqual(t, VisualWidth(line), 40, line)
	}
}

func TestRenderList_Styled(t *testing.T) {
	t.Parallel()

	rows := []ListRow{{Name: "a", Path: "a.rs", Done: true}, {Name: "b", Path: "b.rs"}}
	styled := RenderList(rows, 0, 80, true)
	assert.Contains(t, styled, "\033[32mDONE")
	assert.Contains(t, styled, "\033[33mPENDING")
	assert.Equal(t, RenderList(rows, 0, 80, false), StripAnsi(styled))
}
