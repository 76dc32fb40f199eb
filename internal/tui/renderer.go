package tui

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PromptKind selects the line shown at the bottom of the watch screen.
type PromptKind int

const (
	// PromptWatch lists the watch-mode shortcuts.
	PromptWatch PromptKind = iota
	// PromptManual is PromptWatch plus the manual re-run shortcut.
	PromptManual
	// PromptContinue waits for enter, e.g. after showing a hint.
	PromptContinue
	// PromptNext waits for the learner to move on after a success.
	PromptNext
	// PromptList lists the list-view shortcuts.
	PromptList
	// PromptChecking is shown while a check or verification runs.
	PromptChecking
)

// String returns the prompt kind name.
func (k PromptKind) String() string {
	switch k {
	case PromptWatch:
		return "watch"
	case PromptManual:
		return "manual"
	case PromptContinue:
		return "continue"
	case PromptNext:
		return "next"
	case PromptList:
		return "list"
	case PromptChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// Renderer draws the watch screen. Every method reports write errors so the
// caller can surface them.
type Renderer interface {
	Clear() error
	WriteOutput(p []byte) error
	WriteProgressBar(done, total, width int) error
	Prompt(kind PromptKind) error
	ShowHint(text string) error
}

// RendererOptions configures a TerminalRenderer.
type RendererOptions struct {
	// Raw translates "\n" to "\r\n" for a terminal in raw mode.
	Raw bool
	// Styled enables colours and escape sequences.
	Styled bool
}

// TerminalRenderer writes the watch screen to a terminal.
type TerminalRenderer struct {
	out    io.Writer
	raw    bool
	styled bool
}

// NewTerminalRenderer creates a TerminalRenderer writing to out.
func NewTerminalRenderer(out io.Writer, opts RendererOptions) *TerminalRenderer {
	return &TerminalRenderer{
		out:    out,
		raw:    opts.Raw,
		styled: opts.Styled,
	}
}

// SetRaw toggles newline translation.
func (r *TerminalRenderer) SetRaw(raw bool) {
	r.raw = raw
}

// Styled reports whether colours are enabled.
func (r *TerminalRenderer) Styled() bool {
	return r.styled
}

func (r *TerminalRenderer) write(p []byte) error {
	if r.raw {
		p = toCRLF(p)
	}
	_, err := r.out.Write(p)
	return err
}

func (r *TerminalRenderer) writeString(s string) error {
	return r.write([]byte(s))
}

// toCRLF rewrites lone "\n" as "\r\n".
func toCRLF(p []byte) []byte {
	if !bytes.Contains(p, []byte("\n")) {
		return p
	}
	out := make([]byte, 0, len(p)+bytes.Count(p, []byte("\n")))
	for i, b := range p {
		if b == '\n' && (i == 0 || p[i-1] != '\r') {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	return out
}

func (r *TerminalRenderer) Clear() error {
	if !r.styled {
		return nil
	}
	return r.writeString(ClearScreen + ClearScrollback + CursorHome)
}

func (r *TerminalRenderer) WriteOutput(p []byte) error {
	return r.write(p)
}

func (r *TerminalRenderer) WriteProgressBar(done, total, width int) error {
	return r.writeString(ProgressBar(done, total, width, r.styled) + "\n")
}

func (r *TerminalRenderer) Prompt(kind PromptKind) error {
	return r.writeString(PromptText(kind, r.styled))
}

func (r *TerminalRenderer) ShowHint(text string) error {
	header := newColor(r.styled, color.FgCyan, color.Bold, color.Underline).Sprint("Hint")
	return r.writeString(fmt.Sprintf("%s\n%s\n\n", header, text))
}

// WriteList draws the exercise list view.
func (r *TerminalRenderer) WriteList(rows []ListRow, selected, width int) error {
	return r.writeString(RenderList(rows, selected, width, r.styled))
}

// PromptText returns the prompt line for kind.
func PromptText(kind PromptKind, styled bool) string {
	key := func(k string) string {
		return newColor(styled, color.Bold).Sprint(k)
	}
	switch kind {
	case PromptWatch:
		return fmt.Sprintf("%sext / %sint / %sist / %suit ? ", key("[n]"), key("[h]"), key("[l]"), key("[q]"))
	case PromptManual:
		return fmt.Sprintf("%sext / %sint / %sist / %sun / %suit ? ", key("[n]"), key("[h]"), key("[l]"), key("[r]"), key("[q]"))
	case PromptContinue:
		return fmt.Sprintf("Press %s to continue ", key("enter"))
	case PromptNext:
		done := newColor(styled, color.FgGreen).Sprint("Exercise done ✓")
		return fmt.Sprintf("%s\nWhen you are done experimenting, press %s or %s to move on ", done, key("[n]"), key("enter"))
	case PromptList:
		return fmt.Sprintf("%s/%s select / %s continue on selected / %s back / %suit ", key("↑"), key("↓"), key("enter"), key("esc"), key("[q]"))
	case PromptChecking:
		return "Checking the exercise..."
	default:
		return ""
	}
}

// SuccessText styles a success message.
func SuccessText(s string, styled bool) string {
	return newColor(styled, color.FgGreen, color.Bold).Sprint(s)
}

// ErrorText styles an error message.
func ErrorText(s string, styled bool) string {
	return newColor(styled, color.FgRed, color.Bold).Sprint(s)
}
