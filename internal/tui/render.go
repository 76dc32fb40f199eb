package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// PadOrTruncate pads or truncates a string to exactly width visible
// characters. ANSI escape sequences are kept and do not count towards the
// width.
func PadOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	visible := VisualWidth(s)
	if visible == width {
		return s
	}
	if visible < width {
		return s + strings.Repeat(" ", width-visible)
	}

	keep := width
	suffix := ""
	if width >= 3 {
		keep = width - 3
		suffix = "..."
	}

	var sb strings.Builder
	sawEscape := false
	n := 0
	for i := 0; i < len(s); {
		if end := escapeEnd(s, i); end > i {
			if n < keep {
				sb.WriteString(s[i:end])
				sawEscape = true
			}
			i = end
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if n < keep {
			sb.WriteRune(r)
		}
		n++
		i += size
	}
	if sawEscape {
		sb.WriteString(Reset)
	}
	sb.WriteString(suffix)
	return sb.String()
}

// Truncate truncates a plain string to width, adding an ellipsis if needed.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	if width >= 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:width])
}

// VisualWidth returns the number of visible runes in s, ignoring ANSI
// escape sequences.
func VisualWidth(s string) int {
	return utf8.RuneCountInString(StripAnsi(s))
}

// StripAnsi removes CSI and OSC escape sequences from s.
func StripAnsi(s string) string {
	if !strings.Contains(s, "\033") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		if end := escapeEnd(s, i); end > i {
			i = end
			continue
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

// escapeEnd returns the index just past the escape sequence starting at i,
// or i if there is none.
func escapeEnd(s string, i int) int {
	if s[i] != '\033' || i+1 >= len(s) {
		return i
	}
	switch s[i+1] {
	case '[':
		for j := i + 2; j < len(s); j++ {
			if s[j] >= 0x40 && s[j] <= 0x7E {
				return j + 1
			}
		}
		return len(s)
	case ']':
		// OSC, terminated by BEL or ST (ESC \).
		for j := i + 2; j < len(s); j++ {
			if s[j] == '\a' {
				return j + 1
			}
			if s[j] == '\033' && j+1 < len(s) && s[j+1] == '\\' {
				return j + 2
			}
		}
		return len(s)
	}
	return i
}

const (
	progressPrefix = "Progress: ["
	// "] xxx/xxx exercises"
	progressPostfixWidth = 19
	progressWrapperWidth = len(progressPrefix) + progressPostfixWidth

	// ProgressMinWidth is the narrowest line that still gets a bar.
	ProgressMinWidth = progressWrapperWidth + 4
)

// ProgressBar renders the exercise progress line for a terminal width.
// Below ProgressMinWidth it falls back to plain text.
func ProgressBar(done, total, width int, styled bool) string {
	if total <= 0 || width < ProgressMinWidth {
		return fmt.Sprintf("Progress: %d/%d exercises", done, total)
	}
	done = min(max(done, 0), total)

	barWidth := width - progressWrapperWidth
	filled := barWidth * done / total

	green := newColor(styled, color.FgGreen)
	red := newColor(styled, color.FgRed)

	var sb strings.Builder
	sb.WriteString(progressPrefix)
	head := strings.Repeat("#", filled)
	if filled < barWidth {
		head += ">"
	}
	sb.WriteString(green.Sprint(head))
	if rest := barWidth - filled - 1; rest > 0 {
		sb.WriteString(red.Sprint(strings.Repeat("-", rest)))
	}
	fmt.Fprintf(&sb, "] %3d/%d exercises", done, total)
	return sb.String()
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink to absPath. Editors
// that register their own URL scheme get it; "vscode" is the only one
// recognised.
func Hyperlink(text, absPath, editor string) string {
	scheme := "file://"
	if editor == "vscode" {
		scheme = "vscode://file"
	}
	if !strings.HasPrefix(absPath, "/") {
		absPath = "/" + absPath
	}
	return "\033]8;;" + scheme + absPath + "\033\\" + text + "\033]8;;\033\\"
}

func newColor(styled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if styled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
