package diagnostics

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Palette holds the terminal styles used by a Printer.
type Palette struct {
	Error    lipgloss.Style
	Location lipgloss.Style
	Gutter   lipgloss.Style
	Caret    lipgloss.Style
	Hint     lipgloss.Style
}

// DefaultPalette returns the colored palette used on terminals.
func DefaultPalette() Palette {
	return Palette{
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
		Location: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")),
		Gutter:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")),
		Caret:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
		Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("#87D787")).Italic(true),
	}
}

// PlainPalette returns a palette that renders text unchanged.
func PlainPalette() Palette {
	s := lipgloss.NewStyle()
	return Palette{Error: s, Location: s, Gutter: s, Caret: s, Hint: s}
}

// Printer renders diagnostics in a Style. Source, when set, is used by the
// pretty style to show the offending line.
type Printer struct {
	Style   Style
	Source  string
	Palette Palette
}

// NewPrinter returns a Printer with the plain palette.
func NewPrinter(style Style, source string) *Printer {
	return &Printer{Style: style, Source: source, Palette: PlainPalette()}
}

// Render formats d.
func (p *Printer) Render(d Diagnostic) string {
	switch p.Style {
	case StyleJSON:
		return FormatDiagnostic(d, StyleJSON)
	case StylePretty:
		return p.pretty(d)
	}
	return p.Palette.Error.Render(plain(d))
}

func (p *Printer) pretty(d Diagnostic) string {
	var b strings.Builder
	b.WriteString(p.Palette.Error.Render(fmt.Sprintf("error[%s]: %s", d.Code, headline(d))))
	if d.Span != nil {
		loc := fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
		b.WriteString("\n  --> ")
		b.WriteString(p.Palette.Location.Render(loc))
		if text, caret, ok := Excerpt(p.Source, d.Span.StartLine, d.Span.StartCol); ok {
			num := fmt.Sprintf("%d", d.Span.StartLine)
			pad := strings.Repeat(" ", len(num))
			b.WriteString("\n" + p.Palette.Gutter.Render(pad+" |"))
			b.WriteString("\n" + p.Palette.Gutter.Render(num+" |") + " " + text)
			b.WriteString("\n" + p.Palette.Gutter.Render(pad+" |") + " " + p.Palette.Caret.Render(caret))
		}
	}
	if d.Hint != "" {
		b.WriteString("\n  " + p.Palette.Hint.Render("hint: "+d.Hint))
	}
	return b.String()
}

// Excerpt returns the source line at line (1-based) with tabs expanded and a
// caret string pointing at the byte column col. ok is false when the line is
// out of range.
func Excerpt(source string, line, col int) (text, caret string, ok bool) {
	if source == "" || line < 1 {
		return "", "", false
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return "", "", false
	}
	raw := strings.TrimRight(lines[line-1], "\r")
	prefix := raw
	if col-1 >= 0 && col-1 <= len(raw) {
		prefix = raw[:col-1]
	}
	expand := func(s string) string { return strings.ReplaceAll(s, "\t", "    ") }
	width := runewidth.StringWidth(expand(prefix))
	return expand(raw), strings.Repeat(" ", width) + "^", true
}
