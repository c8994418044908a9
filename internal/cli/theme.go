package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme holds the color scheme for command output.
type Theme struct {
	Heading lipgloss.Color
	Good    lipgloss.Color
	Warn    lipgloss.Color
	Bad     lipgloss.Color
	Hint    lipgloss.Color

	// plain disables styling, e.g. when stdout is piped
	plain bool
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Heading: lipgloss.Color("#5FAFD7"), // light blue
	Good:    lipgloss.Color("#00D787"), // green
	Warn:    lipgloss.Color("#FFAF00"), // amber
	Bad:     lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// themeFor returns the default theme, plain unless f is a terminal.
func themeFor(f *os.File) Theme {
	t := defaultTheme
	t.plain = !term.IsTerminal(int(f.Fd()))
	return t
}

func (t Theme) style(c lipgloss.Color) lipgloss.Style {
	if t.plain {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (t Theme) headingStyle() lipgloss.Style { return t.style(t.Heading).Bold(!t.plain) }
func (t Theme) goodStyle() lipgloss.Style    { return t.style(t.Good).Bold(!t.plain) }
func (t Theme) warnStyle() lipgloss.Style    { return t.style(t.Warn) }
func (t Theme) badStyle() lipgloss.Style     { return t.style(t.Bad).Bold(!t.plain) }
func (t Theme) hintStyle() lipgloss.Style    { return t.style(t.Hint).Italic(!t.plain) }

// printer writes command results as styled text or JSON.
type printer struct {
	w     io.Writer
	theme Theme
	json  bool
}

func (p printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p printer) heading(s string) {
	p.printf("%s\n", p.theme.headingStyle().Render(s))
}

func (p printer) hint(s string) {
	p.printf("%s\n", p.theme.hintStyle().Render(s))
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
