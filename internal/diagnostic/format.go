package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/diesel-lang/diesel/internal/position"
)

// ColorMode selects when severity labels are coloured.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode accepts "auto", "always" and "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

// Formatter renders diagnostics as text, optionally with a source excerpt.
type Formatter struct {
	color  bool
	source *position.SourceFile
	styles map[DiagnosticLevel]lipgloss.Style
}

// NewFormatter creates a formatter for output written to w.
// source may be nil when the program text is not available.
func NewFormatter(w io.Writer, mode ColorMode, source *position.SourceFile) *Formatter {
	color := false
	switch mode {
	case ColorAlways:
		color = true
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			color = isTerminal(f.Fd())
		}
	}

	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Formatter{
		color:  color,
		source: source,
		styles: map[DiagnosticLevel]lipgloss.Style{
			DiagnosticError:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
			DiagnosticWarning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
			DiagnosticNote:    r.NewStyle().Foreground(lipgloss.Color("6")),
		},
	}
}

// Colored reports whether the formatter emits ANSI colour sequences.
func (f *Formatter) Colored() bool {
	return f.color
}

// Format renders one diagnostic.
func (f *Formatter) Format(d *Diagnostic) string {
	var b strings.Builder

	label := fmt.Sprintf("%s[%s]", d.Level, d.Code)
	if style, ok := f.styles[d.Level]; ok && f.color {
		label = style.Render(label)
	}

	fmt.Fprintf(&b, "%s: %s: %s\n", d.Pos, label, d.Title)
	if d.Message != "" {
		fmt.Fprintf(&b, "  %s\n", d.Message)
	}
	if excerpt := f.source.Excerpt(d.Pos); excerpt != "" {
		b.WriteString(excerpt)
	}

	return b.String()
}

// WriteAll writes every diagnostic held by the engine, sorted by position,
// followed by a summary line.
func (f *Formatter) WriteAll(w io.Writer, e *Engine) error {
	e.Sort()
	for i := range e.diagnostics {
		if _, err := io.WriteString(w, f.Format(&e.diagnostics[i])); err != nil {
			return err
		}
	}
	if len(e.diagnostics) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s\n", e.Summary())
	return err
}
