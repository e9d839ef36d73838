// Package terminal prints styled, line-oriented reports for the panes CLI:
// status messages, markdown tables and framed screen captures. It is used
// outside the full-screen runtime, before it starts or instead of it.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Writer provides styled terminal output with markdown rendering.
type Writer struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	mu       sync.Mutex

	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
	keyStyle     lipgloss.Style
	frameStyle   lipgloss.Style
}

// New creates a Writer on stdout.
func New() *Writer {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a Writer on out. Colors follow the detected
// profile of out; non-terminal writers get plain text.
func NewWithOutput(out io.Writer) *Writer {
	renderer := lipgloss.NewRenderer(out)
	glamourStyle := "notty"
	if renderer.ColorProfile() != termenv.Ascii {
		glamourStyle = "dark"
		if !renderer.HasDarkBackground() {
			glamourStyle = "light"
		}
	}
	md, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle),
		glamour.WithColorProfile(renderer.ColorProfile()),
		glamour.WithWordWrap(min(getTerminalWidth(), 100)),
	)

	border := lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"}
	return &Writer{
		out:      out,
		renderer: md,

		errorStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		warnStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		successStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),
		infoStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
		dimStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		headerStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
		keyStyle: renderer.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}).
			Bold(true),
		frameStyle: renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border),
	}
}

// Println writes a formatted line.
func (w *Writer) Println(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Newline prints a blank line.
func (w *Writer) Newline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out)
}

// Error prints an error message in red.
func (w *Writer) Error(format string, args ...any) {
	w.styled(w.errorStyle, "error: "+fmt.Sprintf(format, args...))
}

// Warn prints a warning message in yellow.
func (w *Writer) Warn(format string, args ...any) {
	w.styled(w.warnStyle, "warning: "+fmt.Sprintf(format, args...))
}

// Success prints a success message in green.
func (w *Writer) Success(format string, args ...any) {
	w.styled(w.successStyle, "✓ "+fmt.Sprintf(format, args...))
}

// Info prints an info message in blue.
func (w *Writer) Info(format string, args ...any) {
	w.styled(w.infoStyle, fmt.Sprintf(format, args...))
}

// Dim prints secondary text.
func (w *Writer) Dim(format string, args ...any) {
	w.styled(w.dimStyle, fmt.Sprintf(format, args...))
}

// Header prints a section header.
func (w *Writer) Header(title string) {
	w.styled(w.headerStyle, title)
}

func (w *Writer) styled(style lipgloss.Style, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, style.Render(msg))
}

// Markdown renders markdown. On renderer failure the source is printed
// as-is and the error returned.
func (w *Writer) Markdown(md string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.renderer == nil {
		fmt.Fprintln(w.out, md)
		return nil
	}
	rendered, err := w.renderer.Render(md)
	if err != nil {
		fmt.Fprintln(w.out, md)
		return err
	}
	fmt.Fprint(w.out, rendered)
	return nil
}

// Table renders rows as a markdown table.
func (w *Writer) Table(headers []string, rows [][]string) error {
	return w.Markdown(MarkdownTable(headers, rows))
}

// MarkdownTable formats a GitHub-style table. Pipes in cells are escaped.
func MarkdownTable(headers []string, rows [][]string) string {
	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", `\|`)
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	writeRow(headers)
	sb.WriteString("|")
	for range headers {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// KeyValues prints aligned key/value pairs.
func (w *Writer) KeyValues(pairs [][2]string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	for _, p := range pairs {
		key := p[0] + strings.Repeat(" ", width-lipgloss.Width(p[0]))
		fmt.Fprintf(w.out, "  %s  %s\n", w.keyStyle.Render(key), p[1])
	}
}

// Frame prints lines inside a rounded border with an optional title
// above it. Lines are printed verbatim so cell alignment is kept.
func (w *Writer) Frame(title string, lines []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if title != "" {
		fmt.Fprintln(w.out, w.dimStyle.Render(title))
	}
	fmt.Fprintln(w.out, w.frameStyle.Render(strings.Join(lines, "\n")))
}

// getTerminalWidth returns the stdout width, defaulting to 80.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width == 0 {
		return 80
	}
	return width
}
