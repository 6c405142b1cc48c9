package orchestrator

import (
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"
)

// Console implements interfaces.Reporter on a terminal stream. Colors are
// dropped automatically when out is not a terminal.
type Console struct {
	out   io.Writer
	ok    lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	run   lipgloss.Style
	title lipgloss.Style
}

// NewConsole creates a reporter writing to out
func NewConsole(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:   out,
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		info:  r.NewStyle().Faint(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		run:   r.NewStyle().Foreground(lipgloss.Color("6")),
		title: r.NewStyle().Bold(true),
	}
}

// OK reports a completed step
func (c *Console) OK(format string, args ...any) {
	c.line(c.ok, "✅ ", format, args...)
}

// Info reports a step that was skipped or needed no change. Messages that
// already start with a symbol keep it instead of the info marker.
func (c *Console) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	prefix := "ℹ️ "
	if r, _ := utf8.DecodeRuneInString(msg); unicode.IsSymbol(r) {
		prefix = ""
	}
	c.line(c.info, prefix, "%s", msg)
}

// Warn reports a recoverable problem
func (c *Console) Warn(format string, args ...any) {
	c.line(c.warn, "⚠️ ", format, args...)
}

// Running echoes a command before it is executed
func (c *Console) Running(cmd []string, dir string) {
	msg := "→ Running: " + shellquote.Join(cmd...)
	if dir != "" {
		msg += fmt.Sprintf("  (cwd=%s)", dir)
	}
	fmt.Fprintln(c.out, c.run.Render(msg))
}

// Title prints an emphasized line
func (c *Console) Title(format string, args ...any) {
	fmt.Fprintln(c.out, c.title.Render(fmt.Sprintf(format, args...)))
}

// Println prints an unstyled line
func (c *Console) Println(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) line(style lipgloss.Style, prefix, format string, args ...any) {
	fmt.Fprintln(c.out, style.Render(prefix+fmt.Sprintf(format, args...)))
}
