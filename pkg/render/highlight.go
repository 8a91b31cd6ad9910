package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	// DefaultStyle is the chroma style used for highlighting.
	DefaultStyle = "catppuccin-mocha"

	wrapOnCharacters = " /-"
)

// Highlighter renders source text with chroma styling.
type Highlighter struct {
	lexer           chroma.Lexer
	formatter       chroma.Formatter
	style           *chroma.Style
	lineNumberStyle lipgloss.Style
	width           int
	lineNumbers     bool
}

// HighlighterOpt configures a [Highlighter].
type HighlighterOpt func(*Highlighter)

// WithFormatter sets the chroma formatter explicitly, e.g. "noop".
func WithFormatter(name string) HighlighterOpt {
	return func(h *Highlighter) {
		h.formatter = formatters.Get(name)
	}
}

// WithStyle sets the chroma style by name.
func WithStyle(name string) HighlighterOpt {
	return func(h *Highlighter) {
		h.style = styles.Get(name)
	}
}

// WithLineNumbers prefixes each line with its number.
func WithLineNumbers(enabled bool) HighlighterOpt {
	return func(h *Highlighter) {
		h.lineNumbers = enabled
	}
}

// WithWidth wraps lines at width cells. Zero disables wrapping.
func WithWidth(width int) HighlighterOpt {
	return func(h *Highlighter) {
		h.width = width
	}
}

// NewHighlighter creates a [Highlighter] for the named language, e.g. "yaml"
// or "json". Unknown languages are rendered unstyled.
func NewHighlighter(language string, opts ...HighlighterOpt) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	h := &Highlighter{
		lexer:           chroma.Coalesce(lexer),
		formatter:       formatters.Get(formatterName(termenv.ColorProfile())),
		style:           styles.Get(DefaultStyle),
		lineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

func formatterName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal8"
	}

	return "noop"
}

// Render highlights src.
func (h *Highlighter) Render(src string) (string, error) {
	iterator, err := h.lexer.Tokenise(nil, src)
	if err != nil {
		return "", fmt.Errorf("lexer tokenize: %w", err)
	}

	buf := &bytes.Buffer{}

	err = h.formatter.Format(buf, h.style, iterator)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		out = append(out, h.formatLine(line, i+1))
	}

	return strings.Join(out, "\n"), nil
}

func (h *Highlighter) formatLine(line string, n int) string {
	width := h.width
	if h.lineNumbers && width > 0 {
		// Reserve space for the line number gutter.
		width = max(1, width-6)
	}

	if width > 0 {
		line = Wrap(line, width)
	}

	if !h.lineNumbers {
		return line
	}

	parts := strings.Split(line, "\n")
	for i, p := range parts {
		gutter := fmt.Sprintf("%4d  ", n)
		if i > 0 {
			gutter = "   -  "
		}

		parts[i] = h.lineNumberStyle.Render(gutter) + p
	}

	return strings.Join(parts, "\n")
}
