package render

import (
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"
)

// DiffStyles colors the lines of a unified diff.
type DiffStyles struct {
	Header   lipgloss.Style
	Hunk     lipgloss.Style
	Inserted lipgloss.Style
	Deleted  lipgloss.Style
}

// DefaultDiffStyles returns the default [DiffStyles].
func DefaultDiffStyles() DiffStyles {
	return DiffStyles{
		Header:   lipgloss.NewStyle().Bold(true),
		Hunk:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Inserted: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Deleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Diff returns the unified diff between before and after, labelled with
// name. Identical inputs yield "".
func Diff(name, before, after string) string {
	return udiff.Unified("a/"+name, "b/"+name, before, after)
}

// ColorDiff styles each line of a unified diff.
func ColorDiff(diff string, s DiffStyles) string {
	if diff == "" {
		return ""
	}

	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			lines[i] = s.Header.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = s.Hunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.Inserted.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.Deleted.Render(line)
		}
	}

	return strings.Join(lines, "\n") + "\n"
}
