package cli

import (
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/exp/charmtone"

	"github.com/macropower/tagrss/pkg/render"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(charmtone.Tang).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(charmtone.Squid)
	subtleStyle = lipgloss.NewStyle().Foreground(charmtone.Squid)
	tagStyle    = lipgloss.NewStyle().Foreground(charmtone.Julep)
	folderStyle = lipgloss.NewStyle().Foreground(charmtone.Malibu)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(charmtone.Cherry)
)

func newTable(width int, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Width(width).
		Wrap(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})
}

// printStyled writes styled output, downsampling colors to what w supports.
func printStyled(w io.Writer, v ...any) {
	mustN(lipgloss.Fprintln(w, v...))
}

func renderTags(names []string) string {
	if len(names) == 0 {
		return subtleStyle.Render("-")
	}

	styled := make([]string, len(names))
	for i, n := range names {
		styled[i] = tagStyle.Render(n)
	}

	return strings.Join(styled, ", ")
}

func renderFolders(names []string) string {
	if len(names) == 0 {
		return subtleStyle.Render("none")
	}

	styled := make([]string, len(names))
	for i, n := range names {
		styled[i] = folderStyle.Render(n)
	}

	return strings.Join(styled, ", ")
}

func renderDiff(name, before, after string) string {
	diff := render.Diff(name, before, after)
	if diff == "" {
		return subtleStyle.Render("No changes.")
	}

	return strings.TrimSuffix(render.ColorDiff(diff, render.DefaultDiffStyles()), "\n")
}
