package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/pkg/render"
)

func TestHighlighter_Render(t *testing.T) {
	t.Parallel()

	src := "folders:\n  - name: AI News\n    tag: tech/ai\n"

	tcs := map[string]struct {
		opts []render.HighlighterOpt
		want string
	}{
		"plain": {
			opts: []render.HighlighterOpt{render.WithFormatter("noop")},
			want: "folders:\n  - name: AI News\n    tag: tech/ai",
		},
		"line numbers": {
			opts: []render.HighlighterOpt{
				render.WithFormatter("noop"),
				render.WithLineNumbers(true),
			},
			want: "   1  folders:\n   2    - name: AI News\n   3      tag: tech/ai",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := render.NewHighlighter("yaml", tc.opts...).Render(src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ansi.Strip(got))
		})
	}
}

func TestHighlighter_Width(t *testing.T) {
	t.Parallel()

	h := render.NewHighlighter("yaml", render.WithFormatter("noop"), render.WithWidth(10))

	got, err := h.Render("title: a very long title value\n")
	require.NoError(t, err)

	for line := range strings.SplitSeq(got, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 10, line)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	assert.Empty(t, render.Diff("rules.yaml", "a\n", "a\n"))

	d := render.Diff("rules.yaml", "rules: []\n", "rules:\n  - tag: ai\n")
	assert.Contains(t, d, "--- a/rules.yaml")
	assert.Contains(t, d, "+++ b/rules.yaml")
	assert.Contains(t, d, "-rules: []")
	assert.Contains(t, d, "+  - tag: ai")

	plain := render.DiffStyles{
		Header:   lipgloss.NewStyle(),
		Hunk:     lipgloss.NewStyle(),
		Inserted: lipgloss.NewStyle(),
		Deleted:  lipgloss.NewStyle(),
	}
	assert.Equal(t, d, render.ColorDiff(d, plain))
	assert.Empty(t, render.ColorDiff("", plain))
}

func TestWrapAndTruncate(t *testing.T) {
	t.Parallel()

	for line := range strings.SplitSeq(render.Wrap("hello wide world", 6), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 6)
	}

	assert.Equal(t, "unchanged", render.Wrap("unchanged", 0))

	got := render.Truncate("abcdefgh", 4)
	assert.LessOrEqual(t, ansi.StringWidth(got), 4)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "abc", render.Truncate("abc", 4))

	wrapped := render.WordWrap("one two  three\nfour", 12, 2)
	for line := range strings.SplitSeq(wrapped, "\n") {
		assert.True(t, strings.HasPrefix(line, "  "), line)
		assert.LessOrEqual(t, ansi.StringWidth(line), 12, line)
	}
}

func TestAgo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "never", render.Ago(nil))

	then := time.Now().Add(-3 * time.Hour)
	assert.Equal(t, "3 hours ago", render.Ago(&then))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got, err := render.Normalize("Café Über")
	require.NoError(t, err)
	assert.Equal(t, "Cafe Uber", got)
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	candidates := []string{"AI News", "Rust", "Hacker News", "Everything Else"}

	assert.ElementsMatch(t, []string{"AI News", "Hacker News"}, render.Suggest("news", candidates, 5))
	assert.Len(t, render.Suggest("news", candidates, 1), 1)
	assert.Empty(t, render.Suggest("zzz", candidates, 3))
}
