package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Wrap wraps s at width cells, breaking long words on " /-". ANSI sequences
// are preserved.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	return ansi.Wrap(s, width, wrapOnCharacters)
}

// WordWrap reflows prose to width cells and indents it by n spaces.
func WordWrap(s string, width int, n uint) string {
	s = strings.Join(strings.Fields(s), " ")
	if width > int(n) {
		s = wordwrap.String(s, width-int(n))
	}

	return indent.String(s, n)
}

// Truncate shortens s to width cells, ending it with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}

	return ansi.Truncate(s, width, "…")
}

// Ago formats t relative to now, e.g. "3 hours ago". Nil yields "never".
func Ago(t *time.Time) string {
	if t == nil {
		return "never"
	}

	return humanize.Time(*t)
}

// Normalize removes diacritics so that "ö" matches "o".
func Normalize(in string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, in)
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}

	return out, nil
}

// normalizedSource adapts a string slice to [fuzzy.Source].
type normalizedSource []string

func (s normalizedSource) String(i int) string {
	n, err := Normalize(s[i])
	if err != nil {
		return s[i]
	}

	return n
}

func (s normalizedSource) Len() int {
	return len(s)
}

// FuzzyFind returns the indexes of candidates matching pattern, best match
// first. Matching ignores case and diacritics.
func FuzzyFind(pattern string, candidates []string) []int {
	if p, err := Normalize(pattern); err == nil {
		pattern = p
	}

	matches := fuzzy.FindFrom(pattern, normalizedSource(candidates))

	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}

	return out
}

// Suggest returns up to n candidates that fuzzily match name.
func Suggest(name string, candidates []string, n int) []string {
	var out []string

	for _, i := range FuzzyFind(name, candidates) {
		if len(out) == n {
			break
		}

		out = append(out, candidates[i])
	}

	return out
}
