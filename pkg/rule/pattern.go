package rule

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/macropower/tagrss/pkg/item"
)

// MaxPatternLength bounds the size of a single pattern.
const MaxPatternLength = 4096

var ErrInvalidPattern = errors.New("invalid pattern")

// PatternMode selects how a pattern's text is interpreted.
type PatternMode string

const (
	PatternModeLiteral PatternMode = "literal"
	PatternModeRegex   PatternMode = "regex"
)

// Pattern is a compiled text matcher.
type Pattern struct {
	re            *regexp.Regexp
	text          string
	mode          PatternMode
	caseSensitive bool
}

// CompilePattern compiles text according to mode. Literal text is matched as
// a substring. An empty mode means [PatternModeRegex].
func CompilePattern(text string, mode PatternMode, caseSensitive bool) (*Pattern, error) {
	if mode == "" {
		mode = PatternModeRegex
	}

	if text == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	if len(text) > MaxPatternLength {
		return nil, fmt.Errorf("%w: longer than %d bytes", ErrInvalidPattern, MaxPatternLength)
	}

	var expr string

	switch mode {
	case PatternModeLiteral:
		expr = regexp.QuoteMeta(text)
	case PatternModeRegex:
		expr = text
	default:
		return nil, fmt.Errorf("%w: unknown pattern mode %q", ErrInvalidPattern, mode)
	}

	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return &Pattern{
		re:            re,
		text:          text,
		mode:          mode,
		caseSensitive: caseSensitive,
	}, nil
}

// MatchItem checks the title first, then the content if present.
func (p *Pattern) MatchItem(it *item.Item) bool {
	if p.re.MatchString(it.Title) {
		return true
	}

	return it.Content != nil && p.re.MatchString(*it.Content)
}

func (p *Pattern) Text() string {
	return p.text
}

func (p *Pattern) Mode() PatternMode {
	return p.mode
}

func (p *Pattern) CaseSensitive() bool {
	return p.caseSensitive
}

func (p *Pattern) String() string {
	flags := ""
	if !p.caseSensitive {
		flags = "i"
	}

	if p.mode == PatternModeLiteral {
		return fmt.Sprintf("%q%s", p.text, flags)
	}

	return fmt.Sprintf("/%s/%s", p.text, flags)
}
