package rule

import (
	"fmt"

	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/tag"
)

// Rule maps an item to an optional [tag.Tag].
//
// The set of implementations is closed: [*Contains], [*TimeRange] and
// [*FromSource].
type Rule interface {
	// FindTag returns the rule's tag if the item matches.
	FindTag(it *item.Item) (tag.Tag, bool)
	// Tag returns the tag the rule assigns.
	Tag() tag.Tag
	String() string

	isRule()
}

// Compile-time interface checks.
var (
	_ Rule = (*Contains)(nil)
	_ Rule = (*TimeRange)(nil)
	_ Rule = (*FromSource)(nil)
)

// Contains tags items whose title or content matches a pattern.
type Contains struct {
	pattern *Pattern
	tag     tag.Tag
}

// NewContains compiles the pattern. Invalid patterns fail with [ErrInvalidPattern].
func NewContains(t tag.Tag, pattern string, mode PatternMode, caseSensitive bool) (*Contains, error) {
	p, err := CompilePattern(pattern, mode, caseSensitive)
	if err != nil {
		return nil, fmt.Errorf("rule for tag %q: %w", t, err)
	}

	return &Contains{tag: t, pattern: p}, nil
}

// MustNewContains is like [NewContains] but panics on error.
func MustNewContains(t tag.Tag, pattern string, mode PatternMode, caseSensitive bool) *Contains {
	r, err := NewContains(t, pattern, mode, caseSensitive)
	if err != nil {
		panic(err)
	}

	return r
}

func (r *Contains) FindTag(it *item.Item) (tag.Tag, bool) {
	if r.pattern.MatchItem(it) {
		return r.tag, true
	}

	return tag.Tag{}, false
}

func (r *Contains) Tag() tag.Tag {
	return r.tag
}

func (r *Contains) Pattern() *Pattern {
	return r.pattern
}

func (r *Contains) String() string {
	return fmt.Sprintf("contains %s -> %s", r.pattern, r.tag)
}

func (*Contains) isRule() {}

// TimeRange tags items published within a [Window].
type TimeRange struct {
	tag    tag.Tag
	window Window
}

// NewTimeRange fails with [ErrInvalidTimeRange] if start is after end.
func NewTimeRange(t tag.Tag, window Window) (*TimeRange, error) {
	w, err := NewWindow(window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("rule for tag %q: %w", t, err)
	}

	return &TimeRange{tag: t, window: w}, nil
}

func (r *TimeRange) FindTag(it *item.Item) (tag.Tag, bool) {
	if r.window.Contains(it.PublishedAt) {
		return r.tag, true
	}

	return tag.Tag{}, false
}

func (r *TimeRange) Tag() tag.Tag {
	return r.tag
}

func (r *TimeRange) Window() Window {
	return r.window
}

func (r *TimeRange) String() string {
	return fmt.Sprintf("published [%s] -> %s", r.window, r.tag)
}

func (*TimeRange) isRule() {}

// FromSource tags items from one feed source.
type FromSource struct {
	tag      tag.Tag
	sourceID int64
}

func NewFromSource(t tag.Tag, sourceID int64) *FromSource {
	return &FromSource{tag: t, sourceID: sourceID}
}

func (r *FromSource) FindTag(it *item.Item) (tag.Tag, bool) {
	if it.SourceID == r.sourceID {
		return r.tag, true
	}

	return tag.Tag{}, false
}

func (r *FromSource) Tag() tag.Tag {
	return r.tag
}

func (r *FromSource) SourceID() int64 {
	return r.sourceID
}

func (r *FromSource) String() string {
	return fmt.Sprintf("source %d -> %s", r.sourceID, r.tag)
}

func (*FromSource) isRule() {}
