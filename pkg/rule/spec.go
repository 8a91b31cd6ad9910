package rule

import (
	"errors"
	"fmt"
	"time"

	"github.com/macropower/tagrss/pkg/tag"
)

var ErrUnknownType = errors.New("unknown rule type")

// Type discriminates the serialized forms of a [Rule].
type Type string

const (
	TypeContains   Type = "Contains"
	TypeTimeRange  Type = "TimeRange"
	TypeFromSource Type = "FromSource"
)

// Spec is the serialized form of a [Rule]. Which fields apply depends on Type.
type Spec struct {
	// CaseSensitive controls case folding for Contains rules.
	CaseSensitive *bool `json:"caseSensitive,omitempty" jsonschema:"title=Case Sensitive"`
	// SourceID is the feed source matched by FromSource rules.
	SourceID *int64 `json:"sourceID,omitempty" jsonschema:"title=Source ID"`
	// Type is one of Contains, TimeRange or FromSource.
	Type Type `json:"type" jsonschema:"title=Type,enum=Contains,enum=TimeRange,enum=FromSource"`
	// Tag is the tag name assigned on match.
	Tag string `json:"tag" jsonschema:"title=Tag"`
	// Pattern is the text matched by Contains rules.
	Pattern string `json:"pattern,omitempty" jsonschema:"title=Pattern"`
	// PatternMode is literal or regex.
	PatternMode PatternMode `json:"patternMode,omitempty" jsonschema:"title=Pattern Mode,enum=literal,enum=regex"`
	// Start is the inclusive RFC 3339 lower bound of TimeRange rules.
	Start string `json:"start,omitempty" jsonschema:"title=Start,format=date-time"`
	// End is the inclusive RFC 3339 upper bound of TimeRange rules.
	End string `json:"end,omitempty" jsonschema:"title=End,format=date-time"`
}

// Build validates the spec and constructs the [Rule] it describes.
//
//nolint:ireturn // Closed sum type.
func (s Spec) Build() (Rule, error) {
	t, err := tag.New(s.Tag)
	if err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}

	switch s.Type {
	case TypeContains:
		caseSensitive := true
		if s.CaseSensitive != nil {
			caseSensitive = *s.CaseSensitive
		}

		r, err := NewContains(t, s.Pattern, s.PatternMode, caseSensitive)
		if err != nil {
			return nil, err
		}

		return r, nil

	case TypeTimeRange:
		start, err := parseBound(s.Start)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}

		end, err := parseBound(s.End)
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}

		r, err := NewTimeRange(t, Window{Start: start, End: end})
		if err != nil {
			return nil, err
		}

		return r, nil

	case TypeFromSource:
		if s.SourceID == nil {
			return nil, errors.New("sourceID is required")
		}

		return NewFromSource(t, *s.SourceID), nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownType, s.Type)
}

// SpecOf returns the serialized form of r. Optional fields are always
// populated, so [Spec.Build] reproduces an equivalent rule.
func SpecOf(r Rule) Spec {
	switch r := r.(type) {
	case *Contains:
		cs := r.pattern.CaseSensitive()

		return Spec{
			Type:          TypeContains,
			Tag:           r.tag.String(),
			Pattern:       r.pattern.Text(),
			PatternMode:   r.pattern.Mode(),
			CaseSensitive: &cs,
		}

	case *TimeRange:
		return Spec{
			Type:  TypeTimeRange,
			Tag:   r.tag.String(),
			Start: formatBound(r.window.Start),
			End:   formatBound(r.window.End),
		}

	case *FromSource:
		id := r.sourceID

		return Spec{
			Type:     TypeFromSource,
			Tag:      r.tag.String(),
			SourceID: &id,
		}
	}

	panic(fmt.Sprintf("unhandled rule type %T", r))
}

func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // Unbounded.
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTimeRange, err)
	}

	return &t, nil
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.RFC3339Nano)
}
