// Package item defines the content record that rules and folders classify.
package item

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Item is a single entry from a feed source.
//
// Classification only reads SourceID, Title, Content and PublishedAt, and
// only ever adds names to Tags.
type Item struct {
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Tags        TagSet     `json:"tags,omitzero"`
	GUID        string     `json:"guid,omitempty"`
	URL         string     `json:"url,omitempty"`
	Title       string     `json:"title"`
	ID          int64      `json:"id,omitempty"`
	SourceID    int64      `json:"sourceID"`
}

// ContentString returns the content, or "" when there is none.
func (i *Item) ContentString() string {
	if i.Content == nil {
		return ""
	}

	return *i.Content
}

// Clone returns a copy of i whose tag set can be modified independently.
func (i *Item) Clone() *Item {
	c := *i
	c.Tags = i.Tags.Clone()

	return &c
}

// TagSet is a set of tag names. The zero value is an empty set ready to use.
type TagSet struct {
	names map[string]struct{}
}

// NewTagSet returns a set containing names.
func NewTagSet(names ...string) TagSet {
	s := TagSet{}
	for _, n := range names {
		s.Add(n)
	}

	return s
}

// Add inserts name and reports whether it was not already present.
func (s *TagSet) Add(name string) bool {
	if s.Has(name) {
		return false
	}

	if s.names == nil {
		s.names = make(map[string]struct{})
	}

	s.names[name] = struct{}{}

	return true
}

func (s TagSet) Has(name string) bool {
	_, ok := s.names[name]

	return ok
}

func (s TagSet) Len() int {
	return len(s.names)
}

func (s TagSet) IsZero() bool {
	return len(s.names) == 0
}

// Names returns the members in lexical order.
func (s TagSet) Names() []string {
	return slices.Sorted(maps.Keys(s.names))
}

func (s TagSet) Clone() TagSet {
	return TagSet{names: maps.Clone(s.names)}
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names()) //nolint:wrapcheck // Return the original error.
}

func (s *TagSet) UnmarshalJSON(b []byte) error {
	var names []string

	err := json.Unmarshal(b, &names)
	if err != nil {
		return err //nolint:wrapcheck // Return the original error.
	}

	*s = NewTagSet(names...)

	return nil
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (s TagSet) MarshalYAML() (any, error) {
	return s.Names(), nil
}

// UnmarshalYAML implements the goccy/go-yaml InterfaceUnmarshaler.
func (s *TagSet) UnmarshalYAML(unmarshal func(any) error) error {
	var names []string

	err := unmarshal(&names)
	if err != nil {
		return err
	}

	*s = NewTagSet(names...)

	return nil
}
