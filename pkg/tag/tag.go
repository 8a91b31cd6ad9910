// Package tag defines hierarchical tag names.
//
// A tag name is a non-empty path of segments separated by [Separator], such
// as "tech/ai". Names are normalized to Unicode NFC on construction, so two
// tags are equal exactly when their names are equal.
package tag

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator delimits hierarchy levels in a tag name.
const Separator = "/"

var (
	ErrEmptyName    = errors.New("empty tag name")
	ErrEmptySegment = errors.New("empty tag segment")
)

// Tag is an immutable hierarchical tag name.
type Tag struct {
	name string
}

// New validates and normalizes name.
func New(name string) (Tag, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return Tag{}, ErrEmptyName
	}

	for seg := range strings.SplitSeq(name, Separator) {
		if strings.TrimSpace(seg) == "" {
			return Tag{}, fmt.Errorf("tag %q: %w", name, ErrEmptySegment)
		}
	}

	return Tag{name: name}, nil
}

// MustNew is like [New] but panics on error.
func MustNew(name string) Tag {
	t, err := New(name)
	if err != nil {
		panic(err)
	}

	return t
}

func (t Tag) String() string {
	return t.name
}

// IsZero reports whether t is the zero Tag.
func (t Tag) IsZero() bool {
	return t.name == ""
}

// Segments returns the hierarchy levels of t, root first.
func (t Tag) Segments() []string {
	if t.IsZero() {
		return nil
	}

	return strings.Split(t.name, Separator)
}

// Base returns the last segment of t.
func (t Tag) Base() string {
	i := strings.LastIndex(t.name, Separator)

	return t.name[i+1:]
}

// Parent returns the enclosing tag, if t is not a root tag.
func (t Tag) Parent() (Tag, bool) {
	i := strings.LastIndex(t.name, Separator)
	if i < 0 {
		return Tag{}, false
	}

	return Tag{name: t.name[:i]}, true
}

// IsAncestorOf reports whether other lies strictly below t in the hierarchy.
func (t Tag) IsAncestorOf(other Tag) bool {
	if t.IsZero() {
		return false
	}

	return strings.HasPrefix(other.name, t.name+Separator)
}

// MarshalText implements [encoding.TextMarshaler].
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *Tag) UnmarshalText(b []byte) error {
	parsed, err := New(string(b))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
