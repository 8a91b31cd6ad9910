package rule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// Window is a time interval with optional, inclusive bounds.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// NewWindow returns a [Window], rejecting a start after the end.
func NewWindow(start, end *time.Time) (Window, error) {
	if start != nil && end != nil && start.After(*end) {
		return Window{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidTimeRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return Window{Start: start, End: end}, nil
}

// Unbounded reports whether neither bound is set.
func (w Window) Unbounded() bool {
	return w.Start == nil && w.End == nil
}

// Contains reports whether ts falls inside w.
// A missing timestamp never matches, and neither does an unbounded window.
func (w Window) Contains(ts *time.Time) bool {
	if ts == nil || w.Unbounded() {
		return false
	}

	if w.Start != nil && ts.Before(*w.Start) {
		return false
	}

	if w.End != nil && ts.After(*w.End) {
		return false
	}

	return true
}

func (w Window) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}

		return t.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s ~ %s", format(w.Start), format(w.End))
}
