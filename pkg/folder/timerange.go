package folder

import (
	"fmt"
	"strings"
	"time"

	"github.com/macropower/tagrss/pkg/rule"
)

// TimeRangeSeparator separates the bounds of a time range expression.
const TimeRangeSeparator = "~"

const dateLayout = "2006-01-02"

// ParseTimeRange parses a "<start> ~ <end>" expression into a [rule.Window].
//
// Each side is empty (unbounded), one of the case-insensitive keywords
// yesterday, today or tomorrow (resolved against now in UTC), or a date in
// YYYY-MM-DD form. The start resolves to the beginning of its day and the
// end to 23:59:59 of its day. A start after the end is accepted and yields
// a window that contains nothing.
func ParseTimeRange(s string, now time.Time) (rule.Window, error) {
	parts := strings.Split(s, TimeRangeSeparator)
	if len(parts) != 2 {
		return rule.Window{}, fmt.Errorf("%w: %q: expected %q",
			rule.ErrInvalidTimeRange, s, "<start> ~ <end>")
	}

	start, err := parseDay(parts[0], now)
	if err != nil {
		return rule.Window{}, fmt.Errorf("start: %w", err)
	}

	end, err := parseDay(parts[1], now)
	if err != nil {
		return rule.Window{}, fmt.Errorf("end: %w", err)
	}

	if end != nil {
		eod := end.Add(24*time.Hour - time.Second)
		end = &eod
	}

	// Relative keywords make the order depend on the day of evaluation, so
	// the range is not checked with [rule.NewWindow].
	return rule.Window{Start: start, End: end}, nil
}

// parseDay returns midnight UTC of the day named by s, or nil if s is blank.
func parseDay(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil //nolint:nilnil // Unbounded.
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var day time.Time

	switch strings.ToLower(s) {
	case "yesterday":
		day = today.AddDate(0, 0, -1)
	case "today":
		day = today
	case "tomorrow":
		day = today.AddDate(0, 0, 1)
	default:
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a date or relative day", rule.ErrInvalidTimeRange, s)
		}

		day = t
	}

	return &day, nil
}
