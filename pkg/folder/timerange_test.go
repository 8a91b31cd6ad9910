package folder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/rule"
)

func TestParseTimeRange(t *testing.T) {
	t.Parallel()

	// Early morning east of UTC is still the previous day in UTC.
	now := time.Date(2024, 6, 15, 1, 30, 0, 0, time.FixedZone("UTC+3", 3*60*60))

	eod := func(year int, month time.Month, day int) *time.Time {
		return ptr(time.Date(year, month, day, 23, 59, 59, 0, time.UTC))
	}

	tcs := map[string]struct {
		wantErr error
		want    rule.Window
		input   string
	}{
		"dates": {
			input: "2024-01-01 ~ 2024-01-31",
			want:  rule.Window{Start: date(2024, 1, 1), End: eod(2024, 1, 31)},
		},
		"open end": {
			input: "2024-01-01 ~ ",
			want:  rule.Window{Start: date(2024, 1, 1)},
		},
		"open start": {
			input: "~2024-01-31",
			want:  rule.Window{End: eod(2024, 1, 31)},
		},
		"fully open": {
			input: " ~ ",
			want:  rule.Window{},
		},
		"today": {
			input: "today ~ today",
			want:  rule.Window{Start: date(2024, 6, 14), End: eod(2024, 6, 14)},
		},
		"relative keywords are case-insensitive": {
			input: "Yesterday ~ TOMORROW",
			want:  rule.Window{Start: date(2024, 6, 13), End: eod(2024, 6, 15)},
		},
		"no separator": {
			input:   "2024-01-01",
			wantErr: rule.ErrInvalidTimeRange,
		},
		"too many separators": {
			input:   "2024-01-01 ~ 2024-01-02 ~ 2024-01-03",
			wantErr: rule.ErrInvalidTimeRange,
		},
		"unknown keyword": {
			input:   "last week ~ today",
			wantErr: rule.ErrInvalidTimeRange,
		},
		"bad date": {
			input:   "2024-13-01 ~ ",
			wantErr: rule.ErrInvalidTimeRange,
		},
		"timestamp is not a date": {
			input:   "2024-01-01T00:00:00Z ~ ",
			wantErr: rule.ErrInvalidTimeRange,
		},
		"start after end": {
			input: "tomorrow ~ yesterday",
			want:  rule.Window{Start: date(2024, 6, 15), End: eod(2024, 6, 13)},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := folder.ParseTimeRange(tc.input, now)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeRange_SameDayIsInclusive(t *testing.T) {
	t.Parallel()

	w, err := folder.ParseTimeRange("2024-01-31 ~ 2024-01-31", time.Now())
	require.NoError(t, err)

	assert.True(t, w.Contains(ptr(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))))
	assert.True(t, w.Contains(ptr(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))))
	assert.False(t, w.Contains(ptr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))
}

func TestParseTimeRange_ReversedMatchesNothing(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	w, err := folder.ParseTimeRange("today ~ yesterday", now)
	require.NoError(t, err)

	for _, ts := range []time.Time{
		time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	} {
		assert.False(t, w.Contains(&ts), ts)
	}
}
