package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			name:  "midnight is unchanged",
			input: Date(2024, time.January, 1),
			want:  Date(2024, time.January, 1),
		},
		{
			name:  "drops time of day",
			input: time.Date(2024, time.January, 1, 23, 59, 59, 999, time.UTC),
			want:  Date(2024, time.January, 1),
		},
		{
			name:  "uses the UTC calendar day of a zoned instant",
			input: time.Date(2024, time.January, 2, 3, 0, 0, 0, ist),
			want:  Date(2024, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDaysBetweenInclusive(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		want    int
		wantErr bool
	}{
		{name: "same day", start: Date(2024, 1, 1), end: Date(2024, 1, 1), want: 1},
		{name: "ten days", start: Date(2024, 1, 1), end: Date(2024, 1, 10), want: 10},
		{name: "across leap day", start: Date(2024, 2, 28), end: Date(2024, 3, 1), want: 3},
		{name: "ignores time of day", start: time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC), end: time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC), want: 2},
		{name: "start after end", start: Date(2024, 1, 2), end: Date(2024, 1, 1), wantErr: true},
		{name: "four centuries", start: Date(1700, 1, 1), end: Date(2100, 12, 31), want: 146462},
		{name: "whole calendar", start: Date(1, 1, 1), end: Date(9999, 12, 31), want: 3652059},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysBetweenInclusive(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEachDay(t *testing.T) {
	t.Run("inclusive of both ends", func(t *testing.T) {
		seq, err := EachDay(Date(2024, 1, 30), Date(2024, 2, 2))
		require.NoError(t, err)

		var got []string
		for d := range seq {
			got = append(got, Format(d))
		}
		assert.Equal(t, []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}, got)
	})

	t.Run("restartable", func(t *testing.T) {
		seq, err := EachDay(Date(2024, 1, 1), Date(2024, 1, 5))
		require.NoError(t, err)

		count := func() int {
			n := 0
			for range seq {
				n++
			}
			return n
		}
		assert.Equal(t, 5, count())
		assert.Equal(t, 5, count())
	})

	t.Run("early break", func(t *testing.T) {
		seq, err := EachDay(Date(2024, 1, 1), Date(2024, 12, 31))
		require.NoError(t, err)

		n := 0
		for range seq {
			n++
			if n == 3 {
				break
			}
		}
		assert.Equal(t, 3, n)
	})

	t.Run("agrees with DaysBetweenInclusive on long spans", func(t *testing.T) {
		start, end := Date(1700, 1, 1), Date(2100, 12, 31)
		seq, err := EachDay(start, end)
		require.NoError(t, err)

		n := 0
		for range seq {
			n++
		}
		want, err := DaysBetweenInclusive(start, end)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	})

	t.Run("invalid range", func(t *testing.T) {
		seq, err := EachDay(Date(2024, 1, 2), Date(2024, 1, 1))
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Nil(t, seq)
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", input: "2024-01-06", want: Date(2024, 1, 6)},
		{name: "rfc3339 is normalized", input: "2024-01-06T18:30:00Z", want: Date(2024, 1, 6)},
		{name: "surrounding whitespace", input: " 2024-01-06 ", want: Date(2024, 1, 6)},
		{name: "garbage", input: "06/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestWithinAndOverlaps(t *testing.T) {
	start, end := Date(2024, 1, 6), Date(2024, 1, 7)

	assert.True(t, Within(Date(2024, 1, 6), start, end))
	assert.True(t, Within(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), start, end))
	assert.False(t, Within(Date(2024, 1, 8), start, end))

	assert.True(t, Overlaps(start, end, Date(2024, 1, 7), Date(2024, 1, 8)))
	assert.False(t, Overlaps(start, end, Date(2024, 1, 8), Date(2024, 1, 9)))
	assert.True(t, Overlaps(start, end, Date(2024, 1, 1), Date(2024, 1, 31)))
}
