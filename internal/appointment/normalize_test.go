package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare hour", input: "9", want: "09:00"},
		{name: "bare 24h hour", input: "14", want: "14:00"},
		{name: "hour minute", input: "9:30", want: "09:30"},
		{name: "pm conversion", input: "2pm", want: "14:00"},
		{name: "pm with minutes", input: "2:15 PM", want: "14:15"},
		{name: "noon stays noon", input: "12pm", want: "12:00"},
		{name: "midnight", input: "12am", want: "00:00"},
		{name: "am passes through", input: "9:05 am", want: "09:05"},
		{name: "lowercase meridiem", input: "7:45pm", want: "19:45"},
		{name: "canonical is idempotent", input: "23:59", want: "23:59"},
		{name: "whitespace trimmed", input: "  8:00  ", want: "08:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTime(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			// Canonical output must survive a second pass unchanged.
			again, err := NormalizeTime(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestNormalizeTimeRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"25:00",
		"24",
		"13:61 PM",
		"13pm",
		"14 AM",
		"9:5",
		"9:345",
		"half past three",
		"pm",
		"-1:00",
	}

	for _, input := range inputs {
		_, err := NormalizeTime(input)
		if !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("NormalizeTime(%q): expected ErrInvalidTimeFormat, got %v", input, err)
		}
	}
}

func TestCombine(t *testing.T) {
	ts, err := Combine("2026-09-04", "2pm")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 4, 14, 0, 0, 0, time.UTC), ts)
}

func TestCombineFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
	}{
		{name: "bad date", date: "tomorrow", time: "2pm"},
		{name: "US-style date", date: "09/04/2026", time: "2pm"},
		{name: "bad time", date: "2026-09-04", time: "25:00"},
		{name: "empty time", date: "2026-09-04", time: ""},
		{name: "both empty", date: "", time: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Combine(tc.date, tc.time)
			if !errors.Is(err, ErrInvalidDateTime) {
				t.Fatalf("expected ErrInvalidDateTime, got %v", err)
			}
		})
	}
}

func TestCombineIdempotentOverCanonicalOutput(t *testing.T) {
	first, err := Combine("2026-03-15", "9:30 AM")
	require.NoError(t, err)

	// Feeding the canonical output back in must yield the same instant.
	second, err := Combine(first.Format(time.RFC3339), "")
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "combine is not idempotent: %s vs %s", first, second)
}

func TestCombineRoundTripThroughSplit(t *testing.T) {
	original, err := Combine("2026-11-20", "16:45")
	require.NoError(t, err)

	date, clock := SplitTimestamp(original)
	assert.Equal(t, "2026-11-20", date)
	assert.Equal(t, "16:45", clock)

	reparsed, err := Combine(date, clock)
	require.NoError(t, err)
	assert.True(t, original.Equal(reparsed))
}
